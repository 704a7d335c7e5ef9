// Package schema loads form definitions from YAML.
package schema

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Store holds the form schemas parsed from one or more YAML documents.
type Store struct {
	forms map[string]model.FormSchema
}

type documentFile struct {
	Forms map[string]model.FormSchema `yaml:"forms"`
}

// LoadFS walks the provided filesystem and parses YAML form documents. When
// fsys is nil or no schema files are present, the returned store is empty.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormSchema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		return store.add(data, path)
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Parse reads a single YAML document into a new store.
func Parse(data []byte, source string) (*Store, error) {
	store := &Store{forms: make(map[string]model.FormSchema)}
	if err := store.add(data, source); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) add(data []byte, source string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("schema: file %s is empty", source)
	}

	var doc documentFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("schema: parse %s: %w", source, err)
	}

	for rawID, form := range doc.Forms {
		id := strings.TrimSpace(rawID)
		if id == "" {
			return fmt.Errorf("schema: file %s defines an empty form id", source)
		}
		if _, exists := s.forms[id]; exists {
			return fmt.Errorf("schema: duplicate form %q (file %s)", id, source)
		}
		form.ID = id
		if err := form.Validate(); err != nil {
			return fmt.Errorf("schema: file %s: %w", source, err)
		}
		s.forms[id] = form
	}
	return nil
}

// Form returns the schema registered under id.
func (s *Store) Form(id string) (model.FormSchema, bool) {
	if s == nil {
		return model.FormSchema{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// IDs lists the registered form ids in lexical order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any forms.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
