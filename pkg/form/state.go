package form

import "github.com/goliatone/go-formflow/pkg/model"

// Status is the validity of a single field.
type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusPending Status = "pending"
)

// Field is the current state of one schema field. Message is only populated
// once the field has been touched so untouched inputs do not render errors.
type Field struct {
	Key       model.FieldKey
	Value     string
	Status    Status
	Message   string
	Touched   bool
	Suggested bool
}

// Snapshot is an immutable copy of the form at a point in time.
type Snapshot struct {
	Fields      map[model.FieldKey]Field
	Submittable bool
	Version     uint64
}

// Field returns the state of key.
func (s Snapshot) Field(key model.FieldKey) (Field, bool) {
	field, ok := s.Fields[key]
	return field, ok
}

// Value returns the raw value for key or an empty string.
func (s Snapshot) Value(key model.FieldKey) string {
	return s.Fields[key].Value
}

// Values returns a copy of the raw values keyed by field.
func (s Snapshot) Values() map[model.FieldKey]string {
	out := make(map[model.FieldKey]string, len(s.Fields))
	for key, field := range s.Fields {
		out[key] = field.Value
	}
	return out
}

func cloneFields(src map[model.FieldKey]Field) map[model.FieldKey]Field {
	out := make(map[model.FieldKey]Field, len(src))
	for key, field := range src {
		out[key] = field
	}
	return out
}
