package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errFormIDMissing = errors.New("model: form id is required")
	errFormNoFields  = errors.New("model: form declares no fields")
)

// Validate checks the schema is internally consistent: every field has a
// unique key and every rule uses a known kind with the parameters it needs.
func (s FormSchema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errFormIDMissing
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: %s", errFormNoFields, s.ID)
	}

	seen := make(map[FieldKey]struct{}, len(s.Fields))
	for _, field := range s.Fields {
		if strings.TrimSpace(string(field.Key)) == "" {
			return fmt.Errorf("model: form %q has a field without key", s.ID)
		}
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("model: form %q declares field %q twice", s.ID, field.Key)
		}
		seen[field.Key] = struct{}{}

		for _, rule := range field.Rules {
			if err := validateRule(rule); err != nil {
				return fmt.Errorf("model: form %q field %q: %w", s.ID, field.Key, err)
			}
		}
	}
	return nil
}

func validateRule(rule ValidationRule) error {
	switch rule.Kind {
	case ValidationRuleMinLength:
		if rule.Param("value") == "" {
			return errors.New("minLength rule requires a value")
		}
	case ValidationRulePattern:
		if rule.Param("pattern") == "" {
			return errors.New("pattern rule requires a pattern")
		}
	case ValidationRuleOneOf:
		if strings.TrimSpace(rule.Param("values")) == "" {
			return errors.New("oneOf rule requires values")
		}
	case ValidationRulePolicy:
		if rule.Param("name") == "" {
			return errors.New("policy rule requires a name")
		}
	case ValidationRuleEmail:
	default:
		return fmt.Errorf("unknown rule kind %q", rule.Kind)
	}
	return nil
}
