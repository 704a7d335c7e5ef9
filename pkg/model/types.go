package model

// FieldKey identifies a field inside a form schema. Keys are stable across
// forms so the suggestion flow can address the email, company and name fields
// without knowing which screen it runs on.
type FieldKey string

const (
	FullName    FieldKey = "fullName"
	PhoneNumber FieldKey = "phoneNumber"
	Email       FieldKey = "email"
	Password    FieldKey = "password"
	CompanyName FieldKey = "companyName"
	IsAgency    FieldKey = "isAgency"
)

// FieldKind is the simplified enum for input kinds the front ends understand.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindPassword FieldKind = "password"
	FieldKindEmail    FieldKind = "email"
	FieldKindTel      FieldKind = "tel"
	FieldKindChoice   FieldKind = "choice"
)

const (
	ValidationRuleMinLength = "minLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleEmail     = "email"
	ValidationRuleOneOf     = "oneOf"
	ValidationRulePolicy    = "policy"
)

// ValidationRule represents a single validation constraint applied to a field.
// Length limits encode their threshold in Params["value"], pattern rules keep
// the expression in Params["pattern"], oneOf rules list space separated tokens
// in Params["values"] and policy rules reference a named rule set through
// Params["name"]. Params["message"] overrides the default failure message.
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Param returns the named parameter or an empty string.
func (r ValidationRule) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Option is a selectable value for choice fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// FieldSpec describes a single input: how it validates, whether it is
// required and the value it starts with when the form mounts.
type FieldSpec struct {
	Key      FieldKey         `json:"key" yaml:"key"`
	Label    string           `json:"label,omitempty" yaml:"label,omitempty"`
	Kind     FieldKind        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Required bool             `json:"required" yaml:"required"`
	Initial  string           `json:"initial,omitempty" yaml:"initial,omitempty"`
	Options  []Option         `json:"options,omitempty" yaml:"options,omitempty"`
	Rules    []ValidationRule `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// DisplayLabel falls back to the key when no label was configured.
func (f FieldSpec) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return string(f.Key)
}

// FormSchema is the static, per-form mapping from field key to field spec.
// Field order is preserved for front ends that render sequentially.
type FormSchema struct {
	ID                string      `json:"id" yaml:"id"`
	Title             string      `json:"title,omitempty" yaml:"title,omitempty"`
	Fields            []FieldSpec `json:"fields" yaml:"fields"`
	SuggestionEnabled bool        `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	SuccessTitle      string      `json:"successTitle,omitempty" yaml:"successTitle,omitempty"`
	SuccessMessage    string      `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
}

// Field looks up a field spec by key.
func (s FormSchema) Field(key FieldKey) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Key == key {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// Has reports whether the schema declares the key.
func (s FormSchema) Has(key FieldKey) bool {
	_, ok := s.Field(key)
	return ok
}

// Keys returns the field keys in declaration order.
func (s FormSchema) Keys() []FieldKey {
	out := make([]FieldKey, 0, len(s.Fields))
	for _, field := range s.Fields {
		out = append(out, field.Key)
	}
	return out
}
