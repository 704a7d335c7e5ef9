package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/model"
)

// ErrUnknownPolicy is returned by Check when a field references a policy that
// was never registered.
var ErrUnknownPolicy = errors.New("validation: unknown policy")

// Result is the outcome of validating a single field value.
type Result struct {
	Valid   bool
	Message string
}

func pass() Result { return Result{Valid: true} }

func fail(message string) Result { return Result{Message: message} }

// Values is a read-only view of the whole form used by rules that depend on
// other fields.
type Values map[model.FieldKey]string

// Validator evaluates field rules. It keeps no per-form state, so a single
// instance can be shared by every form in the process.
type Validator struct {
	mu       sync.RWMutex
	policies map[string][]model.ValidationRule
	patterns map[string]*regexp.Regexp
	tags     *playground.Validate
}

// Option configures the validator.
type Option func(*Validator)

// WithPolicy registers (or replaces) a named rule set that fields can
// reference through a policy rule.
func WithPolicy(name string, rules ...model.ValidationRule) Option {
	return func(v *Validator) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		v.policies[name] = append([]model.ValidationRule(nil), rules...)
	}
}

// New creates a validator with the basic and strong password policies.
func New(opts ...Option) *Validator {
	v := &Validator{
		policies: defaultPolicies(),
		patterns: make(map[string]*regexp.Regexp),
		tags:     playground.New(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Policies lists the registered policy names.
func (v *Validator) Policies() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, 0, len(v.policies))
	for name := range v.policies {
		out = append(out, name)
	}
	return out
}

// Check verifies that every rule in the schema can be evaluated: patterns
// compile and referenced policies exist.
func (v *Validator) Check(schema model.FormSchema) error {
	for _, field := range schema.Fields {
		for _, rule := range field.Rules {
			if err := v.checkRule(rule); err != nil {
				return fmt.Errorf("validation: field %q: %w", field.Key, err)
			}
		}
	}
	return nil
}

func (v *Validator) checkRule(rule model.ValidationRule) error {
	switch rule.Kind {
	case model.ValidationRulePattern:
		_, err := v.compile(rule.Param("pattern"))
		return err
	case model.ValidationRuleMinLength:
		if _, err := strconv.Atoi(rule.Param("value")); err != nil {
			return fmt.Errorf("minLength value %q: %w", rule.Param("value"), err)
		}
	case model.ValidationRulePolicy:
		rules, ok := v.policy(rule.Param("name"))
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownPolicy, rule.Param("name"))
		}
		for _, nested := range rules {
			if nested.Kind == model.ValidationRulePolicy {
				return fmt.Errorf("policy %q nests another policy", rule.Param("name"))
			}
			if err := v.checkRule(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// Validate evaluates spec's rules against raw. Empty optional fields are
// valid without running any rule. Empty required fields run the rules so the
// first rule's message is reported, falling back to "<label> is required.".
// The function is deterministic and never blocks.
func (v *Validator) Validate(spec model.FieldSpec, raw string, _ Values) Result {
	if raw == "" && !spec.Required {
		return pass()
	}

	for _, rule := range spec.Rules {
		if res := v.evaluate(spec, rule, raw); !res.Valid {
			return res
		}
	}

	if raw == "" {
		return fail(spec.DisplayLabel() + " is required.")
	}
	return pass()
}

func (v *Validator) evaluate(spec model.FieldSpec, rule model.ValidationRule, raw string) Result {
	switch rule.Kind {
	case model.ValidationRuleMinLength:
		limit, err := strconv.Atoi(rule.Param("value"))
		if err != nil {
			return fail(fmt.Sprintf("%s has an invalid length rule.", spec.DisplayLabel()))
		}
		if utf8.RuneCountInString(raw) >= limit {
			return pass()
		}
		return fail(messageOr(rule, fmt.Sprintf("%s must be at least %d characters.", spec.DisplayLabel(), limit)))

	case model.ValidationRulePattern:
		re, err := v.compile(rule.Param("pattern"))
		if err != nil {
			return fail(fmt.Sprintf("%s has an invalid pattern rule.", spec.DisplayLabel()))
		}
		if re.MatchString(raw) {
			return pass()
		}
		return fail(messageOr(rule, fmt.Sprintf("%s is invalid.", spec.DisplayLabel())))

	case model.ValidationRuleEmail:
		if v.isEmail(raw) {
			return pass()
		}
		return fail(messageOr(rule, "Invalid email address."))

	case model.ValidationRuleOneOf:
		values := strings.Fields(rule.Param("values"))
		if raw != "" && v.tags.Var(raw, "oneof="+strings.Join(values, " ")) == nil {
			return pass()
		}
		return fail(messageOr(rule, fmt.Sprintf("%s must be one of: %s.", spec.DisplayLabel(), strings.Join(values, ", "))))

	case model.ValidationRulePolicy:
		rules, ok := v.policy(rule.Param("name"))
		if !ok {
			return fail(fmt.Sprintf("%s references an unknown policy.", spec.DisplayLabel()))
		}
		for _, nested := range rules {
			if nested.Kind == model.ValidationRulePolicy {
				continue
			}
			if res := v.evaluate(spec, nested, raw); !res.Valid {
				return fail(messageOr(rule, res.Message))
			}
		}
		return pass()
	}

	return fail(fmt.Sprintf("%s has an unsupported rule %q.", spec.DisplayLabel(), rule.Kind))
}

// isEmail requires a local part, an @, a dotted domain and no whitespace on
// top of the syntax check.
func (v *Validator) isEmail(raw string) bool {
	if raw == "" || strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return false
	}
	at := strings.LastIndex(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return false
	}
	domain := raw[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot <= 0 || dot == len(domain)-1 {
		return false
	}
	return v.tags.Var(raw, "email") == nil
}

func (v *Validator) policy(name string) ([]model.ValidationRule, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	rules, ok := v.policies[name]
	return rules, ok
}

func (v *Validator) compile(expr string) (*regexp.Regexp, error) {
	v.mu.RLock()
	re, ok := v.patterns[expr]
	v.mu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", expr, err)
	}

	v.mu.Lock()
	v.patterns[expr] = re
	v.mu.Unlock()
	return re, nil
}

func messageOr(rule model.ValidationRule, fallback string) string {
	if msg := strings.TrimSpace(rule.Param("message")); msg != "" {
		return msg
	}
	return fallback
}
