package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func signupField(t *testing.T, formID string, key model.FieldKey) model.FieldSpec {
	t.Helper()
	store, err := schema.Default()
	if err != nil {
		t.Fatalf("load default forms: %v", err)
	}
	form, ok := store.Form(formID)
	if !ok {
		t.Fatalf("form %q missing", formID)
	}
	spec, ok := form.Field(key)
	if !ok {
		t.Fatalf("field %q missing from %q", key, formID)
	}
	return spec
}

func TestValidate_CompanyNameLength(t *testing.T) {
	v := validation.New()
	spec := signupField(t, schema.FormSignup, model.CompanyName)

	for _, value := range []string{"Ac", "Acme", "Acme Corp", "日本"} {
		if res := v.Validate(spec, value, nil); !res.Valid {
			t.Fatalf("expected %q valid, got %q", value, res.Message)
		}
	}
	for _, value := range []string{"", "A"} {
		res := v.Validate(spec, value, nil)
		if res.Valid {
			t.Fatalf("expected %q invalid", value)
		}
		if res.Message != "Company name must be at least 2 characters." {
			t.Fatalf("unexpected message %q", res.Message)
		}
	}
}

func TestValidate_OptionalCompanyName(t *testing.T) {
	v := validation.New()
	spec := signupField(t, schema.FormPopXSignup, model.CompanyName)

	if res := v.Validate(spec, "", nil); !res.Valid {
		t.Fatalf("expected empty optional company valid, got %q", res.Message)
	}
	if res := v.Validate(spec, "A", nil); res.Valid {
		t.Fatalf("expected single character company invalid when present")
	}
}

func TestValidate_PhoneNumber(t *testing.T) {
	v := validation.New()
	spec := signupField(t, schema.FormSignup, model.PhoneNumber)

	cases := map[string]bool{
		"+14155550132":       true,
		"14":                 true,
		"123456789012345":    true,
		"+123456789012345":   true,
		"0123":               false,
		"123456789012345678": false,
		"1":                  false,
		"+1 415 555 0132":    false,
		"":                   false,
	}
	for value, want := range cases {
		if got := v.Validate(spec, value, nil).Valid; got != want {
			t.Errorf("phone %q: want valid=%v, got %v", value, want, got)
		}
	}
}

func TestValidate_Email(t *testing.T) {
	v := validation.New()
	spec := signupField(t, schema.FormSignup, model.Email)

	cases := map[string]bool{
		"jane@acme.com":   true,
		"j.doe@acme.co":   true,
		"jane@acme":       false,
		"jane@":           false,
		"@acme.com":       false,
		"jane doe@acm.io": false,
		"jane":            false,
		"":                false,
	}
	for value, want := range cases {
		res := v.Validate(spec, value, nil)
		if res.Valid != want {
			t.Errorf("email %q: want valid=%v, got %v", value, want, res.Valid)
		}
		if !want && res.Message != "Invalid email address." {
			t.Errorf("email %q: unexpected message %q", value, res.Message)
		}
	}
}

func TestValidate_PasswordPolicies(t *testing.T) {
	v := validation.New()
	basic := signupField(t, schema.FormSignup, model.Password)
	strong := signupField(t, schema.FormSignin, model.Password)

	if res := v.Validate(basic, "abcdefgh", nil); !res.Valid {
		t.Fatalf("basic policy should accept abcdefgh: %q", res.Message)
	}
	if res := v.Validate(basic, "abc", nil); res.Message != "Password must be at least 8 characters." {
		t.Fatalf("unexpected basic message %q", res.Message)
	}

	res := v.Validate(strong, "abcdefgh", nil)
	if res.Valid {
		t.Fatalf("strong policy should reject abcdefgh")
	}
	if res.Message != "Password must include an uppercase letter." {
		t.Fatalf("unexpected strong message %q", res.Message)
	}
	if res := v.Validate(strong, "Abcdef1!", nil); !res.Valid {
		t.Fatalf("strong policy should accept Abcdef1!: %q", res.Message)
	}

	messages := []string{}
	for _, value := range []string{"Abc1!", "ABCDEFG1!", "Abcdefgh!", "Abcdefgh1"} {
		messages = append(messages, v.Validate(strong, value, nil).Message)
	}
	want := []string{
		"Password must be at least 8 characters long.",
		"Password must include a lowercase letter.",
		"Password must include a number.",
		"Password must include a special character.",
	}
	if diff := cmp.Diff(want, messages); diff != "" {
		t.Fatalf("strong policy messages mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_IsAgency(t *testing.T) {
	v := validation.New()
	spec := signupField(t, schema.FormSignup, model.IsAgency)

	for _, value := range []string{"yes", "no"} {
		if !v.Validate(spec, value, nil).Valid {
			t.Fatalf("expected %q valid", value)
		}
	}
	for _, value := range []string{"", "maybe", "YES"} {
		res := v.Validate(spec, value, nil)
		if res.Valid {
			t.Fatalf("expected %q invalid", value)
		}
		if res.Message != "You must select an option." {
			t.Fatalf("unexpected message %q", res.Message)
		}
	}
}

func TestValidate_RequiredWithoutRules(t *testing.T) {
	v := validation.New()
	spec := model.FieldSpec{Key: "nickname", Label: "Nickname", Required: true}

	res := v.Validate(spec, "", nil)
	if res.Valid || res.Message != "Nickname is required." {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestWithPolicy_CustomPolicy(t *testing.T) {
	v := validation.New(validation.WithPolicy("pin", model.ValidationRule{
		Kind:   model.ValidationRulePattern,
		Params: map[string]string{"pattern": `^\d{4}$`, "message": "PIN must be four digits."},
	}))
	spec := model.FieldSpec{
		Key:      model.Password,
		Required: true,
		Rules: []model.ValidationRule{
			{Kind: model.ValidationRulePolicy, Params: map[string]string{"name": "pin"}},
		},
	}

	if !v.Validate(spec, "1234", nil).Valid {
		t.Fatalf("expected pin accepted")
	}
	if res := v.Validate(spec, "12a4", nil); res.Message != "PIN must be four digits." {
		t.Fatalf("unexpected message %q", res.Message)
	}
}

func TestCheck_ReportsUnknownPolicyAndBadPattern(t *testing.T) {
	v := validation.New()

	unknown := model.FormSchema{ID: "demo", Fields: []model.FieldSpec{{
		Key:   model.Password,
		Rules: []model.ValidationRule{{Kind: model.ValidationRulePolicy, Params: map[string]string{"name": "nope"}}},
	}}}
	if err := v.Check(unknown); !errors.Is(err, validation.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}

	badPattern := model.FormSchema{ID: "demo", Fields: []model.FieldSpec{{
		Key:   model.PhoneNumber,
		Rules: []model.ValidationRule{{Kind: model.ValidationRulePattern, Params: map[string]string{"pattern": "("}}},
	}}}
	if err := v.Check(badPattern); err == nil || !strings.Contains(err.Error(), "pattern") {
		t.Fatalf("expected pattern error, got %v", err)
	}

	store, err := schema.Default()
	if err != nil {
		t.Fatalf("load default forms: %v", err)
	}
	for _, id := range store.IDs() {
		form, _ := store.Form(id)
		if err := v.Check(form); err != nil {
			t.Fatalf("bundled form %q failed check: %v", id, err)
		}
	}
}
