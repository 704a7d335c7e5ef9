package validation

import (
	"strconv"

	"github.com/goliatone/go-formflow/pkg/model"
)

const (
	// PolicyBasic only enforces a minimum length of eight characters.
	PolicyBasic = "basic"
	// PolicyStrong adds character class requirements on top of PolicyBasic.
	PolicyStrong = "strong"
)

func defaultPolicies() map[string][]model.ValidationRule {
	return map[string][]model.ValidationRule{
		PolicyBasic: {
			minLength(8, "Password must be at least 8 characters."),
		},
		PolicyStrong: {
			minLength(8, "Password must be at least 8 characters long."),
			pattern(`[A-Z]`, "Password must include an uppercase letter."),
			pattern(`[a-z]`, "Password must include a lowercase letter."),
			pattern(`[0-9]`, "Password must include a number."),
			pattern(`[^A-Za-z0-9]`, "Password must include a special character."),
		},
	}
}

func minLength(n int, message string) model.ValidationRule {
	return model.ValidationRule{
		Kind: model.ValidationRuleMinLength,
		Params: map[string]string{
			"value":   strconv.Itoa(n),
			"message": message,
		},
	}
}

func pattern(expr, message string) model.ValidationRule {
	return model.ValidationRule{
		Kind: model.ValidationRulePattern,
		Params: map[string]string{
			"pattern": expr,
			"message": message,
		},
	}
}
