package suggest

import (
	"strings"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
)

const fallbackLocalPart = "user"

// ComposeEmail builds "<local>@<domain>". The local part is the existing
// email up to its first "@", else the lower-cased first word of the full
// name, else "user".
func ComposeEmail(existingEmail, fullName, domain string) string {
	local := ""
	if existingEmail != "" {
		local, _, _ = strings.Cut(existingEmail, "@")
	}
	if local == "" {
		if words := strings.Fields(fullName); len(words) > 0 {
			local = strings.ToLower(words[0])
		}
	}
	if local == "" {
		local = fallbackLocalPart
	}
	return local + "@" + domain
}

// NeedsDomain reports whether email still lacks a domain-qualified address.
func NeedsDomain(email string) bool {
	return !strings.Contains(email, "@")
}

// Eligible reports whether snap satisfies the trigger condition: a non-empty,
// valid company name and an email that is empty or has no "@".
func Eligible(snap form.Snapshot) bool {
	company, ok := snap.Field(model.CompanyName)
	if !ok || company.Value == "" || company.Status != form.StatusValid {
		return false
	}
	email, ok := snap.Field(model.Email)
	if !ok {
		return false
	}
	return NeedsDomain(email.Value)
}
