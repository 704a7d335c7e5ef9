package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Result is a successful lookup. An empty Domain means the capability had no
// answer; callers treat it as nothing to apply.
type Result struct {
	Domain string
}

// Client infers the email domain for a company name. Implementations are
// assumed slow and unreliable and must not retry on their own; the caller
// decides whether to try again.
type Client interface {
	Infer(ctx context.Context, companyName string) (Result, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, companyName string) (Result, error)

// Infer calls f.
func (f ClientFunc) Infer(ctx context.Context, companyName string) (Result, error) {
	return f(ctx, companyName)
}

// StaticClient answers from a fixed table keyed by lower-cased company name.
// With Guess set, unknown companies map to "<alphanumerics>.com".
type StaticClient struct {
	Domains map[string]string
	Guess   bool
}

// Infer looks the company up in the table.
func (c StaticClient) Infer(ctx context.Context, companyName string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, wrap(companyName, err)
	}
	key := strings.ToLower(strings.TrimSpace(companyName))
	for name, domain := range c.Domains {
		if strings.ToLower(strings.TrimSpace(name)) == key {
			return Result{Domain: domain}, nil
		}
	}
	if c.Guess {
		if slug := slugify(key); slug != "" {
			return Result{Domain: slug + ".com"}, nil
		}
	}
	return Result{}, wrap(companyName, fmt.Errorf("no domain known for %q", companyName))
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// NormalizeDomain cleans a domain returned by a text-generation backend:
// surrounding whitespace, a leading "@" and a trailing "." are dropped and the
// result is lower-cased. Empty input yields an empty domain. Anything with
// inner whitespace, an "@" or no dot is rejected.
func NormalizeDomain(raw string) (string, error) {
	domain := strings.TrimSpace(raw)
	domain = strings.TrimPrefix(domain, "@")
	domain = strings.TrimSuffix(domain, ".")
	domain = strings.ToLower(domain)
	if domain == "" {
		return "", nil
	}
	if strings.IndexFunc(domain, unicode.IsSpace) >= 0 || strings.Contains(domain, "@") {
		return "", fmt.Errorf("malformed domain %q", raw)
	}
	if dot := strings.Index(domain, "."); dot <= 0 {
		return "", fmt.Errorf("domain %q has no dot", raw)
	}
	return domain, nil
}

// ErrSuggestion matches every lookup failure via errors.Is.
var ErrSuggestion = errors.New("suggest: lookup failed")

// Error records a failed lookup. The underlying cause is kept for logs only;
// callers see nothing more structured than "failed".
type Error struct {
	CompanyName string
	Err         error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("suggest: lookup for %q failed", e.CompanyName)
	}
	return fmt.Sprintf("suggest: lookup for %q failed: %v", e.CompanyName, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports ErrSuggestion as a match.
func (e *Error) Is(target error) bool { return target == ErrSuggestion }

func wrap(companyName string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{CompanyName: companyName, Err: err}
}
