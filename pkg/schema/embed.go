package schema

import (
	"embed"
	"io/fs"
)

const (
	// FormSignup is the main create-account form with company suggestions.
	FormSignup = "signup"
	// FormPopXSignup is the PopX create-account variant with an optional company.
	FormPopXSignup = "popx-signup"
	// FormSignin is the sign-in form using the strong password policy.
	FormSignin = "signin"
)

//go:embed forms/*
var embeddedForms embed.FS

// EmbeddedFS returns the bundled form definitions. Callers may pass this
// filesystem to LoadFS to use the default configuration.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Default loads the bundled forms.
func Default() (*Store, error) {
	return LoadFS(EmbeddedFS())
}
