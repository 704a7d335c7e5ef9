package tui

// Theme captures optional prefixes the runner applies when printing messages.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme is used when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "i",
	ErrorPrefix: "x",
}

// Option configures the runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithConfirm asks for confirmation before each submission. Enabled by
// default.
func WithConfirm(enabled bool) Option {
	return func(r *Runner) {
		r.confirm = enabled
	}
}
