package formflow

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/suggest"
	"github.com/goliatone/go-formflow/pkg/validation"
)

type config struct {
	validator         *validation.Validator
	client            suggest.Client
	submitter         submit.Submitter
	logger            *zap.Logger
	notifier          Notifier
	suggestionTimeout time.Duration
	submitTimeout     time.Duration
}

// Option configures a Session.
type Option func(*config)

// WithValidator overrides the field validator, for example to register extra
// password policies.
func WithValidator(v *validation.Validator) Option {
	return func(c *config) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithSuggestionClient enables company based email suggestions. Without a
// client the company field behaves like any other input.
func WithSuggestionClient(client suggest.Client) Option {
	return func(c *config) {
		c.client = client
	}
}

// WithSubmitter sets the external submission action. Defaults to the
// simulated submitter.
func WithSubmitter(s submit.Submitter) Option {
	return func(c *config) {
		if s != nil {
			c.submitter = s
		}
	}
}

// WithLogger sets the structured logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNotifier sets the receiver of user facing notices.
func WithNotifier(n Notifier) Option {
	return func(c *config) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithSuggestionTimeout bounds each suggestion lookup.
func WithSuggestionTimeout(d time.Duration) Option {
	return func(c *config) {
		c.suggestionTimeout = d
	}
}

// WithSubmitTimeout bounds each submission.
func WithSubmitTimeout(d time.Duration) Option {
	return func(c *config) {
		c.submitTimeout = d
	}
}
