package formflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/suggest"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// FieldKey aliases model.FieldKey so callers can stay on the root package.
type FieldKey = model.FieldKey

// Status aliases form.Status.
type Status = form.Status

// FieldView is what a front end needs to render one input.
type FieldView struct {
	Key      FieldKey
	Label    string
	Kind     model.FieldKind
	Required bool
	Options  []model.Option
	Value    string
	Status   Status
	Message  string
	// Suggested is set while the value is one the suggestion flow wrote.
	Suggested bool
}

// Session is the presentation boundary of one mounted form. It exposes one
// entry point per user action and read-only views of the state; all writes go
// through the underlying form store.
type Session struct {
	schema      model.FormSchema
	store       *form.Store
	suggestions *suggest.Controller
	submissions *submit.Coordinator
	notifier    Notifier
	logger      *zap.Logger
}

// New mounts schema. Suggestions are enabled only when the schema asks for
// them, declares both the company and email fields, and a client is given.
func New(schema model.FormSchema, opts ...Option) (*Session, error) {
	cfg := config{
		logger:   zap.NewNop(),
		notifier: discardNotifier{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.validator == nil {
		cfg.validator = validation.New()
	}
	if err := cfg.validator.Check(schema); err != nil {
		return nil, err
	}

	store, err := form.NewStore(schema, cfg.validator)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger.With(zap.String("form", schema.ID))
	s := &Session{
		schema:   schema,
		store:    store,
		notifier: cfg.notifier,
		logger:   logger,
	}

	if cfg.client != nil && schema.SuggestionEnabled && schema.Has(model.CompanyName) && schema.Has(model.Email) {
		s.suggestions, err = suggest.NewController(store, cfg.client,
			suggest.WithLogger(logger.Named("suggest")),
			suggest.WithTimeout(cfg.suggestionTimeout),
			suggest.WithObserver(s.onSuggestion),
		)
		if err != nil {
			return nil, err
		}
	}

	s.submissions, err = submit.NewCoordinator(store, cfg.submitter,
		submit.WithLogger(logger.Named("submit")),
		submit.WithTimeout(cfg.submitTimeout),
		submit.WithResetHook(s.discardSuggestions),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Schema returns the mounted schema.
func (s *Session) Schema() model.FormSchema {
	return s.schema
}

// OnFieldChange records a keystroke level edit.
func (s *Session) OnFieldChange(key FieldKey, value string) error {
	_, err := s.store.Change(key, value)
	return err
}

// OnFieldBlur re-validates key. Leaving the company field also attempts a
// suggestion; ctx bounds that lookup, not the blur itself.
func (s *Session) OnFieldBlur(ctx context.Context, key FieldKey) error {
	if _, err := s.store.Blur(key); err != nil {
		return err
	}
	if key == model.CompanyName && s.suggestions != nil {
		s.suggestions.Trigger(ctx)
	}
	return nil
}

// OnSubmit attempts the submission. Validation and re-entrancy rejections
// are returned without a notice; submission failures also notify the user.
func (s *Session) OnSubmit(ctx context.Context) (submit.Result, error) {
	res, err := s.submissions.Attempt(ctx)
	var failure *submit.Error
	switch {
	case err == nil:
		s.notifier.Notify(Notice{
			Title:       s.schema.SuccessTitle,
			Description: s.schema.SuccessMessage,
			Variant:     VariantDefault,
		})
	case errors.As(err, &failure):
		s.notifier.Notify(Notice{
			Title:       "Submission Failed",
			Description: failure.Reason,
			Variant:     VariantDestructive,
		})
	}
	return res, err
}

// Fields returns the render state of every field in schema order.
func (s *Session) Fields() []FieldView {
	snap := s.store.Snapshot()
	out := make([]FieldView, 0, len(s.schema.Fields))
	for _, spec := range s.schema.Fields {
		field := snap.Fields[spec.Key]
		out = append(out, FieldView{
			Key:       spec.Key,
			Label:     spec.DisplayLabel(),
			Kind:      spec.Kind,
			Required:  spec.Required,
			Options:   spec.Options,
			Value:     field.Value,
			Status:    field.Status,
			Message:   field.Message,
			Suggested: field.Suggested,
		})
	}
	return out
}

// Field returns the render state of key.
func (s *Session) Field(key FieldKey) (FieldView, error) {
	for _, view := range s.Fields() {
		if view.Key == key {
			return view, nil
		}
	}
	return FieldView{}, fmt.Errorf("%w %q", form.ErrUnknownField, key)
}

// CanSubmit reports submit-readiness.
func (s *Session) CanSubmit() bool {
	return s.store.Snapshot().Submittable
}

// Submitting reports whether a submission is outstanding.
func (s *Session) Submitting() bool {
	return s.submissions.InFlight()
}

// Suggesting reports whether a suggestion lookup is outstanding.
func (s *Session) Suggesting() bool {
	return s.suggestions != nil && s.suggestions.State() == suggest.StatePending
}

// WaitSuggestions blocks until no suggestion is outstanding or ctx is done.
func (s *Session) WaitSuggestions(ctx context.Context) error {
	if s.suggestions == nil {
		return nil
	}
	return s.suggestions.Wait(ctx)
}

// Subscribe forwards committed state changes to fn. fn runs with the form
// locked, possibly on a suggestion goroutine, and must not call back into the
// session; use the snapshot it receives instead.
func (s *Session) Subscribe(fn func(form.Snapshot)) func() {
	return s.store.Subscribe(fn)
}

func (s *Session) discardSuggestions() {
	if s.suggestions != nil {
		s.suggestions.Invalidate()
	}
}

func (s *Session) onSuggestion(r suggest.Resolution) {
	if r.Outcome != suggest.OutcomeApplied {
		return
	}
	s.notifier.Notify(Notice{
		Title:       "AI Suggestion",
		Description: fmt.Sprintf("Email domain updated to @%s. Please complete the username if needed.", r.Domain),
		Variant:     VariantDefault,
	})
}
