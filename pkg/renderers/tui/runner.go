package tui

import (
	"context"
	"errors"
	"strings"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/submit"
)

const suggestedHelp = "Suggested from the company name. Complete the username if needed."

// Runner walks a formflow.Session through terminal prompts. Every answer is
// forwarded as a change followed by a blur, so the session sees the same
// event sequence a browser form would produce.
type Runner struct {
	driver  PromptDriver
	theme   Theme
	confirm bool
}

// New constructs a runner with defaults (survey driver, default theme).
func New(options ...Option) *Runner {
	r := &Runner{
		driver:  NewSurveyDriver(),
		theme:   DefaultTheme,
		confirm: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Notify prints n. Pass the runner to formflow.WithNotifier so suggestion and
// submission notices reach the terminal.
func (r *Runner) Notify(n formflow.Notice) {
	prefix := r.theme.InfoPrefix
	if n.Variant == formflow.VariantDestructive {
		prefix = r.theme.ErrorPrefix
	}
	_ = r.driver.Info(context.Background(), r.line(prefix, n.Title, n.Description))
}

// Run prompts every field once, lets the user review suggested values, then
// re-prompts invalid fields until the form is submittable. A failed
// submission keeps the answers and offers another round.
func (r *Runner) Run(ctx context.Context, s *formflow.Session) (submit.Result, error) {
	if ctx == nil {
		return submit.Result{}, errors.New("tui: context is required")
	}
	if s == nil {
		return submit.Result{}, errors.New("tui: session is required")
	}
	if title := s.Schema().Title; title != "" {
		_ = r.driver.Info(ctx, title)
	}

	if err := r.askAll(ctx, s); err != nil {
		return submit.Result{}, err
	}

	for {
		if err := s.WaitSuggestions(ctx); err != nil {
			return submit.Result{}, err
		}
		if err := r.reviewSuggested(ctx, s); err != nil {
			return submit.Result{}, err
		}
		if !s.CanSubmit() {
			if err := r.askInvalid(ctx, s); err != nil {
				return submit.Result{}, err
			}
			continue
		}

		if r.confirm {
			ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Submit?", Default: true})
			if err != nil {
				return submit.Result{}, err
			}
			if !ok {
				return submit.Result{}, ErrDeclined
			}
		}

		res, err := s.OnSubmit(ctx)
		var failure *submit.Error
		switch {
		case err == nil:
			return res, nil
		case errors.Is(err, submit.ErrNotSubmittable):
			continue
		case errors.As(err, &failure):
			again, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Edit and try again?", Default: true})
			if cerr != nil {
				return res, cerr
			}
			if !again {
				return res, err
			}
			if err := r.askAll(ctx, s); err != nil {
				return res, err
			}
		default:
			return res, err
		}
	}
}

func (r *Runner) askAll(ctx context.Context, s *formflow.Session) error {
	for _, view := range s.Fields() {
		if err := r.ask(ctx, s, view, ""); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) askInvalid(ctx context.Context, s *formflow.Session) error {
	for _, view := range s.Fields() {
		if view.Status != form.StatusInvalid {
			continue
		}
		if err := r.ask(ctx, s, view, view.Message); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) reviewSuggested(ctx context.Context, s *formflow.Session) error {
	for _, view := range s.Fields() {
		if !view.Suggested {
			continue
		}
		if err := r.ask(ctx, s, view, suggestedHelp); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) ask(ctx context.Context, s *formflow.Session, view formflow.FieldView, help string) error {
	value, err := r.prompt(ctx, view, help)
	if err != nil {
		return err
	}
	if err := s.OnFieldChange(view.Key, value); err != nil {
		return err
	}
	if err := s.OnFieldBlur(ctx, view.Key); err != nil {
		return err
	}

	updated, err := s.Field(view.Key)
	if err != nil {
		return err
	}
	if updated.Status == form.StatusInvalid && updated.Message != "" {
		_ = r.driver.Info(ctx, r.line(r.theme.ErrorPrefix, updated.Message))
	}
	return nil
}

func (r *Runner) prompt(ctx context.Context, view formflow.FieldView, help string) (string, error) {
	cfg := InputConfig{
		Message: view.Label,
		Default: view.Value,
		Help:    help,
	}
	switch view.Kind {
	case model.FieldKindPassword:
		return r.driver.Password(ctx, cfg)
	case model.FieldKindChoice:
		return r.choose(ctx, view, help)
	default:
		return r.driver.Input(ctx, cfg)
	}
}

func (r *Runner) choose(ctx context.Context, view formflow.FieldView, help string) (string, error) {
	labels := make([]string, len(view.Options))
	current := -1
	for i, opt := range view.Options {
		labels[i] = opt.Label
		if labels[i] == "" {
			labels[i] = opt.Value
		}
		if opt.Value == view.Value {
			current = i
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      view.Label,
			Options:      labels,
			DefaultIndex: current,
			Help:         help,
		})
		if err != nil {
			return "", err
		}
		if idx >= 0 && idx < len(view.Options) {
			return view.Options[idx].Value, nil
		}
		_ = r.driver.Info(ctx, r.line(r.theme.ErrorPrefix, "Invalid "+view.Label+" selection"))
	}
}

func (r *Runner) line(prefix string, parts ...string) string {
	out := make([]string, 0, len(parts)+1)
	if prefix != "" {
		out = append(out, prefix)
	}
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
