package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/suggest"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

type stubDriver struct {
	mu           sync.Mutex
	inputs       []string
	passwords    []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	inputPos     int
	passPos      int
	selectPos    int
	confirmPos   int
	prompts      []InputConfig
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.prompts = append(s.prompts, cfg)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) infos() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.infoMessages...)
}

func newSession(t *testing.T, runner *Runner, id string, opts ...formflow.Option) *formflow.Session {
	t.Helper()
	opts = append(opts, formflow.WithNotifier(runner))
	session, err := formflow.New(testsupport.LoadForm(t, id), opts...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func TestRun_SignupWithSuggestion(t *testing.T) {
	driver := &stubDriver{
		// full name, phone, email (left empty), company, suggested email review
		inputs:    []string{"Jane Doe", "+14155550132", "", "Acme", "jane@acme.com"},
		passwords: []string{"abcdefgh"},
		selectIdx: []int{1},
		confirm:   []bool{true},
	}
	runner := New(WithPromptDriver(driver))
	session := newSession(t, runner, schema.FormSignup,
		formflow.WithSuggestionClient(suggest.StaticClient{Domains: map[string]string{"acme": "acme.com"}}),
		formflow.WithSubmitter(submit.SimulatedSubmitter{Delay: -1}),
	)

	res, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := map[model.FieldKey]string{
		model.FullName:    "Jane Doe",
		model.PhoneNumber: "+14155550132",
		model.Email:       "jane@acme.com",
		model.Password:    "abcdefgh",
		model.CompanyName: "Acme",
		model.IsAgency:    "no",
	}
	if diff := cmp.Diff(want, res.Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}

	review := driver.prompts[len(driver.prompts)-1]
	if review.Default != "jane@acme.com" || review.Help != suggestedHelp {
		t.Fatalf("suggested email not offered for review: %+v", review)
	}

	wantInfo := []string{
		"Create Account",
		"x Invalid email address.",
		"i AI Suggestion Email domain updated to @acme.com. Please complete the username if needed.",
		"i Account Created! Your account has been successfully created. A notification has been sent.",
	}
	if diff := cmp.Diff(wantInfo, driver.infos()); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ReasksInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"bad", "user@example.com"},
		passwords: []string{"short", "Abcdef1!"},
		confirm:   []bool{true},
	}
	runner := New(WithPromptDriver(driver))
	session := newSession(t, runner, schema.FormSignin,
		formflow.WithSubmitter(submit.CredentialSubmitter{SimulatedSubmitter: submit.SimulatedSubmitter{Delay: -1}}),
	)

	res, err := runner.Run(context.Background(), session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Values[model.Email] != "user@example.com" {
		t.Fatalf("submitted email = %q", res.Values[model.Email])
	}

	// second email prompt carries the validation message as help
	if got := driver.prompts[1]; got.Default != "bad" || got.Help != "Invalid email address." {
		t.Fatalf("unexpected re-prompt %+v", got)
	}
	wantInfo := []string{
		"Signin to your PopX account",
		"x Invalid email address.",
		"x Password must be at least 8 characters long.",
		"i Login Successful! Welcome back to PopX.",
	}
	if diff := cmp.Diff(wantInfo, driver.infos()); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_RetriesAfterFailedSubmission(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"jane@acme.com", "user@example.com"},
		passwords: []string{"Abcdef1!", "Abcdef1!"},
		confirm:   []bool{true, true, true},
	}
	runner := New(WithPromptDriver(driver), WithTheme(Theme{InfoPrefix: "[info]", ErrorPrefix: "[error]"}))
	session := newSession(t, runner, schema.FormSignin,
		formflow.WithSubmitter(submit.CredentialSubmitter{SimulatedSubmitter: submit.SimulatedSubmitter{Delay: -1}}),
	)

	if _, err := runner.Run(context.Background(), session); err != nil {
		t.Fatalf("run: %v", err)
	}
	if driver.confirmPos != 3 {
		t.Fatalf("expected submit, retry and submit confirms, got %d", driver.confirmPos)
	}
	// the retry round starts from the rejected answer
	if got := driver.prompts[1].Default; got != "jane@acme.com" {
		t.Fatalf("retry prompt default = %q", got)
	}
	infos := driver.infos()
	if infos[1] != "[error] Submission Failed Invalid email or password." {
		t.Fatalf("unexpected failure notice %q", infos[1])
	}
}

func TestRun_GiveUpAfterFailure(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"jane@acme.com"},
		passwords: []string{"Abcdef1!"},
		confirm:   []bool{true, false},
	}
	runner := New(WithPromptDriver(driver))
	session := newSession(t, runner, schema.FormSignin,
		formflow.WithSubmitter(submit.CredentialSubmitter{SimulatedSubmitter: submit.SimulatedSubmitter{Delay: -1}}),
	)

	_, err := runner.Run(context.Background(), session)
	var failure *submit.Error
	if !errors.As(err, &failure) {
		t.Fatalf("expected submission failure, got %v", err)
	}
}

func TestRun_Declined(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"user@example.com"},
		passwords: []string{"Abcdef1!"},
		confirm:   []bool{false},
	}
	runner := New(WithPromptDriver(driver))
	session := newSession(t, runner, schema.FormSignin)

	if _, err := runner.Run(context.Background(), session); !errors.Is(err, ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
}

func TestRun_WithoutConfirm(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"user@example.com"},
		passwords: []string{"Abcdef1!"},
	}
	runner := New(WithPromptDriver(driver), WithConfirm(false))
	session := newSession(t, runner, schema.FormSignin,
		formflow.WithSubmitter(submit.SimulatedSubmitter{Delay: -1}),
	)

	if _, err := runner.Run(context.Background(), session); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRun_PromptErrorStops(t *testing.T) {
	driver := &stubDriver{}
	runner := New(WithPromptDriver(driver))
	session := newSession(t, runner, schema.FormSignin)

	if _, err := runner.Run(context.Background(), session); err == nil {
		t.Fatalf("expected prompt error")
	}
	if _, err := runner.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil session")
	}
}
