package submit_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submit"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func newStore(t *testing.T, formID string, values map[model.FieldKey]string) *form.Store {
	t.Helper()
	forms, err := schema.Default()
	if err != nil {
		t.Fatalf("load default forms: %v", err)
	}
	spec, _ := forms.Form(formID)
	store, err := form.NewStore(spec, validation.New())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for key, value := range values {
		if _, err := store.Change(key, value); err != nil {
			t.Fatalf("change %s: %v", key, err)
		}
	}
	return store
}

func validSignup() map[model.FieldKey]string {
	return map[model.FieldKey]string{
		model.FullName:    "Jane Doe",
		model.PhoneNumber: "+14155550132",
		model.Email:       "jane@acme.com",
		model.Password:    "abcdefgh",
		model.CompanyName: "Acme",
		model.IsAgency:    "yes",
	}
}

func TestAttempt_SuccessResetsForm(t *testing.T) {
	store := newStore(t, schema.FormSignup, validSignup())
	var seen form.Snapshot
	coord, err := submit.NewCoordinator(store, submit.SubmitterFunc(func(_ context.Context, snap form.Snapshot) error {
		seen = snap
		return nil
	}))
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	res, err := coord.Attempt(context.Background())
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if diff := cmp.Diff(validSignup(), res.Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(validSignup(), seen.Values()); diff != "" {
		t.Fatalf("submitter snapshot mismatch (-want +got):\n%s", diff)
	}
	if got := store.Snapshot().Value(model.Email); got != "" {
		t.Fatalf("form not reset after success, email=%q", got)
	}
}

func TestAttempt_ResetHookRunsBeforeReset(t *testing.T) {
	store := newStore(t, schema.FormSignup, validSignup())
	var emailAtHook string
	hooks := 0
	coord, _ := submit.NewCoordinator(store, submit.SubmitterFunc(func(context.Context, form.Snapshot) error {
		return nil
	}), submit.WithResetHook(func() {
		hooks++
		emailAtHook = store.Snapshot().Value(model.Email)
	}))

	if _, err := coord.Attempt(context.Background()); err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if hooks != 1 || emailAtHook != "jane@acme.com" {
		t.Fatalf("hook ran %d times with email %q", hooks, emailAtHook)
	}

	failing, _ := submit.NewCoordinator(newStore(t, schema.FormSignup, validSignup()),
		submit.SubmitterFunc(func(context.Context, form.Snapshot) error { return errors.New("down") }),
		submit.WithResetHook(func() { hooks++ }),
	)
	if _, err := failing.Attempt(context.Background()); err == nil {
		t.Fatalf("expected failure")
	}
	if hooks != 1 {
		t.Fatalf("reset hook must not run on failure")
	}
}

func TestAttempt_NotSubmittable(t *testing.T) {
	store := newStore(t, schema.FormSignup, map[model.FieldKey]string{model.FullName: "Jane"})
	calls := 0
	coord, _ := submit.NewCoordinator(store, submit.SubmitterFunc(func(context.Context, form.Snapshot) error {
		calls++
		return nil
	}))

	if _, err := coord.Attempt(context.Background()); !errors.Is(err, submit.ErrNotSubmittable) {
		t.Fatalf("expected ErrNotSubmittable, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("submitter must not run for an invalid form")
	}
	if field, _ := store.Snapshot().Field(model.PhoneNumber); field.Message == "" {
		t.Fatalf("expected validation messages to be revealed")
	}
}

func TestAttempt_FailurePreservesState(t *testing.T) {
	store := newStore(t, schema.FormSignup, validSignup())
	coord, _ := submit.NewCoordinator(store, submit.SubmitterFunc(func(context.Context, form.Snapshot) error {
		return errors.New("connection reset")
	}))
	before := store.Snapshot()

	_, err := coord.Attempt(context.Background())
	var failure *submit.Error
	if !errors.As(err, &failure) {
		t.Fatalf("expected *submit.Error, got %v", err)
	}
	if failure.Reason != submit.DefaultReason {
		t.Fatalf("unexpected reason %q", failure.Reason)
	}
	if diff := cmp.Diff(before, store.Snapshot()); diff != "" {
		t.Fatalf("state changed after failure (-before +after):\n%s", diff)
	}
}

func TestAttempt_ReentrantCallIgnored(t *testing.T) {
	store := newStore(t, schema.FormSignup, validSignup())
	release := make(chan struct{})
	entered := make(chan struct{})
	var calls atomic.Int32
	coord, _ := submit.NewCoordinator(store, submit.SubmitterFunc(func(context.Context, form.Snapshot) error {
		calls.Add(1)
		close(entered)
		<-release
		return nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = coord.Attempt(context.Background())
	}()

	<-entered
	if !coord.InFlight() {
		t.Fatalf("expected submission in flight")
	}
	if _, err := coord.Attempt(context.Background()); !errors.Is(err, submit.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Fatalf("first attempt: %v", firstErr)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one external call, got %d", got)
	}
}

func TestAttempt_Timeout(t *testing.T) {
	store := newStore(t, schema.FormSignup, validSignup())
	coord, _ := submit.NewCoordinator(store, submit.SimulatedSubmitter{Delay: time.Second}, submit.WithTimeout(10*time.Millisecond))

	_, err := coord.Attempt(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if got := store.Snapshot().Value(model.Email); got != "jane@acme.com" {
		t.Fatalf("state lost after timeout: email=%q", got)
	}
}

func TestCredentialSubmitter(t *testing.T) {
	sub := submit.CredentialSubmitter{SimulatedSubmitter: submit.SimulatedSubmitter{Delay: -1}}

	ok := newStore(t, schema.FormSignin, map[model.FieldKey]string{
		model.Email:    "user@example.com",
		model.Password: "Abcdef1!",
	})
	if err := sub.Submit(context.Background(), ok.Snapshot()); err != nil {
		t.Fatalf("expected accepted login, got %v", err)
	}

	bad := newStore(t, schema.FormSignin, map[model.FieldKey]string{
		model.Email:    "jane@acme.com",
		model.Password: "Abcdef1!",
	})
	err := sub.Submit(context.Background(), bad.Snapshot())
	var failure *submit.Error
	if !errors.As(err, &failure) || failure.Reason != "Invalid email or password." {
		t.Fatalf("expected login failure, got %v", err)
	}
}
