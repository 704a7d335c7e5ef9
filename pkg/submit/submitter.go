package submit

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultDelay mirrors the latency of the simulated account call.
const DefaultDelay = 1500 * time.Millisecond

// Submitter performs the external create-account (or sign-in) action with a
// frozen snapshot. A non-nil error is reported to the user; returning a
// *Error lets the implementation choose the user-facing reason.
type Submitter interface {
	Submit(ctx context.Context, snap form.Snapshot) error
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, snap form.Snapshot) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, snap form.Snapshot) error {
	return f(ctx, snap)
}

// SimulatedSubmitter waits Delay and succeeds. A negative Delay disables the
// wait.
type SimulatedSubmitter struct {
	Delay time.Duration
}

// Submit sleeps for the configured delay, honouring ctx.
func (s SimulatedSubmitter) Submit(ctx context.Context, _ form.Snapshot) error {
	return sleep(ctx, s.delay())
}

func (s SimulatedSubmitter) delay() time.Duration {
	if s.Delay == 0 {
		return DefaultDelay
	}
	return s.Delay
}

// CredentialSubmitter simulates sign-in: after the delay it accepts only the
// configured email.
type CredentialSubmitter struct {
	SimulatedSubmitter
	AcceptEmail string
}

// DefaultAcceptEmail is the only account the simulated sign-in accepts.
const DefaultAcceptEmail = "user@example.com"

// Submit rejects every email but the accepted one.
func (s CredentialSubmitter) Submit(ctx context.Context, snap form.Snapshot) error {
	if err := s.SimulatedSubmitter.Submit(ctx, snap); err != nil {
		return err
	}
	accept := s.AcceptEmail
	if accept == "" {
		accept = DefaultAcceptEmail
	}
	if !strings.EqualFold(strings.TrimSpace(snap.Value(model.Email)), accept) {
		return &Error{Reason: "Invalid email or password."}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
