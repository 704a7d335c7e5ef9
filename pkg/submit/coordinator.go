package submit

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
)

var (
	// ErrNotSubmittable is returned when a required field is not valid.
	ErrNotSubmittable = errors.New("submit: form is not submittable")
	// ErrInFlight is returned to callers that attempt a submission while
	// another one is outstanding. No external call is made for them.
	ErrInFlight = errors.New("submit: submission already in flight")
)

// DefaultReason is shown when the submitter fails without a reason of its own.
const DefaultReason = "Something went wrong. Please try again."

// Error is a submission failure carrying a user-displayable reason. The form
// state is left untouched so the user can retry.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "submit: " + e.Reason + ": " + e.Err.Error()
	}
	return "submit: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Result describes a successful submission.
type Result struct {
	Snapshot form.Snapshot
	Values   map[model.FieldKey]string
	Took     time.Duration
}

// Coordinator gates submissions on submit-readiness and keeps at most one
// submission in flight.
type Coordinator struct {
	store     *form.Store
	submitter Submitter
	logger    *zap.Logger
	timeout   time.Duration
	onReset   func()
	inflight  atomic.Bool
}

// Option configures the coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds each submission. Zero leaves it unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithResetHook registers fn to run after a successful submission, right
// before the form is reset.
func WithResetHook(fn func()) Option {
	return func(c *Coordinator) {
		c.onReset = fn
	}
}

// NewCoordinator wires a coordinator to store. A nil submitter falls back to
// the simulated one.
func NewCoordinator(store *form.Store, submitter Submitter, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("submit: store is required")
	}
	if submitter == nil {
		submitter = SimulatedSubmitter{}
	}
	c := &Coordinator{
		store:     store,
		submitter: submitter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// InFlight reports whether a submission is outstanding.
func (c *Coordinator) InFlight() bool {
	return c.inflight.Load()
}

// Attempt freezes the current snapshot and hands it to the submitter. A
// pending suggestion never blocks it. On success the form is reset; on
// failure the state is preserved and a *Error is returned.
func (c *Coordinator) Attempt(ctx context.Context) (Result, error) {
	if !c.inflight.CompareAndSwap(false, true) {
		c.logger.Debug("submission ignored, another one is in flight")
		return Result{}, ErrInFlight
	}
	defer c.inflight.Store(false)

	snap := c.store.Snapshot()
	if !snap.Submittable {
		c.store.ValidateAll()
		return Result{Snapshot: snap}, ErrNotSubmittable
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	err := c.submitter.Submit(ctx, snap)
	took := time.Since(started)
	if err != nil {
		failure := asError(err)
		c.logger.Warn("submission failed",
			zap.String("reason", failure.Reason),
			zap.Duration("took", took),
			zap.Error(err),
		)
		return Result{Snapshot: snap, Took: took}, failure
	}

	if c.onReset != nil {
		c.onReset()
	}
	c.store.Reset()
	c.logger.Info("submission succeeded",
		zap.String("email", snap.Value(model.Email)),
		zap.Duration("took", took),
	)
	return Result{Snapshot: snap, Values: snap.Values(), Took: took}, nil
}

func asError(err error) *Error {
	var failure *Error
	if errors.As(err, &failure) {
		if failure.Reason == "" {
			return &Error{Reason: DefaultReason, Err: failure.Err}
		}
		return failure
	}
	return &Error{Reason: DefaultReason, Err: err}
}
