package suggest

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/model"
)

// State is the controller's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Outcome is the terminal result of one request.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDiscarded Outcome = "discarded"
	OutcomeFailed    Outcome = "failed"
)

// Discard reasons reported in Resolution.Reason.
const (
	ReasonSuperseded   = "superseded"
	ReasonEmailChanged = "email already qualified"
	ReasonEmptyDomain  = "empty domain"
)

// Resolution describes how a request ended.
type Resolution struct {
	Seq         uint64
	CompanyName string
	Outcome     Outcome
	Domain      string
	Email       string
	Reason      string
	Err         error
}

// Controller runs email domain lookups for a form store. Every trigger gets
// the next sequence number; only the request holding the latest number may
// write, so the last trigger wins without cancelling earlier work.
type Controller struct {
	store    *form.Store
	client   Client
	logger   *zap.Logger
	timeout  time.Duration
	observer func(Resolution)

	mu       sync.Mutex
	seq      uint64
	inflight int
	idle     chan struct{}
	last     *Resolution
}

// Option configures the controller.
type Option func(*Controller)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds each lookup. Zero leaves lookups unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithObserver registers fn to receive every resolution. It runs on the
// goroutine that resolved the request, after the controller lock is released.
func WithObserver(fn func(Resolution)) Option {
	return func(c *Controller) {
		c.observer = fn
	}
}

var (
	errNilStore  = errors.New("suggest: store is required")
	errNilClient = errors.New("suggest: client is required")
)

// NewController wires a controller to store and client.
func NewController(store *form.Store, client Client, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, errNilStore
	}
	if client == nil {
		return nil, errNilClient
	}
	c := &Controller{
		store:  store,
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Trigger starts a lookup when the current form state satisfies the trigger
// condition. It returns the request's sequence number and whether one was
// started. The lookup runs in its own goroutine bounded by ctx.
func (c *Controller) Trigger(ctx context.Context) (uint64, bool) {
	snap := c.store.Snapshot()
	if !Eligible(snap) {
		return 0, false
	}
	company := snap.Value(model.CompanyName)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	if c.inflight == 0 {
		c.idle = make(chan struct{})
	}
	c.inflight++
	c.mu.Unlock()

	c.logger.Debug("suggestion requested",
		zap.Uint64("seq", seq),
		zap.String("company", company),
	)

	go c.run(ctx, seq, company)
	return seq, true
}

func (c *Controller) run(ctx context.Context, seq uint64, company string) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.client.Infer(callCtx, company)
	c.report(c.resolve(seq, company, res, err))

	c.mu.Lock()
	c.finishLocked()
	c.mu.Unlock()
}

// resolve holds the controller lock across the sequence check and the store
// write so no newer trigger can be issued in between.
func (c *Controller) resolve(seq uint64, company string, res Result, err error) Resolution {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Resolution{Seq: seq, CompanyName: company, Domain: res.Domain}

	switch {
	case err != nil:
		out.Outcome = OutcomeFailed
		out.Err = wrap(company, err)
	case seq != c.seq:
		out.Outcome = OutcomeDiscarded
		out.Reason = ReasonSuperseded
	case res.Domain == "":
		out.Outcome = OutcomeDiscarded
		out.Reason = ReasonEmptyDomain
	default:
		snap, applied, perr := c.store.Propose(model.Email, func(current form.Snapshot) (string, bool) {
			email := current.Value(model.Email)
			if !NeedsDomain(email) {
				return "", false
			}
			return ComposeEmail(email, current.Value(model.FullName), res.Domain), true
		})
		switch {
		case perr != nil:
			out.Outcome = OutcomeFailed
			out.Err = wrap(company, perr)
		case !applied:
			out.Outcome = OutcomeDiscarded
			out.Reason = ReasonEmailChanged
		default:
			out.Outcome = OutcomeApplied
			out.Email = snap.Value(model.Email)
		}
	}

	c.last = &out
	return out
}

func (c *Controller) finishLocked() {
	c.inflight--
	if c.inflight == 0 && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

func (c *Controller) report(r Resolution) {
	fields := []zap.Field{
		zap.Uint64("seq", r.Seq),
		zap.String("company", r.CompanyName),
	}
	switch r.Outcome {
	case OutcomeFailed:
		c.logger.Warn("suggestion failed", append(fields, zap.Error(r.Err))...)
	case OutcomeDiscarded:
		c.logger.Debug("suggestion discarded", append(fields, zap.String("reason", r.Reason))...)
	case OutcomeApplied:
		c.logger.Info("suggestion applied", append(fields, zap.String("domain", r.Domain))...)
	}
	if c.observer != nil {
		c.observer(r)
	}
}

// Invalidate supersedes every outstanding request without issuing a new one,
// so none of them can write. Used when the form they were started for is
// discarded.
func (c *Controller) Invalidate() {
	c.mu.Lock()
	c.seq++
	c.mu.Unlock()
}

// State reports Pending while any request is outstanding.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		return StatePending
	}
	return StateIdle
}

// Latest returns the highest sequence number issued so far.
func (c *Controller) Latest() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Last returns the most recent resolution, if any.
func (c *Controller) Last() (Resolution, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Resolution{}, false
	}
	return *c.last, true
}

// Wait blocks until no request is outstanding or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.inflight == 0 {
			c.mu.Unlock()
			return nil
		}
		idle := c.idle
		c.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
