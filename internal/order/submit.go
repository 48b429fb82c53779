package order

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/pragerfoto/mentor-order-api/internal/pricing"
)

// State is the submission lifecycle position of a form session.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSending
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSending:
		return "sending"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrAlreadySubmitted is returned when a submission is attempted after the
// session already succeeded. Succeeded is terminal; the session is over.
var ErrAlreadySubmitted = errors.New("order already submitted")

// Order is the finalized, priced draft handed to the mail relay.
type Order struct {
	Reference   string
	Draft       Draft
	Quote       pricing.Quote
	SubmittedAt time.Time
}

// Receipt is the relay's acknowledgement of a delivered order.
type Receipt struct {
	// Message is the canonical confirmation text for the relay's transport.
	Message string
}

// Relay delivers a finalized order as an email. Implementations are
// interchangeable; the submitter never depends on which transport is wired.
type Relay interface {
	Send(ctx context.Context, o *Order) (*Receipt, error)
}

// Result describes the outcome of one Submit call.
type Result struct {
	State State
	// FieldErrors is non-empty when validation blocked the submission.
	FieldErrors Errors
	// Order is set once the draft was serialized and handed to the relay.
	Order *Order
	// Message is the confirmation text on success, or the user-visible
	// failure reason.
	Message string
}

// Submitter drives one session's draft through validate, serialize, send, and
// response interpretation. It enforces at most one in-flight send: submit
// attempts while Sending are no-ops.
type Submitter struct {
	relay   Relay
	engine  pricing.Engine
	timeout time.Duration

	now    func() time.Time
	newRef func() string

	mu         sync.Mutex
	state      State
	lastReason string
	// generation invalidates an in-flight send when the draft is discarded:
	// a result arriving for an older generation must not mutate state.
	generation int
}

// SubmitterOption customizes a Submitter.
type SubmitterOption func(*Submitter)

// WithClock replaces the wall clock, for tests and deterministic pricing.
func WithClock(now func() time.Time) SubmitterOption {
	return func(s *Submitter) { s.now = now }
}

// WithReference replaces the order reference generator.
func WithReference(f func() string) SubmitterOption {
	return func(s *Submitter) { s.newRef = f }
}

// NewSubmitter creates a Submitter in the Idle state. timeout bounds each
// relay call; zero means no bound beyond the caller's context.
func NewSubmitter(relay Relay, engine pricing.Engine, timeout time.Duration, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		relay:   relay,
		engine:  engine,
		timeout: timeout,
		now:     time.Now,
		newRef:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current submission state.
func (s *Submitter) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReason returns the failure reason kept for display, if any.
func (s *Submitter) LastReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReason
}

// Reset discards the session's submission progress, returning to Idle. Any
// in-flight send keeps running but its result is ignored when it resolves.
func (s *Submitter) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = StateIdle
	s.lastReason = ""
}

// Submit runs the submission state machine once for the given draft.
//
// Idle/Failed move through Validating; a draft with validation errors falls
// back to the origin state without the relay ever being invoked. A valid
// draft is priced, serialized, and sent; the relay's answer decides between
// Succeeded (terminal) and Failed (retryable by resubmission).
func (s *Submitter) Submit(ctx context.Context, d Draft) (Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateSucceeded:
		s.mu.Unlock()
		return Result{State: StateSucceeded}, ErrAlreadySubmitted
	case StateSending, StateValidating:
		st := s.state
		s.mu.Unlock()
		return Result{State: st}, nil
	}
	origin := s.state
	s.state = StateValidating
	gen := s.generation
	s.mu.Unlock()

	d.Normalize()
	if errs := Validate(d); !errs.OK() {
		s.transition(gen, origin, s.reasonFor(origin))
		return Result{State: origin, FieldErrors: errs}, nil
	}

	selected, err := d.Selected()
	if err != nil {
		s.transition(gen, origin, s.reasonFor(origin))
		return Result{State: origin}, errors.Wrap(err, "resolve selection")
	}

	now := s.now()
	o := &Order{
		Reference:   s.newRef(),
		Draft:       d,
		Quote:       s.engine.Quote(selected, d.ParticipantCount, now),
		SubmittedAt: now,
	}

	if !s.transition(gen, StateSending, "") {
		return Result{State: StateIdle}, nil
	}

	sendCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	receipt, err := s.relay.Send(sendCtx, o)
	if err != nil {
		reason := failureReason(err)
		if !s.transitionFailed(gen, reason) {
			return Result{State: StateIdle}, nil
		}
		return Result{State: StateFailed, Order: o, Message: reason}, err
	}

	if !s.transition(gen, StateSucceeded, "") {
		return Result{State: StateIdle}, nil
	}
	return Result{State: StateSucceeded, Order: o, Message: receipt.Message}, nil
}

// transition moves to next unless the generation changed underneath us.
// It reports whether the transition was applied.
func (s *Submitter) transition(gen int, next State, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.state = next
	s.lastReason = reason
	return true
}

func (s *Submitter) transitionFailed(gen int, reason string) bool {
	return s.transition(gen, StateFailed, reason)
}

// reasonFor preserves the last failure message when validation bounces the
// session back to Failed instead of Idle.
func (s *Submitter) reasonFor(origin State) string {
	if origin == StateFailed {
		return s.LastReason()
	}
	return ""
}

// failureReason maps relay and transport errors to the single user-visible
// failure message, with the relay's own detail when it supplied one.
func failureReason(err error) string {
	var relayErr *RelayError
	if errors.As(err, &relayErr) {
		return relayErr.UserMessage()
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		// Operator detail never reaches the customer.
		return "Szerver konfigurációs hiba."
	}
	return GenericFailureMessage
}
