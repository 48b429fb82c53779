// Package session owns one visitor's form state: the order draft, the quote
// and validation errors derived from it, and the submission lifecycle.
//
// Edits are reducer-style: a mutation function is applied to the draft, the
// quote is recomputed synchronously, and a debounced validation pass is
// scheduled. Pricing is cheap enough to run on every edit; validation is
// debounced only so error messages don't flicker while the visitor types.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/pragerfoto/mentor-order-api/internal/order"
	"github.com/pragerfoto/mentor-order-api/internal/pricing"
)

// DefaultDebounce is the quiescence window after the last edit before
// validation errors are refreshed.
const DefaultDebounce = 400 * time.Millisecond

// ErrReadOnly is returned for edits while a send is in flight or after the
// session succeeded.
var ErrReadOnly = errors.New("form is read-only")

// Edit mutates the draft in place.
type Edit func(*order.Draft)

// Session is the controller for a single form session. Safe for concurrent
// use; the draft is owned exclusively by the session.
type Session struct {
	engine    pricing.Engine
	submitter *order.Submitter
	debounce  time.Duration
	now       func() time.Time
	lg        *zap.Logger

	mu      sync.Mutex
	draft   order.Draft
	quote   pricing.Quote
	errs    order.Errors
	timer   *time.Timer
	sending bool
	closed  bool
}

// Option customizes a Session.
type Option func(*Session)

// WithDebounce overrides the validation quiescence window.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// WithClock replaces the wall clock used for pricing.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session with a fresh draft.
func New(engine pricing.Engine, submitter *order.Submitter, lg *zap.Logger, opts ...Option) *Session {
	s := &Session{
		engine:    engine,
		submitter: submitter,
		debounce:  DefaultDebounce,
		now:       time.Now,
		lg:        lg,
		draft:     order.NewDraft(),
		errs:      order.Errors{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.quote = s.priceLocked()
	return s
}

// Apply runs an edit against the draft, recomputes the quote, and schedules a
// debounced validation refresh. Edits are rejected while a send is in flight
// and after the session succeeded.
func (s *Session) Apply(edit Edit) error {
	if s.submitter.State() == order.StateSucceeded {
		return errors.Wrap(order.ErrAlreadySubmitted, "edit")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The sending flag is owned by s.mu, so an edit racing Submit cannot slip
	// in after the send started.
	if s.closed || s.sending {
		return ErrReadOnly
	}

	edit(&s.draft)
	s.draft.Normalize()
	s.quote = s.priceLocked()
	s.scheduleValidationLocked()
	return nil
}

// priceLocked recomputes the quote for the current draft. Unknown selection
// ids price as zero here; they surface as validation errors on submit.
func (s *Session) priceLocked() pricing.Quote {
	selected, err := s.draft.Selected()
	if err != nil {
		s.lg.Warn("unpriceable selection", zap.Error(err))
	}
	return s.engine.Quote(selected, s.draft.ParticipantCount, s.now())
}

// scheduleValidationLocked arms the debounce timer, cancelling any pending
// pass so only the quiescent state is validated. Matching the form's original
// behaviour, untouched drafts are not validated: the pass runs only once the
// visitor has started filling in the identifying fields.
func (s *Session) scheduleValidationLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if s.draft.CustomerName == "" && s.draft.CustomerEmail == "" && s.draft.BillingName == "" {
			return
		}
		s.errs = order.Validate(s.draft)
	})
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() order.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Quote returns the latest recomputed quote.
func (s *Session) Quote() pricing.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quote
}

// Errors returns the validation errors from the last debounced pass.
func (s *Session) Errors() order.Errors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// Submittable reports whether the submit action is enabled.
func (s *Session) Submittable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return order.Submittable(s.draft, s.errs) && !s.closed
}

// State returns the submission state.
func (s *Session) State() order.State {
	return s.submitter.State()
}

// Submit validates and sends the current draft. On success the draft is
// discarded and the session ends.
func (s *Session) Submit(ctx context.Context) (order.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return order.Result{}, ErrReadOnly
	}
	if s.sending {
		s.mu.Unlock()
		return order.Result{State: order.StateSending}, nil
	}
	d := s.draft
	s.sending = true
	s.mu.Unlock()

	res, err := s.submitter.Submit(ctx, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sending = false
	if !res.FieldErrors.OK() {
		// Surface field errors immediately, ahead of the debounce.
		s.errs = res.FieldErrors
	}
	if res.State == order.StateSucceeded {
		s.closeLocked()
	}
	return res, err
}

// Reset abandons the session: the draft is discarded and any in-flight send
// result is ignored when it resolves.
func (s *Session) Reset() {
	s.submitter.Reset()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.closed = true
	s.draft = order.Draft{}
}
