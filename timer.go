// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTimerClosed is returned by Timer.Close to indicate that the Timer has
// already been closed.
var ErrTimerClosed = errors.New("the timer has been closed")

// MaxDuration is the sentinel returned by TimeUntilTrigger for a canceled
// timer. It is the maximum representable duration, and is a designed
// non-error: callers can distinguish "canceled" from a real failure
// without a separate query.
const MaxDuration time.Duration = math.MaxInt64

// Timer is a schedulable object bound to a shared Clock. A Timer does not
// wait for time to pass itself; an external dispatch loop polls it via
// IsReady and TimeUntilTrigger, or claims it for a blocking wait via
// ExchangeInUseByWaitSet. All methods on a Timer are safe for concurrent
// use from multiple goroutines.
type Timer struct {
	h *handle

	period time.Duration
	ctx    *Context
	logger *slog.Logger

	// callbackLock guards installing and clearing the on-reset callback.
	// It is also held across the underlying reset call, so a concurrent
	// replacement can never observe a reset in progress with no callback
	// installed.
	callbackLock sync.Mutex

	// onReset is the permanent storage for the installed adapter.
	// Guarded by callbackLock.
	onReset *resetAdapter

	inUseByWaitSet atomic.Bool

	closed atomic.Bool
}

// TimerOption is a configurable option for tailoring a Timer.
type TimerOption interface {
	apply(*Timer) error
}

type timerOptionFunc func(*Timer) error

func (f timerOptionFunc) apply(t *Timer) error { return f(t) }

// WithContext registers the timer against the given Context instead of
// the process-wide default. A nil Context falls back to DefaultContext.
func WithContext(ctx *Context) TimerOption {
	return timerOptionFunc(func(t *Timer) error {
		if ctx == nil {
			ctx = DefaultContext()
		}

		t.ctx = ctx
		return nil
	})
}

// WithLogger sets the logger used for the diagnostics this package logs
// and swallows: handle finalization failures and panics recovered from
// on-reset callbacks. By default, slog.Default() is used.
func WithLogger(logger *slog.Logger) TimerOption {
	return timerOptionFunc(func(t *Timer) error {
		if logger == nil {
			logger = slog.Default()
		}

		t.logger = logger
		return nil
	})
}

// NewTimer constructs a Timer that triggers on the given period, measured
// against the given Clock. The clock is required and may be shared by any
// number of timers. The period must be nonnegative and is immutable for
// the life of the Timer.
//
// The returned Timer is active: its first trigger time is the current
// clock time plus the period. If construction fails, the returned error
// is an *InitializationError and no partially constructed Timer escapes.
func NewTimer(clock *Clock, period time.Duration, opts ...TimerOption) (*Timer, error) {
	t := &Timer{
		period: period,
		ctx:    DefaultContext(),
		logger: slog.Default(),
	}

	for _, o := range opts {
		if err := o.apply(t); err != nil {
			return nil, err
		}
	}

	if clock == nil {
		return nil, &InitializationError{Err: errors.New("a timer requires a clock")}
	}

	t.h = &handle{
		clock:  clock,
		ctx:    t.ctx,
		logger: t.logger,
		period: period,
	}

	clock.lock.Lock()
	err := t.h.initialize()
	clock.lock.Unlock()

	if err != nil {
		return nil, &InitializationError{Err: err}
	}

	return t, nil
}

// Period returns this timer's fixed period.
func (t *Timer) Period() time.Duration {
	return t.period
}

// Context returns the Context this timer was registered against.
func (t *Timer) Context() *Context {
	return t.ctx
}

// Cancel disarms the timer. A canceled timer is never ready, and reports
// MaxDuration from TimeUntilTrigger until it is rearmed via Reset.
func (t *Timer) Cancel() error {
	if err := t.h.cancel(); err != nil {
		return &OperationError{Op: "cancel", Err: err}
	}

	return nil
}

// IsCanceled reports whether the timer is currently canceled.
func (t *Timer) IsCanceled() (bool, error) {
	canceled, err := t.h.isCanceled()
	if err != nil {
		return false, &OperationError{Op: "cancelation query", Err: err}
	}

	return canceled, nil
}

// State returns the derived scheduling state of this timer.
func (t *Timer) State() (State, error) {
	canceled, err := t.IsCanceled()
	switch {
	case err != nil:
		return StateActive, err

	case canceled:
		return StateCanceled, nil

	default:
		return StateActive, nil
	}
}

// Reset rearms the timer from the current clock time, transitioning it
// back to active if it was canceled. Resetting an active timer simply
// pushes its next trigger out by a full period.
//
// Any installed on-reset callback is invoked synchronously, on the
// calling goroutine, with the number of resets that have occurred since
// that callback was installed.
func (t *Timer) Reset() error {
	defer t.callbackLock.Unlock()
	t.callbackLock.Lock()

	adapter, err := t.h.reset()
	if err != nil {
		return &OperationError{Op: "reset", Err: err}
	}

	if adapter != nil {
		adapter.invoke()
	}

	return nil
}

// IsReady reports whether the timer would trigger now: it is not canceled
// and its next trigger time is at or before the current clock time.
// Canceled timers are never ready.
func (t *Timer) IsReady() (bool, error) {
	ready, err := t.h.isReady()
	if err != nil {
		return false, &OperationError{Op: "readiness query", Err: err}
	}

	return ready, nil
}

// TimeUntilTrigger returns the duration until this timer's next trigger.
// The duration is negative if the trigger time has already passed. A
// canceled timer returns MaxDuration rather than an error.
func (t *Timer) TimeUntilTrigger() (time.Duration, error) {
	d, err := t.h.timeUntilTrigger()
	if err != nil {
		return 0, &OperationError{Op: "time-until-trigger query", Err: err}
	}

	return d, nil
}

// Close releases this timer's reference to its underlying handle. The
// installed on-reset callback, if any, is cleared first, so that handle
// finalization can never race a callback installation in progress.
//
// The handle itself is finalized when its last reference is released,
// which may be later than Close if any HandleRefs are outstanding. Once
// the handle is finalized, all remaining operations fail with an
// *OperationError.
//
// This method is idempotent. If this Timer has already been closed, this
// method does nothing and returns ErrTimerClosed.
func (t *Timer) Close() error {
	if t.closed.Swap(true) {
		return ErrTimerClosed
	}

	// cannot fail: this Timer still holds its handle reference
	_ = t.ClearOnResetCallback()

	t.h.release()
	return nil
}
