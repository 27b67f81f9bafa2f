// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"sync/atomic"
	"time"
)

// ExchangeInUseByWaitSet atomically sets whether this timer is claimed by
// a wait set and returns the previous value. Dispatch loops use this flag
// to ensure at most one poller blocks on a given timer: a poller that
// receives true from an exchange it expected to return false must back
// off, as another poller already holds the claim. No other synchronization
// is implied.
func (t *Timer) ExchangeInUseByWaitSet(inUse bool) bool {
	return t.inUseByWaitSet.Swap(inUse)
}

// Handle returns a read-only view of this timer's underlying handle,
// suitable for integrating the timer into an external multi-wait
// primitive. The returned HandleRef holds its own reference: the handle,
// and transitively its clock and context, stay alive until every
// outstanding HandleRef is released, even if the Timer itself is closed.
func (t *Timer) Handle() (*HandleRef, error) {
	if t.closed.Load() || !t.h.acquire() {
		return nil, ErrTimerClosed
	}

	return &HandleRef{h: t.h}, nil
}

// HandleRef is a read-only, reference-holding view of a timer's
// schedulable state.
type HandleRef struct {
	h        *handle
	released atomic.Bool
}

// Period returns the handle's fixed period.
func (hr *HandleRef) Period() time.Duration {
	return hr.h.period
}

// NextTrigger returns the next scheduled trigger time.
func (hr *HandleRef) NextTrigger() (time.Time, error) {
	next, err := hr.h.nextTriggerTime()
	if err != nil {
		return time.Time{}, &OperationError{Op: "next-trigger query", Err: err}
	}

	return next, nil
}

// Canceled reports whether the handle is currently canceled.
func (hr *HandleRef) Canceled() (bool, error) {
	canceled, err := hr.h.isCanceled()
	if err != nil {
		return false, &OperationError{Op: "cancelation query", Err: err}
	}

	return canceled, nil
}

// Release drops this view's reference to the handle. Releasing the last
// reference finalizes the handle. This method is idempotent.
func (hr *HandleRef) Release() {
	if !hr.released.Swap(true) {
		hr.h.release()
	}
}
