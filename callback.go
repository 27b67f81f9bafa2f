// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"errors"
	"log/slog"
	"sync/atomic"
)

// ErrNilCallback is returned by SetOnResetCallback when given a nil
// callback. It is rejected before any interaction with the handle.
var ErrNilCallback = errors.New("the callback passed to SetOnResetCallback must not be nil")

// OnReset is a notification invoked each time a timer is rearmed via
// Reset. The argument is the number of resets that have occurred since
// this callback was installed, starting at 1.
//
// An OnReset runs synchronously on the goroutine calling Reset, under the
// timer's callback guard. It must not call back into the Timer and should
// not block. A panic raised by an OnReset is recovered, logged, and
// discarded; it never escapes into the trigger path.
type OnReset func(resetCount uint64)

// resetAdapter wraps a user OnReset with the panic barrier. The adapter
// owns the reset counter for its installation, so each newly installed
// callback observes counts starting from 1.
type resetAdapter struct {
	f      OnReset
	logger *slog.Logger
	resets atomic.Uint64
}

func newResetAdapter(f OnReset, logger *slog.Logger) *resetAdapter {
	return &resetAdapter{
		f:      f,
		logger: logger,
	}
}

// invoke runs the user callback with the next reset count. A panic from
// user code is recovered and logged rather than disturbing the caller.
func (ra *resetAdapter) invoke() {
	defer func() {
		if r := recover(); r != nil {
			ra.logger.Error("recovered panic from on-reset callback", "panic", r)
		}
	}()

	ra.f(ra.resets.Add(1))
}

// SetOnResetCallback installs or replaces this timer's reset
// notification. At most one callback is installed at a time; installing a
// new one replaces the old.
//
// The callback is wrapped in an adapter that is fully constructed before
// it is published to the handle's trigger slot, so a concurrent reset
// observes either the old callback or the new one, never a partial value.
// A reset whose trigger happened strictly before this call completed may
// still observe the old callback.
func (t *Timer) SetOnResetCallback(f OnReset) error {
	if f == nil {
		return ErrNilCallback
	}

	adapter := newResetAdapter(f, t.logger)

	defer t.callbackLock.Unlock()
	t.callbackLock.Lock()

	if err := t.h.setOnReset(adapter); err != nil {
		return &OperationError{Op: "on-reset registration", Err: err}
	}

	t.onReset = adapter
	return nil
}

// ClearOnResetCallback removes any installed reset notification. It is a
// no-op if none is installed. Close calls this before releasing the
// timer's handle reference.
func (t *Timer) ClearOnResetCallback() error {
	defer t.callbackLock.Unlock()
	t.callbackLock.Lock()

	if t.onReset == nil {
		return nil
	}

	if err := t.h.setOnReset(nil); err != nil {
		return &OperationError{Op: "on-reset registration", Err: err}
	}

	t.onReset = nil
	return nil
}
