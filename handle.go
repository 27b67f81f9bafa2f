// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// errFinalized is the underlying failure reported by every handle
// operation after the handle has been quiesced.
var errFinalized = errors.New("the timer handle has been finalized")

// handle is the underlying schedulable state of a timer: its period, next
// trigger time, and canceled flag. A handle is shared between its owning
// Timer and any outstanding HandleRefs, and is finalized exactly once,
// when the last reference is released.
//
// The clock and context references are captured at initialization and
// dropped only after the handle has been quiesced, so both outlive the
// handle even when the owning Timer is long gone.
type handle struct {
	refs atomic.Int64

	clock  *Clock
	ctx    *Context
	logger *slog.Logger

	period time.Duration

	// lock serializes the schedulable state below.
	lock        sync.Mutex
	nextTrigger time.Time
	canceled    bool
	finalized   bool

	// onReset is the registered trigger slot. It holds a fully constructed
	// adapter or nil, and is published with a single atomic store so the
	// trigger path never observes a torn value.
	onReset atomic.Pointer[resetAdapter]
}

// initialize arms the handle against its clock and context. The caller
// must hold the clock guard. On failure nothing is registered, so a
// half-constructed handle never escapes.
func (h *handle) initialize() error {
	if h.period < 0 {
		return fmt.Errorf("negative period: %s", h.period)
	}

	if err := h.ctx.attach(); err != nil {
		return err
	}

	h.clock.attach()
	h.nextTrigger = h.clock.Now().Add(h.period)
	h.refs.Store(1)
	return nil
}

// acquire adds a reference to this handle. It reports false if the last
// reference has already been released.
func (h *handle) acquire() bool {
	for {
		refs := h.refs.Load()
		if refs < 1 {
			return false
		}

		if h.refs.CompareAndSwap(refs, refs+1) {
			return true
		}
	}
}

// release drops one reference. Releasing the last reference quiesces the
// handle under the clock guard and only then drops the captured clock and
// context references. Finalization failures are logged and swallowed, as
// teardown must never fail loudly.
func (h *handle) release() {
	if h.refs.Add(-1) > 0 {
		return
	}

	h.lock.Lock()
	clock, ctx := h.clock, h.ctx
	h.lock.Unlock()

	if clock == nil {
		// an extra release after finalization
		h.logger.Error("failed to clean up timer handle", "error", errFinalized)
		return
	}

	clock.lock.Lock()
	err := h.finalize()
	clock.lock.Unlock()

	if err != nil {
		h.logger.Error("failed to clean up timer handle", "error", err)
	}

	h.lock.Lock()
	h.clock = nil
	h.ctx = nil
	h.lock.Unlock()

	ctx.detach()
}

// finalize quiesces the handle: no operation can succeed afterward, and
// the registered trigger slot is dropped. The caller must hold the clock
// guard.
func (h *handle) finalize() error {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return errFinalized
	}

	h.finalized = true
	h.canceled = true
	h.onReset.Store(nil)
	h.clock.detach()
	return nil
}

// cancel disarms the handle.
func (h *handle) cancel() error {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return errFinalized
	}

	h.canceled = true
	return nil
}

func (h *handle) isCanceled() (bool, error) {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return false, errFinalized
	}

	return h.canceled, nil
}

// reset rearms the handle from the current clock time and returns the
// registered adapter to notify, if any. The owning Timer invokes the
// adapter outside this handle's lock but still under its callback guard.
func (h *handle) reset() (*resetAdapter, error) {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return nil, errFinalized
	}

	h.canceled = false
	h.nextTrigger = h.clock.Now().Add(h.period)
	return h.onReset.Load(), nil
}

// isReady reports whether the handle is armed and due: not canceled, with
// a next trigger time at or before the current clock time.
func (h *handle) isReady() (bool, error) {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return false, errFinalized
	}

	if h.canceled {
		return false, nil
	}

	return !h.clock.Now().Before(h.nextTrigger), nil
}

// timeUntilTrigger returns the signed duration until the next trigger, or
// the MaxDuration sentinel for a canceled handle.
func (h *handle) timeUntilTrigger() (time.Duration, error) {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return 0, errFinalized
	}

	if h.canceled {
		return MaxDuration, nil
	}

	return h.nextTrigger.Sub(h.clock.Now()), nil
}

// nextTriggerTime returns the next scheduled trigger time.
func (h *handle) nextTriggerTime() (time.Time, error) {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return time.Time{}, errFinalized
	}

	return h.nextTrigger, nil
}

// setOnReset publishes the registered trigger slot. A nil adapter clears
// the registration.
func (h *handle) setOnReset(adapter *resetAdapter) error {
	defer h.lock.Unlock()
	h.lock.Lock()

	if h.finalized {
		return errFinalized
	}

	h.onReset.Store(adapter)
	return nil
}
