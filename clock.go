// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"sync"
	"time"

	"github.com/xmidt-org/chronon"
)

// Clock is a shared time source for timers. Any number of timers may be
// constructed against a single Clock, and the Clock must outlive every
// handle registered against it. Timer finalization enforces that ordering:
// a handle holds its Clock reference until the handle has been quiesced.
//
// The source behind a Clock is a chronon.Clock, which allows tests to
// drive timers with a chronon.FakeClock.
type Clock struct {
	source chronon.Clock

	// lock guards clock-internal state. It is held across handle
	// initialization and finalization, the only two points at which
	// a timer touches this state directly.
	lock sync.Mutex

	// attached is the count of registered, not-yet-finalized handles.
	attached int
}

// NewClock constructs a Clock from the given source. A nil source falls
// back to the system clock.
func NewClock(source chronon.Clock) *Clock {
	if source == nil {
		source = chronon.SystemClock()
	}

	return &Clock{
		source: source,
	}
}

// SystemClock is a convenience for a Clock backed by the system wall clock.
func SystemClock() *Clock {
	return NewClock(nil)
}

// Now returns the current time according to this Clock's source.
func (c *Clock) Now() time.Time {
	return c.source.Now()
}

// Timers returns the number of timer handles currently registered against
// this Clock. A handle is counted from successful construction of its
// Timer until the handle is finalized, which may be after the Timer is
// closed if reference-holding views of the handle are still outstanding.
func (c *Clock) Timers() int {
	defer c.lock.Unlock()
	c.lock.Lock()
	return c.attached
}

// attach records a handle registration. The caller must hold lock.
func (c *Clock) attach() {
	c.attached++
}

// detach removes a handle registration. The caller must hold lock.
func (c *Clock) detach() {
	c.attached--
}
