// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import (
	"errors"
	"sync"
)

// ErrContextShutdown is returned by Context.Shutdown to indicate that the
// Context has already been shut down. It is also the underlying cause of
// the InitializationError returned when constructing a timer against a
// shut-down Context.
var ErrContextShutdown = errors.New("the context has been shut down")

// Context is the execution context a timer is registered against. It
// bounds the validity of new timers: once a Context is shut down, no
// further timers may be constructed against it. Timers already registered
// are unaffected and remain usable until they are closed.
type Context struct {
	lock     sync.Mutex
	shutdown bool

	// attached is the count of registered, not-yet-finalized handles.
	attached int
}

// NewContext constructs a fresh, valid Context.
func NewContext() *Context {
	return &Context{}
}

var (
	defaultContextOnce sync.Once
	defaultContext     *Context
)

// DefaultContext returns the process-wide default Context. Timers that
// are not given an explicit Context via WithContext register against it.
func DefaultContext() *Context {
	defaultContextOnce.Do(func() {
		defaultContext = NewContext()
	})

	return defaultContext
}

// OK reports whether this Context is still valid, i.e. has not been
// shut down.
func (c *Context) OK() bool {
	defer c.lock.Unlock()
	c.lock.Lock()
	return !c.shutdown
}

// Shutdown marks this Context invalid. This method is idempotent. If this
// Context has already been shut down, this method does nothing and returns
// ErrContextShutdown.
func (c *Context) Shutdown() error {
	defer c.lock.Unlock()
	c.lock.Lock()

	if c.shutdown {
		return ErrContextShutdown
	}

	c.shutdown = true
	return nil
}

// Timers returns the number of timer handles currently registered against
// this Context and not yet finalized.
func (c *Context) Timers() int {
	defer c.lock.Unlock()
	c.lock.Lock()
	return c.attached
}

// attach records a handle registration, failing if this Context is no
// longer valid.
func (c *Context) attach() error {
	defer c.lock.Unlock()
	c.lock.Lock()

	if c.shutdown {
		return ErrContextShutdown
	}

	c.attached++
	return nil
}

// detach removes a handle registration.
func (c *Context) detach() {
	defer c.lock.Unlock()
	c.lock.Lock()
	c.attached--
}
