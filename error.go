// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

import "fmt"

// InitializationError indicates that a timer handle could not be created
// or armed at construction time. The construction attempt is fatal: no
// usable Timer is returned alongside this error, and nothing is left
// registered against the clock or context.
type InitializationError struct {
	// Err is the underlying cause.
	Err error
}

func (ie *InitializationError) Error() string {
	return fmt.Sprintf("couldn't initialize timer handle: %s", ie.Err)
}

func (ie *InitializationError) Unwrap() error {
	return ie.Err
}

// OperationError indicates that an operation on a successfully constructed
// timer failed. The timer remains otherwise usable, and callers may retry
// the operation.
type OperationError struct {
	// Op names the operation that failed, e.g. "cancel" or "reset".
	Op string

	// Err is the underlying cause.
	Err error
}

func (oe *OperationError) Error() string {
	return fmt.Sprintf("timer %s failed: %s", oe.Op, oe.Err)
}

func (oe *OperationError) Unwrap() error {
	return oe.Err
}
