// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package kairon

//go:generate stringer -type=State -linecomment

// State is the derived scheduling state of a Timer.
type State uint8

const (
	// StateActive indicates a timer that is armed and will become ready
	// when its next trigger time arrives.
	StateActive State = iota // active

	// StateCanceled indicates a timer that has been disarmed via Cancel.
	// A canceled timer becomes active again via Reset.
	StateCanceled // canceled
)

// MarshalText produces the string value of this State.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
