// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered
	// equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrInterrupted is returned if the emulator session was ended by an
	// external signal rather than the guest.
	ErrInterrupted = errors.New("session interrupted")
)

// LaunchError indicates the emulator could not be launched at all, like a
// missing kernel artifact or an invalid device attachment.
type LaunchError struct {
	msg string
	err error
}

// Error implements the [error] interface.
func (e *LaunchError) Error() string {
	if e.err != nil {
		return "launch: " + e.msg + ": " + e.err.Error()
	}

	return "launch: " + e.msg
}

// Is implements the [errors.Is] interface.
func (*LaunchError) Is(other error) bool {
	_, ok := other.(*LaunchError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *LaunchError) Unwrap() error {
	return e.err
}
