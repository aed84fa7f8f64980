// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package build

// CompileError is returned if the toolchain failed to produce a target
// binary. The wrapped error carries the toolchain's diagnostic stream.
type CompileError struct {
	Target Target
	Err    error
}

// Error implements the [error] interface.
func (e *CompileError) Error() string {
	return "compile " + e.Target.Package + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*CompileError) Is(other error) bool {
	_, ok := other.(*CompileError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CompileError) Unwrap() error {
	return e.Err
}
