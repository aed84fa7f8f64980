// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scratch

// GuardError is returned if a scratch space path lies outside of the
// manager root. The tree is left untouched in that case.
type GuardError struct {
	Path string
	Root string
}

// Error implements the [error] interface.
func (e *GuardError) Error() string {
	return "scratch path " + e.Path + " escapes root " + e.Root
}

// Is implements the [errors.Is] interface.
func (*GuardError) Is(other error) bool {
	_, ok := other.(*GuardError)
	return ok
}

// BoundaryError is returned if removal would cross a filesystem mount
// boundary. Everything from the offending path downwards is left
// untouched.
type BoundaryError struct {
	Path string
}

// Error implements the [error] interface.
func (e *BoundaryError) Error() string {
	return "refusing to cross filesystem boundary at " + e.Path
}

// Is implements the [errors.Is] interface.
func (*BoundaryError) Is(other error) bool {
	_, ok := other.(*BoundaryError)
	return ok
}
