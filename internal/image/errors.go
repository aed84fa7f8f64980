// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package image

import "errors"

var (
	// ErrCapacityTooSmall is returned if the requested capacity cannot
	// hold the fixture content.
	ErrCapacityTooSmall = errors.New("capacity smaller than fixture content")

	// ErrNoCapacity is returned if a filesystem image is requested without
	// a capacity.
	ErrNoCapacity = errors.New("filesystem image requires a capacity")
)

// AssemblyError wraps any error occurring while building a storage image.
// Op names the failed step: allocate, format, mount, populate, unmount or
// digest.
type AssemblyError struct {
	Op  string
	Err error
}

// Error implements the [error] interface.
func (e *AssemblyError) Error() string {
	return "assemble image: " + e.Op + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*AssemblyError) Is(other error) bool {
	_, ok := other.(*AssemblyError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *AssemblyError) Unwrap() error {
	return e.Err
}
