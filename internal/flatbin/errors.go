// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import "errors"

var (
	// ErrEmptyBinary is returned if the input binary file is empty.
	ErrEmptyBinary = errors.New("binary file is empty")

	// ErrNoLoadSegments is returned if the input binary has no loadable
	// segments to flatten.
	ErrNoLoadSegments = errors.New("no loadable segments")

	// ErrMalformedSegment is returned if a segment's file size exceeds its
	// memory size.
	ErrMalformedSegment = errors.New("segment file size exceeds memory size")

	// ErrBadIdent is returned if a file name yields no usable symbol
	// identifier.
	ErrBadIdent = errors.New("file name yields no symbol identifier")

	// ErrAmbiguousIdent is returned if two different files map to the same
	// symbol identifier.
	ErrAmbiguousIdent = errors.New("ambiguous symbol identifier")
)

// EmbedError wraps any error occurring while flattening or repacking a
// binary.
type EmbedError struct {
	Path string
	Err  error
}

// Error implements the [error] interface.
func (e *EmbedError) Error() string {
	return "embed " + e.Path + ": " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (*EmbedError) Is(other error) bool {
	_, ok := other.(*EmbedError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *EmbedError) Unwrap() error {
	return e.Err
}
