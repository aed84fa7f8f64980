// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownVariant is returned for a pipeline variant name that
	// does not exist.
	ErrUnknownVariant = errors.New("unknown pipeline variant")

	// ErrUnknownImageKind is returned for an unparseable image kind.
	ErrUnknownImageKind = errors.New("unknown image kind")

	// ErrNoSourceDir is returned if the spec has no source tree.
	ErrNoSourceDir = errors.New("no source directory")

	// ErrNoKernelTarget is returned if the spec has no kernel target.
	ErrNoKernelTarget = errors.New("no kernel target")

	// ErrNoProgramTarget is returned if program embedding is requested
	// without a program target.
	ErrNoProgramTarget = errors.New("no program target")

	// ErrCapacityWithoutImage is returned if an image capacity is given
	// but no image kind.
	ErrCapacityWithoutImage = errors.New("image capacity without image")
)

// InterruptedError is returned if the run was cut short by cancellation,
// like an interrupt signal, rather than failing on its own.
type InterruptedError struct {
	// Stage names the pipeline stage the interruption hit.
	Stage string

	// Err is the failure the interrupted stage reported.
	Err error
}

// Error implements the [error] interface.
func (e *InterruptedError) Error() string {
	return fmt.Sprintf("interrupted during %s: %v", e.Stage, e.Err)
}

// Is returns true for other [InterruptedError]s.
func (e *InterruptedError) Is(other error) bool {
	_, ok := other.(*InterruptedError)
	return ok
}

// Unwrap returns the wrapped error.
func (e *InterruptedError) Unwrap() error {
	return e.Err
}
