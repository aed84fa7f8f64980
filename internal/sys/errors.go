// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "errors"

var (
	// ErrEmptyFilePath is returned if an empty path is given.
	ErrEmptyFilePath = errors.New("file path must not be empty")

	// ErrNotRegularFile is returned if a path does not point to a regular
	// file.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrEmptyTriple is returned if an empty target triple is given.
	ErrEmptyTriple = errors.New("target triple must not be empty")

	// ErrInvalidTriple is returned if a target triple contains characters
	// that cannot appear in a toolchain output directory name.
	ErrInvalidTriple = errors.New("target triple contains invalid characters")
)
