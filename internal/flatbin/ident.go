// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Ident derives the symbol identifier from the base name of the given
// path. Every character outside [0-9A-Za-z] is mapped to an underscore,
// following the objcopy convention, so "shell.bin" becomes "shell_bin".
func Ident(path string) (string, error) {
	base := filepath.Base(path)

	ident := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9',
			r >= 'A' && r <= 'Z',
			r >= 'a' && r <= 'z':
			return r
		default:
			return '_'
		}
	}, base)

	if strings.Trim(ident, "_") == "" {
		return "", fmt.Errorf("%w: %q", ErrBadIdent, base)
	}

	return ident, nil
}

// IdentSet tracks derived symbol identifiers and their source paths.
//
// Two different source files mapping to the same identifier would produce
// colliding symbols in the kernel link, so Add refuses the second one.
type IdentSet map[string]string

// Add derives the identifier for path and records it. It returns
// [ErrAmbiguousIdent] if a different path already claimed the identifier.
func (s IdentSet) Add(path string) (string, error) {
	ident, err := Ident(path)
	if err != nil {
		return "", err
	}

	if prev, exists := s[ident]; exists && prev != path {
		return "", fmt.Errorf(
			"%w: %q for both %s and %s", ErrAmbiguousIdent, ident, prev, path,
		)
	}

	s[ident] = path

	return ident, nil
}
