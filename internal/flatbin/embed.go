// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import (
	"log/slog"
	"path/filepath"
)

// Embed flattens the binaries at binPaths and writes one repacked
// relocatable object per binary into dir, each named after its derived
// identifier.
//
// Identifiers are registered in one [IdentSet] across the call, so two
// binaries whose names collapse to the same identifier are refused with
// an [EmbedError] before any object is written for them. It returns the
// object paths in input order, for the subsequent kernel link.
func Embed(dir string, binPaths ...string) ([]string, error) {
	idents := make(IdentSet, len(binPaths))
	objPaths := make([]string, 0, len(binPaths))

	for _, binPath := range binPaths {
		_, err := idents.Add(binPath)
		if err != nil {
			return nil, &EmbedError{Path: binPath, Err: err}
		}

		flat, err := Flatten(binPath)
		if err != nil {
			return nil, err
		}

		objPath := filepath.Join(dir, flat.Ident+".o")

		err = WriteObject(flat, objPath)
		if err != nil {
			return nil, err
		}

		slog.Debug("Embedded binary",
			slog.String("binary", binPath),
			slog.String("object", objPath),
			slog.Int("size", flat.Size()))

		objPaths = append(objPaths, objPath)
	}

	return objPaths, nil
}
