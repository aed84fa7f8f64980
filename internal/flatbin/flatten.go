// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import (
	"cmp"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"slices"
)

// FlatBinary is the loadable memory image of a binary in address order.
type FlatBinary struct {
	// Ident is the symbol identifier derived from the source file name.
	Ident string

	// Data is the flattened image. Its length equals the full runtime
	// footprint of the binary including zero-initialized regions.
	Data []byte

	// Class, ByteOrder and Machine are carried over from the source
	// binary and determine the format of the repacked object.
	Class     elf.Class
	ByteOrder elf.Data
	Machine   elf.Machine
}

// Size returns the exact byte length of the flattened image.
func (f *FlatBinary) Size() int {
	return len(f.Data)
}

// Flatten reads the ELF binary at the given path and produces its flat
// memory image.
//
// Segments are laid out by virtual address relative to the lowest one.
// Bytes not backed by file content, notably zero-initialized data, are
// materialized as zeros.
func Flatten(path string) (*FlatBinary, error) {
	flat, err := flatten(path)
	if err != nil {
		return nil, &EmbedError{Path: path, Err: err}
	}

	return flat, nil
}

func flatten(path string) (*FlatBinary, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return nil, ErrEmptyBinary
	}

	ident, err := Ident(path)
	if err != nil {
		return nil, err
	}

	file, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ELF: %w", err)
	}
	defer file.Close()

	segments := loadSegments(file)
	if len(segments) == 0 {
		return nil, ErrNoLoadSegments
	}

	base := segments[0].Vaddr
	end := base

	for _, prog := range segments {
		if prog.Filesz > prog.Memsz {
			return nil, fmt.Errorf(
				"%w: %#x > %#x", ErrMalformedSegment, prog.Filesz, prog.Memsz,
			)
		}

		end = max(end, prog.Vaddr+prog.Memsz)
	}

	data := make([]byte, end-base)

	for _, prog := range segments {
		if prog.Filesz == 0 {
			continue
		}

		offset := prog.Vaddr - base

		_, err := io.ReadFull(prog.Open(), data[offset:offset+prog.Filesz])
		if err != nil {
			return nil, fmt.Errorf("read segment at %#x: %w", prog.Vaddr, err)
		}
	}

	return &FlatBinary{
		Ident:     ident,
		Data:      data,
		Class:     file.Class,
		ByteOrder: file.Data,
		Machine:   file.Machine,
	}, nil
}

func loadSegments(file *elf.File) []*elf.Prog {
	var segments []*elf.Prog

	for _, prog := range file.Progs {
		if prog.Type == elf.PT_LOAD && prog.Memsz > 0 {
			segments = append(segments, prog)
		}
	}

	slices.SortFunc(segments, func(a, b *elf.Prog) int {
		return cmp.Compare(a.Vaddr, b.Vaddr)
	})

	return segments
}
