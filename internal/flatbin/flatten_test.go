// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin_test

import (
	"debug/elf"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wren-os/wrenrun/internal/flatbin"
)

func TestFlatten(t *testing.T) {
	t.Run("single segment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shell.bin")
		flatbin.WriteTestELF(t, path, elf.ELFCLASS32, elf.EM_RISCV,
			flatbin.TestSegment{Addr: 0x8010_0000, Data: []byte("code")},
		)

		flat, err := flatbin.Flatten(path)
		require.NoError(t, err)

		assert.Equal(t, "shell_bin", flat.Ident)
		assert.Equal(t, []byte("code"), flat.Data)
		assert.Equal(t, elf.ELFCLASS32, flat.Class)
		assert.Equal(t, elf.EM_RISCV, flat.Machine)
	})

	t.Run("zero region materialized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shell.bin")
		flatbin.WriteTestELF(t, path, elf.ELFCLASS32, elf.EM_RISCV,
			flatbin.TestSegment{
				Addr:    0x8010_0000,
				Data:    []byte("data"),
				MemSize: 16,
			},
		)

		flat, err := flatbin.Flatten(path)
		require.NoError(t, err)

		require.Equal(t, 16, flat.Size())
		assert.Equal(t, []byte("data"), flat.Data[:4])
		assert.Equal(t, make([]byte, 12), flat.Data[4:])
	})

	t.Run("gap between segments zero filled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "prog")
		flatbin.WriteTestELF(t, path, elf.ELFCLASS64, elf.EM_X86_64,
			// Deliberately out of address order.
			flatbin.TestSegment{Addr: 0x2000, Data: []byte("BB")},
			flatbin.TestSegment{Addr: 0x1000, Data: []byte("AA")},
		)

		flat, err := flatbin.Flatten(path)
		require.NoError(t, err)

		require.Equal(t, 0x1002, flat.Size())
		assert.Equal(t, []byte("AA"), flat.Data[:2])
		assert.Equal(t, make([]byte, 0x1000-2), flat.Data[2:0x1000])
		assert.Equal(t, []byte("BB"), flat.Data[0x1000:])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := flatbin.Flatten(filepath.Join(t.TempDir(), "absent"))
		assert.ErrorIs(t, err, &flatbin.EmbedError{})
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := flatbin.Flatten(path)
		assert.ErrorIs(t, err, flatbin.ErrEmptyBinary)
	})

	t.Run("not an ELF file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "text")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

		_, err := flatbin.Flatten(path)
		assert.ErrorIs(t, err, &flatbin.EmbedError{})
	})

	t.Run("no load segments", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "hollow")
		flatbin.WriteTestELF(t, path, elf.ELFCLASS32, elf.EM_RISCV)

		_, err := flatbin.Flatten(path)
		assert.ErrorIs(t, err, flatbin.ErrNoLoadSegments)
	})
}

func TestIdent(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
		err      error
	}{
		{
			name:     "plain",
			path:     "shell",
			expected: "shell",
		},
		{
			name:     "extension",
			path:     "/src/target/release/shell.bin",
			expected: "shell_bin",
		},
		{
			name:     "dashes",
			path:     "user-prog.2.bin",
			expected: "user_prog_2_bin",
		},
		{
			name: "only separators",
			path: "...",
			err:  flatbin.ErrBadIdent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ident, err := flatbin.Ident(tt.path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ident)
		})
	}
}

func TestIdentSet(t *testing.T) {
	set := flatbin.IdentSet{}

	ident, err := set.Add("/a/shell.bin")
	require.NoError(t, err)
	assert.Equal(t, "shell_bin", ident)

	// Same path again is fine.
	_, err = set.Add("/a/shell.bin")
	require.NoError(t, err)

	// Different path, same derived identifier.
	_, err = set.Add("/b/shell_bin")
	assert.ErrorIs(t, err, flatbin.ErrAmbiguousIdent)
}
