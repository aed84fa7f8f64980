// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wren-os/wrenrun/internal/harness"
	"github.com/wren-os/wrenrun/internal/qemu"
	"github.com/wren-os/wrenrun/internal/sys"
)

func TestFlagsParseArgs(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{
			name: "valid",
			args: []string{"kernel"},
		},
		{
			name: "flags and variant",
			args: []string{"-debug", "-capacity", "2048", "fs"},
		},
		{
			name:        "no variant",
			args:        []string{"-debug"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "too many positionals",
			args:        []string{"fs", "rawfs"},
			expectedErr: &ParseArgsError{},
		},
		{
			name:        "help",
			args:        []string{"-help"},
			expectedErr: flag.ErrHelp,
		},
		{
			name:        "version",
			args:        []string{"-version"},
			expectedErr: flag.ErrHelp,
		},
		{
			name:        "unknown flag",
			args:        []string{"-frobnicate", "kernel"},
			expectedErr: &ParseArgsError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flags := newFlags("wrenrun", io.Discard)

			err := flags.parseArgs(tt.args)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, flags.variant)
		})
	}
}

func TestFlagsSpecPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "wrenrun.yaml")
	err := os.WriteFile(configPath, []byte(
		"source-dir: /from-config\nqemu-bin: qemu-from-config\ncapacity: 4096\n",
	), 0o644)
	require.NoError(t, err)

	flags := newFlags("wrenrun", io.Discard)
	require.NoError(t, flags.parseArgs([]string{
		"-config", configPath,
		"-qemu-bin", "qemu-from-flag",
		"-triple", "riscv64gc-unknown-none-elf",
		"-capture",
		"fs",
	}))

	spec, err := flags.spec()
	require.NoError(t, err)

	// Config file overrides the variant preset, explicit flags override
	// the config file.
	assert.Equal(t, "/from-config", spec.SourceDir)
	assert.Equal(t, "qemu-from-flag", spec.QemuExecutable)
	assert.Equal(t, int64(4096), spec.ImageCapacity)
	assert.Equal(t,
		sys.Triple("riscv64gc-unknown-none-elf"), spec.KernelTarget.Triple,
	)

	// Untouched preset values survive.
	assert.Equal(t, harness.ImageFS, spec.ImageKind)
	assert.True(t, spec.EntropyDevice)
	assert.Equal(t, qemu.ConsoleCaptured, spec.Console)
}

func TestFlagsSpecUnknownVariant(t *testing.T) {
	flags := newFlags("wrenrun", io.Discard)
	require.NoError(t, flags.parseArgs([]string{"initramfs"}))

	_, err := flags.spec()
	assert.ErrorIs(t, err, &ParseArgsError{})
	assert.ErrorIs(t, err, harness.ErrUnknownVariant)
}
