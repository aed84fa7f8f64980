// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wren-os/wrenrun/internal/build"
	"github.com/wren-os/wrenrun/internal/harness"
)

func TestVariantSpec(t *testing.T) {
	tests := []struct {
		name     string
		expected harness.Spec
	}{
		{
			name: "kernel",
			expected: harness.Spec{
				SourceDir:    "/src",
				KernelTarget: build.Target{Package: "kernel"},
			},
		},
		{
			name: "program",
			expected: harness.Spec{
				SourceDir:     "/src",
				KernelTarget:  build.Target{Package: "kernel"},
				ProgramTarget: build.Target{Package: "shell"},
				EmbedProgram:  true,
			},
		},
		{
			name: "fs",
			expected: harness.Spec{
				SourceDir:     "/src",
				KernelTarget:  build.Target{Package: "kernel"},
				ProgramTarget: build.Target{Package: "shell"},
				EmbedProgram:  true,
				ImageKind:     harness.ImageFS,
				ImageCapacity: 1 << 20,
				EntropyDevice: true,
			},
		},
		{
			name: "rawfs",
			expected: harness.Spec{
				SourceDir:     "/src",
				KernelTarget:  build.Target{Package: "kernel"},
				ProgramTarget: build.Target{Package: "shell"},
				EmbedProgram:  true,
				ImageKind:     harness.ImageRaw,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := harness.VariantSpec(tt.name, "/src")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
			assert.NoError(t, spec.Validate())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := harness.VariantSpec("initramfs", "/src")
		assert.ErrorIs(t, err, harness.ErrUnknownVariant)
	})
}

func TestSpecValidate(t *testing.T) {
	tests := []struct {
		name        string
		spec        harness.Spec
		expectedErr error
	}{
		{
			name:        "empty",
			expectedErr: harness.ErrNoSourceDir,
		},
		{
			name:        "no kernel",
			spec:        harness.Spec{SourceDir: "/src"},
			expectedErr: harness.ErrNoKernelTarget,
		},
		{
			name: "embed without program",
			spec: harness.Spec{
				SourceDir:    "/src",
				KernelTarget: build.Target{Package: "kernel"},
				EmbedProgram: true,
			},
			expectedErr: harness.ErrNoProgramTarget,
		},
		{
			name: "capacity without image",
			spec: harness.Spec{
				SourceDir:     "/src",
				KernelTarget:  build.Target{Package: "kernel"},
				ImageCapacity: 1 << 20,
			},
			expectedErr: harness.ErrCapacityWithoutImage,
		},
		{
			name: "valid",
			spec: harness.Spec{
				SourceDir:    "/src",
				KernelTarget: build.Target{Package: "kernel"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestImageKindFlagValue(t *testing.T) {
	for _, name := range []string{"none", "fs", "raw"} {
		t.Run(name, func(t *testing.T) {
			var kind harness.ImageKind

			require.NoError(t, kind.Set(name))
			assert.Equal(t, name, kind.String())
		})
	}

	t.Run("invalid", func(t *testing.T) {
		var kind harness.ImageKind

		assert.ErrorIs(t, kind.Set("qcow2"), harness.ErrUnknownImageKind)
	})
}
