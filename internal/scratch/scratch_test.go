// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package scratch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wren-os/wrenrun/internal/scratch"
)

func TestManagerAcquire(t *testing.T) {
	t.Run("creates directory", func(t *testing.T) {
		mgr := scratch.Manager{Root: t.TempDir()}

		space, err := mgr.Acquire()
		require.NoError(t, err)

		assert.DirExists(t, space.Path())
	})

	t.Run("no collisions", func(t *testing.T) {
		mgr := scratch.Manager{Root: t.TempDir()}
		seen := make(map[string]bool, 100)

		for i := 0; i < 100; i++ {
			space, err := mgr.Acquire()
			require.NoError(t, err)
			require.False(t, seen[space.Path()], "path acquired twice")
			seen[space.Path()] = true
		}
	})

	t.Run("creates missing root", func(t *testing.T) {
		mgr := scratch.Manager{Root: filepath.Join(t.TempDir(), "deeper")}

		space, err := mgr.Acquire()
		require.NoError(t, err)
		assert.DirExists(t, space.Path())
	})
}

func TestSpaceRelease(t *testing.T) {
	t.Run("removes tree", func(t *testing.T) {
		mgr := scratch.Manager{Root: t.TempDir()}

		space, err := mgr.Acquire()
		require.NoError(t, err)

		sub := space.Join("a", "b")
		require.NoError(t, os.MkdirAll(sub, 0o755))
		file := filepath.Join(sub, "fixture")
		require.NoError(t, os.WriteFile(file, []byte("data"), 0o644))

		require.NoError(t, space.Release())
		assert.NoDirExists(t, space.Path())
	})

	t.Run("idempotent", func(t *testing.T) {
		mgr := scratch.Manager{Root: t.TempDir()}

		space, err := mgr.Acquire()
		require.NoError(t, err)

		require.NoError(t, space.Release())
		assert.NoError(t, space.Release())
	})
}

func TestSpaceMountPoint(t *testing.T) {
	mgr := scratch.Manager{Root: t.TempDir()}

	space, err := mgr.Acquire()
	require.NoError(t, err)

	mnt, err := space.MountPoint("mnt")
	require.NoError(t, err)
	assert.DirExists(t, mnt)
	assert.Equal(t, space.Join("mnt"), mnt)

	require.NoError(t, space.Release())
	assert.NoDirExists(t, mnt)
}
