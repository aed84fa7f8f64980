// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scratch manages ephemeral, exclusively-owned working directories.
//
// Each harness run acquires exactly one [Space] and releases it on every
// exit path. Release is guarded: it refuses to ascend above the manager's
// root and refuses to cross filesystem boundaries, so a mount point left
// behind by a failed unmount is never deleted through.
package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const dirPrefix = "wrenrun-"

// Manager creates and destroys scratch spaces below Root.
type Manager struct {
	// Root is the directory scratch spaces are created in. Empty means
	// [os.TempDir]. Release never removes anything outside of it.
	Root string
}

func (m *Manager) root() string {
	if m.Root == "" {
		return os.TempDir()
	}

	return m.Root
}

// Acquire creates a new uniquely named scratch space.
//
// The name carries a random UUID, so concurrent harness runs on the same
// host never receive the same path.
func (m *Manager) Acquire() (*Space, error) {
	root := m.root()

	err := os.MkdirAll(root, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create scratch root: %w", err)
	}

	path := filepath.Join(root, dirPrefix+uuid.NewString())

	err = os.Mkdir(path, 0o700)
	if err != nil {
		return nil, fmt.Errorf("create scratch space: %w", err)
	}

	slog.Debug("Acquired scratch space", slog.String("path", path))

	return &Space{root: root, path: path}, nil
}

// Space is a single acquired scratch directory.
type Space struct {
	root     string
	path     string
	released bool
}

// Path returns the root directory of the space.
func (s *Space) Path() string {
	return s.path
}

// Join returns the given path elements joined below the space directory.
func (s *Space) Join(elem ...string) string {
	return filepath.Join(append([]string{s.path}, elem...)...)
}

// MountPoint creates a new directory inside the space intended to be used
// as a mount point and returns its path.
func (s *Space) MountPoint(name string) (string, error) {
	path := s.Join(name)

	err := os.Mkdir(path, 0o755)
	if err != nil {
		return "", fmt.Errorf("create mount point: %w", err)
	}

	return path, nil
}

// Release removes the space directory tree.
//
// It is idempotent. Removal is refused entirely if the space path escaped
// the manager root, and stops at any filesystem boundary found in the
// tree.
func (s *Space) Release() error {
	if s.released {
		return nil
	}

	err := s.checkGuard()
	if err != nil {
		return err
	}

	err = removeTree(s.path)
	if err != nil {
		return fmt.Errorf("remove scratch space: %w", err)
	}

	s.released = true

	slog.Debug("Released scratch space", slog.String("path", s.path))

	return nil
}

func (s *Space) checkGuard() error {
	rel, err := filepath.Rel(s.root, s.path)
	if err != nil {
		return fmt.Errorf("resolve scratch path: %w", err)
	}

	escaped := rel == "." ||
		rel == ".." ||
		strings.HasPrefix(rel, ".."+string(filepath.Separator))
	if escaped {
		return &GuardError{Path: s.path, Root: s.root}
	}

	return nil
}
