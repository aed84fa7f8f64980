// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package build wraps the cross toolchain producing target binaries.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/wren-os/wrenrun/internal/sys"
)

const defaultProfile = "release"

// Target identifies one cross-compiled build unit. Immutable once defined.
type Target struct {
	// Package is the toolchain package name of the unit.
	Package string

	// Binary is the produced file name. Empty means the package name.
	Binary string

	// Triple is the target triple the unit is compiled for.
	Triple sys.Triple

	// Profile selects the build profile. Empty means "release".
	Profile string
}

func (t *Target) binary() string {
	if t.Binary != "" {
		return t.Binary
	}

	return t.Package
}

func (t *Target) profile() string {
	if t.Profile != "" {
		return t.Profile
	}

	return defaultProfile
}

// OutputPath returns the stable, triple-keyed path the toolchain writes
// the compiled binary to. It persists across runs.
func (t *Target) OutputPath(sourceDir string) string {
	return filepath.Join(
		sourceDir, "target", string(t.Triple), t.profile(), t.binary(),
	)
}

// Artifact is a compiled binary together with its content digest.
type Artifact struct {
	Path   string
	Digest digest.Digest
}

// Compiler invokes the toolchain for [Target]s.
type Compiler struct {
	// SourceDir is the root of the operating system source tree.
	SourceDir string

	// Toolchain is the build tool executable. Empty means "cargo".
	Toolchain string

	// Env holds additional environment variables for the toolchain, in
	// "KEY=value" form. Used to hand artifact paths to build scripts.
	Env []string
}

func (c *Compiler) toolchain() string {
	if c.Toolchain != "" {
		return c.Toolchain
	}

	return "cargo"
}

func (c *Compiler) arguments(target Target) []string {
	args := []string{
		"build",
		"--package", target.Package,
		"--target", string(target.Triple),
	}

	if target.profile() == defaultProfile {
		args = append(args, "--release")
	} else {
		args = append(args, "--profile", target.profile())
	}

	return args
}

// Compile builds the given target and returns the produced artifact.
//
// Any stale artifact from a previous run is removed before the toolchain
// is invoked, so a failed compile never leaves a path downstream stages
// could mistake for fresh output. On toolchain failure a [CompileError]
// carrying the captured diagnostics is returned.
func (c *Compiler) Compile(ctx context.Context, target Target) (*Artifact, error) {
	output := target.OutputPath(c.SourceDir)

	err := os.Remove(output)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale artifact: %w", err)
	}

	tool := sys.Tool{
		Name: c.toolchain(),
		Dir:  c.SourceDir,
		Env:  c.Env,
	}

	err = tool.Run(ctx, nil, c.arguments(target)...)
	if err != nil {
		return nil, &CompileError{Target: target, Err: err}
	}

	dig, err := fileDigest(output)
	if err != nil {
		return nil, &CompileError{Target: target, Err: err}
	}

	slog.Debug("Compiled target",
		slog.String("package", target.Package),
		slog.String("path", output),
		slog.String("digest", dig.String()))

	return &Artifact{Path: output, Digest: dig}, nil
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	dig, err := digest.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest artifact: %w", err)
	}

	return dig, nil
}
