// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"bytes"
	"context"
	"io"
	"os/exec"
)

// Tool is an external collaborator invoked as a subprocess, like the
// toolchain, mkfs or the mount utility.
type Tool struct {
	// Name of the executable, resolved via PATH if not absolute.
	Name string

	// Working directory for the invocation. Empty means inherit.
	Dir string

	// Additional environment variables in "KEY=value" form, appended to
	// the inherited environment.
	Env []string
}

// Run invokes the tool with the given arguments, writing its stdout to outW
// if not nil.
//
// Stderr is captured. On non-zero exit or start failure a [ToolError]
// carrying the captured diagnostics verbatim is returned.
func (t *Tool) Run(ctx context.Context, outW io.Writer, args ...string) error {
	var stderrBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, t.Name, args...)
	cmd.Dir = t.Dir
	cmd.Stdout = outW
	cmd.Stderr = &stderrBuf

	if len(t.Env) > 0 {
		cmd.Env = append(cmd.Environ(), t.Env...)
	}

	err := cmd.Run()
	if err != nil {
		return &ToolError{
			Tool:   t.Name,
			Err:    err,
			Stderr: stderrBuf.String(),
		}
	}

	return nil
}

// ToolError is returned if an external tool could not be run or exited
// non-zero. Stderr holds the tool's diagnostic output verbatim.
type ToolError struct {
	Tool   string
	Err    error
	Stderr string
}

// Error implements the [error] interface.
func (e *ToolError) Error() string {
	msg := e.Tool + ": " + e.Err.Error()
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}

	return msg
}

// Is implements the [errors.Is] interface.
func (*ToolError) Is(other error) bool {
	_, ok := other.(*ToolError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *ToolError) Unwrap() error {
	return e.Err
}
