// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wren-os/wrenrun/internal/cmd"
)

func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	rc := cmd.Run(context.Background(), "wrenrun", args, cmd.IO{
		Stdout: &stdout,
		Stderr: &stderr,
	})

	return rc, stderr.String()
}

func TestRunArgumentHandling(t *testing.T) {
	t.Run("no variant", func(t *testing.T) {
		rc, stderr := runCmd(t)
		assert.Equal(t, -1, rc)
		assert.Contains(t, stderr, "no pipeline variant")
	})

	t.Run("help", func(t *testing.T) {
		rc, stderr := runCmd(t, "-help")
		assert.Equal(t, 0, rc)
		assert.Contains(t, stderr, "Usage")
	})

	t.Run("version", func(t *testing.T) {
		rc, stderr := runCmd(t, "-version")
		assert.Equal(t, 0, rc)
		assert.Contains(t, stderr, "wrenrun")
	})

	t.Run("unknown variant", func(t *testing.T) {
		rc, _ := runCmd(t, "qcow2")
		assert.Equal(t, -1, rc)
	})

	t.Run("missing explicit config", func(t *testing.T) {
		rc, _ := runCmd(t, "-config", "/nonexistent/wrenrun.yaml", "kernel")
		assert.Equal(t, -1, rc)
	})
}
