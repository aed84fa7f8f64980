// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cmd implements the wrenrun command line interface.
package cmd

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"

	"github.com/wren-os/wrenrun/internal/harness"
)

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func handleParseArgsError(err error) int {
	// [flag.ErrHelp] is returned when help or the version is requested.
	// So exit without error in this case.
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	// parseArgs already prints errors, so we just exit without another
	// one.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

// Run is the main entry point for the CLI command.
//
// It returns the guest's exit code if the emulator ran to completion and
// -1 for any failure of the harness itself.
func Run(ctx context.Context, name string, args []string, cfg IO) int {
	flags := newFlags(name, cfg.Stderr)

	err := flags.parseArgs(args)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug())

	spec, err := flags.spec()
	if err != nil {
		if errors.Is(err, &ParseArgsError{}) {
			return -1
		}

		slog.Error(err.Error())

		return -1
	}

	rc, err := harness.Run(ctx, spec, cfg.Stdin, cfg.Stdout, cfg.Stderr)
	if err != nil {
		if errors.Is(err, &harness.InterruptedError{}) {
			slog.Warn(err.Error())
		} else {
			slog.Error(err.Error())
		}

		return rc
	}

	return rc
}
