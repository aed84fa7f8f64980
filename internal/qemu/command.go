// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// terminateGracePeriod is how long the emulator gets to exit after a
// termination signal before it is killed.
const terminateGracePeriod = 10 * time.Second

// Command is a single runnable QEMU command.
type Command struct {
	executable string
	args       []string
	console    ConsoleMode
}

// NewCommand validates the given spec and compiles it into a [Command].
func NewCommand(spec CommandSpec) (*Command, error) {
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	args, err := BuildArgumentStrings(spec.arguments())
	if err != nil {
		return nil, &LaunchError{msg: "build arguments", err: err}
	}

	return &Command{
		executable: spec.executable(),
		args:       args,
		console:    spec.Console,
	}, nil
}

// String implements [fmt.Stringer].
func (c *Command) String() string {
	return c.executable + " " + strings.Join(c.args, " ")
}

// Run launches the emulator as a single foreground process and blocks
// until the session is terminal: the guest halted, crashed, or the
// context was canceled.
//
// It returns the emulator process's exit code. A guest-initiated exit is
// not an error regardless of the code; an error is returned only if the
// launch itself failed or the session was interrupted.
func (c *Command) Run(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
) (int, error) {
	cmd := exec.CommandContext(ctx, c.executable, c.args...)
	cmd.Stdin = stdin

	// Cancellation is cooperative: ask the emulator to terminate and
	// give it a grace period before the kill. The process may already be
	// gone by then.
	cmd.Cancel = func() error {
		err := cmd.Process.Signal(syscall.SIGTERM)
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}

		return err
	}
	cmd.WaitDelay = terminateGracePeriod

	var wait func() error

	switch c.console {
	case ConsoleInteractive:
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		wait = cmd.Wait
	case ConsoleCaptured:
		outPipe, err := cmd.StdoutPipe()
		if err != nil {
			return -1, &LaunchError{msg: "stdout pipe", err: err}
		}

		errPipe, err := cmd.StderrPipe()
		if err != nil {
			return -1, &LaunchError{msg: "stderr pipe", err: err}
		}

		copies := errgroup.Group{}
		copies.Go(func() error {
			_, err := io.Copy(stdout, outPipe)
			return err
		})
		copies.Go(func() error {
			_, err := io.Copy(stderr, errPipe)
			return err
		})

		wait = func() error {
			copyErr := copies.Wait()
			return errors.Join(cmd.Wait(), copyErr)
		}
	default:
		return -1, &LaunchError{
			msg: fmt.Sprintf("unknown console mode %d", c.console),
		}
	}

	err := cmd.Start()
	if err != nil {
		return -1, &LaunchError{msg: "start emulator", err: err}
	}

	err = wait()

	if ctx.Err() != nil {
		return -1, fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}

	if err != nil {
		return -1, fmt.Errorf("emulator: %w", err)
	}

	return cmd.ProcessState.ExitCode(), nil
}
