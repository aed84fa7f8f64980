// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/wren-os/wrenrun/internal/build"
	"github.com/wren-os/wrenrun/internal/flatbin"
	"github.com/wren-os/wrenrun/internal/image"
	"github.com/wren-os/wrenrun/internal/qemu"
	"github.com/wren-os/wrenrun/internal/scratch"
)

// diskImageName is the file name of the storage image inside the scratch
// space.
const diskImageName = "disk.img"

// blockDeviceID is the drive identifier of the storage image on the
// guest's virtio bus.
const blockDeviceID = "blk0"

// Run executes the complete pipeline the spec describes and blocks until
// the guest session is terminal.
//
// It returns the emulator's exit code when the guest ran, whatever that
// code is, and -1 with a stage-typed error otherwise. Scratch state is
// released on every path unless the spec keeps it; a release failure is
// logged but never masks the run's outcome.
func Run(
	ctx context.Context,
	spec Spec,
	stdin io.Reader,
	stdout, stderr io.Writer,
) (int, error) {
	err := spec.Validate()
	if err != nil {
		return -1, err
	}

	spec.applyDefaults()

	manager := scratch.Manager{Root: spec.ScratchRoot}

	space, err := manager.Acquire()
	if err != nil {
		return -1, fmt.Errorf("acquire scratch space: %w", err)
	}

	slog.Debug("Acquired scratch space", slog.String("path", space.Path()))

	defer func() {
		if spec.KeepScratch {
			slog.Info("Keeping scratch space",
				slog.String("path", space.Path()))
			return
		}

		err := space.Release()
		if err != nil {
			slog.Error("Scratch space release failed",
				slog.String("path", space.Path()),
				slog.Any("error", err))
		}
	}()

	kernel, img, err := assemble(ctx, spec, space)
	if err != nil {
		return -1, err
	}

	cmdSpec := qemu.CommandSpec{
		Executable:    spec.QemuExecutable,
		Kernel:        kernel.Path,
		EntropyDevice: spec.EntropyDevice,
		Console:       spec.Console,
	}

	if img != nil {
		cmdSpec.BlockDevices = []qemu.BlockDevice{
			{ID: blockDeviceID, Path: img.Path},
		}
	}

	cmd, err := qemu.NewCommand(cmdSpec)
	if err != nil {
		return -1, err
	}

	slog.Debug("Booting", slog.String("command", cmd.String()))

	rc, err := cmd.Run(ctx, stdin, stdout, stderr)
	if err != nil {
		return -1, interrupted(ctx, "boot", err)
	}

	slog.Debug("Guest exited", slog.Int("code", rc))

	return rc, nil
}

// assemble runs the build stages: the optional program compile and embed,
// the kernel compile and the optional image assembly. All intermediate
// state lands in the scratch space.
func assemble(
	ctx context.Context,
	spec Spec,
	space *scratch.Space,
) (*build.Artifact, *image.Image, error) {
	compiler := build.Compiler{
		SourceDir: spec.SourceDir,
		Toolchain: spec.Toolchain,
	}

	if spec.EmbedProgram {
		program, err := compiler.Compile(ctx, spec.ProgramTarget)
		if err != nil {
			return nil, nil, interrupted(ctx, "compile program", err)
		}

		objects, err := flatbin.Embed(space.Path(), program.Path)
		if err != nil {
			return nil, nil, interrupted(ctx, "embed program", err)
		}

		compiler.Env = append(compiler.Env, embedObjectEnv+"="+objects[0])
	}

	kernel, err := compiler.Compile(ctx, spec.KernelTarget)
	if err != nil {
		return nil, nil, interrupted(ctx, "compile kernel", err)
	}

	img, err := assembleImage(ctx, spec, space)
	if err != nil {
		return nil, nil, interrupted(ctx, "assemble image", err)
	}

	return kernel, img, nil
}

func assembleImage(
	ctx context.Context,
	spec Spec,
	space *scratch.Space,
) (*image.Image, error) {
	if spec.ImageKind == ImageNone {
		return nil, nil
	}

	assembler := image.Assembler{
		FSType:    spec.FSType,
		InodeSize: spec.InodeSize,
	}

	path := space.Join(diskImageName)

	var (
		img *image.Image
		err error
	)

	switch spec.ImageKind {
	case ImageFS:
		img, err = assembler.AssembleFS(
			ctx, space, path, spec.ImageCapacity, spec.fixtures(),
		)
	case ImageRaw:
		img, err = assembler.AssembleRaw(
			path, spec.ImageCapacity, spec.fixtures(),
		)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownImageKind, spec.ImageKind)
	}

	if err != nil {
		return nil, err
	}

	slog.Debug("Assembled image",
		slog.String("path", img.Path),
		slog.Int64("capacity", img.Capacity),
		slog.String("digest", img.Digest.String()))

	return img, nil
}

// interrupted wraps a stage failure in an [InterruptedError] if the
// context was canceled, so callers can tell cancellation apart from the
// stage failing on its own.
func interrupted(ctx context.Context, stage string, err error) error {
	if ctx.Err() != nil {
		return &InterruptedError{Stage: stage, Err: err}
	}

	return err
}
