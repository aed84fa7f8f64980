// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package harness drives a complete build-and-boot run of the operating
// system: compile the targets, embed the user binary into the kernel
// link, assemble a storage image and boot the result under the emulator.
package harness

import (
	"fmt"

	"github.com/wren-os/wrenrun/internal/build"
	"github.com/wren-os/wrenrun/internal/image"
	"github.com/wren-os/wrenrun/internal/qemu"
	"github.com/wren-os/wrenrun/internal/sys"
)

// embedObjectEnv hands the repacked object path to the kernel's build
// script, which links it into the kernel image.
const embedObjectEnv = "WREN_EMBED_OBJECT"

// DefaultFixtureName is the path the default fixture is written to,
// relative to the filesystem root of the assembled image.
const DefaultFixtureName = "fixture.txt"

// DefaultFixture is the file content storage-backed runs seed their image
// with, unless the caller brings their own fixtures. Its length (597
// bytes) exceeds a 512-byte sector, so reading it back in the guest
// exercises a multi-sector transfer.
const DefaultFixture = "Lorem ipsum dolor sit amet, consectetur adipiscing" +
	" elit, sed do eiusmod tempor incididunt ut labore et dolore magna" +
	" aliqua. Ut enim ad minim veniam, quis nostrud exercitation ullamco" +
	" laboris nisi ut aliquip ex ea commodo consequat. Duis aute irure" +
	" dolor in reprehenderit in voluptate velit esse cillum dolore eu" +
	" fugiat nulla pariatur. Excepteur sint occaecat cupidatat non" +
	" proident, sunt in culpa qui officia deserunt mollit anim id est" +
	" laborum. Sed ut perspiciatis unde omnis iste natus error sit" +
	" voluptatem accusantium doloremque laudantium, totam rem aperiam," +
	" eaque ipsa quae ab illo inventore."

// ImageKind selects the storage representation attached to the guest.
type ImageKind int

const (
	// ImageNone attaches no storage.
	ImageNone ImageKind = iota

	// ImageFS attaches a formatted filesystem image.
	ImageFS

	// ImageRaw attaches a headerless image holding the fixture bytes at
	// offset zero.
	ImageRaw
)

// String implements [flag.Value].
func (k *ImageKind) String() string {
	switch *k {
	case ImageFS:
		return "fs"
	case ImageRaw:
		return "raw"
	default:
		return "none"
	}
}

// Set implements [flag.Value].
func (k *ImageKind) Set(s string) error {
	switch s {
	case "none":
		*k = ImageNone
	case "fs":
		*k = ImageFS
	case "raw":
		*k = ImageRaw
	default:
		return fmt.Errorf("%w: %s", ErrUnknownImageKind, s)
	}

	return nil
}

// Spec describes one complete run. The zero value is not runnable; start
// from [VariantSpec] or fill in at least SourceDir and KernelTarget.
type Spec struct {
	// SourceDir is the root of the operating system source tree.
	SourceDir string

	// Toolchain overrides the build tool executable.
	Toolchain string

	// KernelTarget is the kernel build unit. Always compiled.
	KernelTarget build.Target

	// ProgramTarget is the user program build unit. Only compiled when
	// EmbedProgram is set.
	ProgramTarget build.Target

	// EmbedProgram compiles the user program, flattens it and hands the
	// repacked object to the kernel build.
	EmbedProgram bool

	// ImageKind selects the storage image, if any.
	ImageKind ImageKind

	// ImageCapacity is the image size in bytes. For raw images zero
	// means the fixture length.
	ImageCapacity int64

	// FSType and InodeSize parameterize filesystem images. Zero values
	// select ext2 with 128-byte inodes.
	FSType    string
	InodeSize int

	// Fixtures are the files written into the image. Empty with an
	// image kind other than none selects the default fixture.
	Fixtures image.FixtureSet

	// EntropyDevice attaches a virtio entropy source to the guest.
	EntropyDevice bool

	// QemuExecutable overrides the emulator binary.
	QemuExecutable string

	// Console selects how guest console I/O is attached.
	Console qemu.ConsoleMode

	// ScratchRoot overrides the directory scratch spaces are created
	// under. Empty means the system temp directory.
	ScratchRoot string

	// KeepScratch leaves the scratch space behind for inspection.
	KeepScratch bool
}

// VariantSpec returns the spec preset for the named pipeline variant.
//
// The variants build on each other: "kernel" boots the bare kernel,
// "program" additionally embeds the user program, "fs" adds a formatted
// storage image plus an entropy device, and "rawfs" swaps the filesystem
// image for a raw one without entropy.
func VariantSpec(name, sourceDir string) (Spec, error) {
	spec := Spec{
		SourceDir:    sourceDir,
		KernelTarget: build.Target{Package: "kernel"},
	}

	switch name {
	case "kernel":
	case "program":
		spec.EmbedProgram = true
		spec.ProgramTarget = build.Target{Package: "shell"}
	case "fs":
		spec.EmbedProgram = true
		spec.ProgramTarget = build.Target{Package: "shell"}
		spec.ImageKind = ImageFS
		spec.ImageCapacity = 1 << 20
		spec.EntropyDevice = true
	case "rawfs":
		spec.EmbedProgram = true
		spec.ProgramTarget = build.Target{Package: "shell"}
		spec.ImageKind = ImageRaw
	default:
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}

	return spec, nil
}

// Validate checks that the spec describes a runnable pipeline.
func (s *Spec) Validate() error {
	if s.SourceDir == "" {
		return ErrNoSourceDir
	}

	if s.KernelTarget.Package == "" {
		return ErrNoKernelTarget
	}

	if s.EmbedProgram && s.ProgramTarget.Package == "" {
		return ErrNoProgramTarget
	}

	if s.ImageKind == ImageNone && s.ImageCapacity != 0 {
		return ErrCapacityWithoutImage
	}

	return nil
}

// applyDefaults fills in the target triples of a validated spec.
func (s *Spec) applyDefaults() {
	if s.KernelTarget.Triple == "" {
		s.KernelTarget.Triple = sys.DefaultTriple
	}

	if s.ProgramTarget.Triple == "" {
		s.ProgramTarget.Triple = sys.DefaultTriple
	}
}

// fixtures returns the effective fixture set, falling back to the
// default fixture for storage-backed runs.
func (s *Spec) fixtures() image.FixtureSet {
	if len(s.Fixtures) > 0 {
		return s.Fixtures
	}

	return image.FixtureSet{DefaultFixtureName: []byte(DefaultFixture)}
}
