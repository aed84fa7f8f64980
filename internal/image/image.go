// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package image builds fixed-capacity storage images the emulator attaches
// as block devices.
//
// Filesystem images are formatted with an external mkfs, loop-mounted at a
// scratch-owned mount point, populated with fixture content and unmounted
// again. Mount and unmount are a strict pair: the image is never handed
// out while possibly still mounted, since mount state and the emulator's
// raw device access are mutually exclusive views of the same file. Raw
// images are headerless byte streams.
package image

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/opencontainers/go-digest"

	"github.com/wren-os/wrenrun/internal/scratch"
	"github.com/wren-os/wrenrun/internal/sys"
)

const (
	defaultFSType    = "ext2"
	defaultInodeSize = 128
	defaultBlockSize = 1024
)

// FixtureSet maps image paths to deterministic byte content.
type FixtureSet map[string][]byte

// paths returns the fixture paths in stable order.
func (s FixtureSet) paths() []string {
	paths := make([]string, 0, len(s))
	for path := range s {
		paths = append(paths, path)
	}

	slices.Sort(paths)

	return paths
}

// Image is a finished storage image.
type Image struct {
	Path     string
	Capacity int64
	Digest   digest.Digest
}

// Assembler builds storage images.
type Assembler struct {
	// FSType is the filesystem type for filesystem images. Empty means
	// ext2, the type the kernel reads.
	FSType string

	// InodeSize in bytes. Zero means 128, keeping metadata overhead low
	// for small fixtures.
	InodeSize int

	// BlockSize in bytes. Zero means 1024.
	BlockSize int

	// UID and GID own the files inside the image. Both zero means the
	// invoking user. (An actual root invocation resolves to 0:0 either
	// way.)
	UID int
	GID int

	// Mount and Umount override the mount utilities. Empty means "mount"
	// and "umount".
	Mount  string
	Umount string

	// Mkfs overrides the formatting utility. Empty means "mkfs.<fstype>".
	Mkfs string
}

func (a *Assembler) fsType() string {
	if a.FSType != "" {
		return a.FSType
	}

	return defaultFSType
}

func (a *Assembler) owner() (int, int) {
	if a.UID == 0 && a.GID == 0 {
		return os.Getuid(), os.Getgid()
	}

	return a.UID, a.GID
}

func (a *Assembler) mkfsTool() string {
	if a.Mkfs != "" {
		return a.Mkfs
	}

	return "mkfs." + a.fsType()
}

func (a *Assembler) mountTool() string {
	if a.Mount != "" {
		return a.Mount
	}

	return "mount"
}

func (a *Assembler) umountTool() string {
	if a.Umount != "" {
		return a.Umount
	}

	return "umount"
}

func (a *Assembler) mkfsArgs(path string) []string {
	inodeSize := a.InodeSize
	if inodeSize == 0 {
		inodeSize = defaultInodeSize
	}

	blockSize := a.BlockSize
	if blockSize == 0 {
		blockSize = defaultBlockSize
	}

	uid, gid := a.owner()

	return []string{
		"-q",
		"-F",
		"-b", fmt.Sprintf("%d", blockSize),
		"-I", fmt.Sprintf("%d", inodeSize),
		"-E", fmt.Sprintf("root_owner=%d:%d", uid, gid),
		path,
	}
}

func (a *Assembler) mountArgs(path, mountPoint string) []string {
	return []string{"-o", "loop", path, mountPoint}
}

// AssembleFS builds a filesystem image of the given capacity at path and
// populates it with the fixture set.
//
// The finished image has every fixture entry present, or an
// [AssemblyError] is returned and the image must not be used. An unmount
// failure is escalated the same way, joined to any earlier error without
// replacing it.
func (a *Assembler) AssembleFS(
	ctx context.Context,
	space *scratch.Space,
	path string,
	capacity int64,
	fixtures FixtureSet,
) (*Image, error) {
	if capacity <= 0 {
		return nil, &AssemblyError{Op: "allocate", Err: ErrNoCapacity}
	}

	err := allocateZeroed(path, capacity)
	if err != nil {
		return nil, &AssemblyError{Op: "allocate", Err: err}
	}

	mkfs := sys.Tool{Name: a.mkfsTool()}

	err = mkfs.Run(ctx, nil, a.mkfsArgs(path)...)
	if err != nil {
		return nil, &AssemblyError{Op: "format", Err: err}
	}

	mountPoint, err := space.MountPoint("mnt")
	if err != nil {
		return nil, &AssemblyError{Op: "mount", Err: err}
	}

	err = a.populate(ctx, path, mountPoint, fixtures)
	if err != nil {
		return nil, err
	}

	return a.finish(path, capacity)
}

// populate mounts the image, writes all fixtures and unmounts again. The
// unmount always runs once the mount succeeded.
func (a *Assembler) populate(
	ctx context.Context,
	path string,
	mountPoint string,
	fixtures FixtureSet,
) (err error) {
	mount := sys.Tool{Name: a.mountTool()}

	err = mount.Run(ctx, nil, a.mountArgs(path, mountPoint)...)
	if err != nil {
		return &AssemblyError{Op: "mount", Err: err}
	}

	defer func() {
		umount := sys.Tool{Name: a.umountTool()}

		// The unmount must run even if the run's context was canceled
		// mid-populate. A still-mounted image would block the scratch
		// space release.
		uerr := umount.Run(context.WithoutCancel(ctx), nil, mountPoint)
		if uerr != nil {
			err = errors.Join(err, &AssemblyError{Op: "unmount", Err: uerr})
		}
	}()

	uid, gid := a.owner()

	for _, fixturePath := range fixtures.paths() {
		err := writeFixture(mountPoint, fixturePath, fixtures[fixturePath], uid, gid)
		if err != nil {
			return &AssemblyError{Op: "populate", Err: err}
		}
	}

	return nil
}

func writeFixture(mountPoint, path string, data []byte, uid, gid int) error {
	target := filepath.Join(mountPoint, path)

	dir := filepath.Dir(target)

	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	err = os.WriteFile(target, data, 0o644)
	if err != nil {
		return err
	}

	for candidate := target; candidate != mountPoint; candidate = filepath.Dir(candidate) {
		err = os.Chown(candidate, uid, gid)
		if err != nil {
			return err
		}
	}

	return nil
}

// AssembleRaw builds a headerless image at path whose content is exactly
// the fixture bytes starting at offset 0, concatenated in stable path
// order. Capacity zero means the fixture length; a larger capacity leaves
// the remaining bytes zero.
func (a *Assembler) AssembleRaw(
	path string,
	capacity int64,
	fixtures FixtureSet,
) (*Image, error) {
	var content []byte
	for _, fixturePath := range fixtures.paths() {
		content = append(content, fixtures[fixturePath]...)
	}

	if capacity == 0 {
		capacity = int64(len(content))
	}

	if capacity < int64(len(content)) {
		return nil, &AssemblyError{Op: "allocate", Err: ErrCapacityTooSmall}
	}

	err := allocateZeroed(path, capacity)
	if err != nil {
		return nil, &AssemblyError{Op: "allocate", Err: err}
	}

	file, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &AssemblyError{Op: "populate", Err: err}
	}

	_, err = file.WriteAt(content, 0)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return nil, &AssemblyError{Op: "populate", Err: err}
	}

	return a.finish(path, capacity)
}

func (a *Assembler) finish(path string, capacity int64) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &AssemblyError{Op: "digest", Err: err}
	}
	defer file.Close()

	dig, err := digest.FromReader(file)
	if err != nil {
		return nil, &AssemblyError{Op: "digest", Err: err}
	}

	slog.Debug("Assembled storage image",
		slog.String("path", path),
		slog.Int64("capacity", capacity),
		slog.String("digest", dig.String()))

	return &Image{Path: path, Capacity: capacity, Digest: dig}, nil
}

// allocateZeroed creates path as a zero-filled file of the given size,
// replacing any previous content.
func allocateZeroed(path string, size int64) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	err = file.Truncate(size)
	if cerr := file.Close(); err == nil {
		err = cerr
	}

	return err
}
