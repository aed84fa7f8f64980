// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wren-os/wrenrun/internal/qemu"
)

func TestCommandSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    qemu.CommandSpec
		errMsg  string
		wantErr bool
	}{
		{
			name: "valid minimal",
			spec: qemu.CommandSpec{Kernel: "kernel.elf"},
		},
		{
			name: "valid with devices",
			spec: qemu.CommandSpec{
				Kernel: "kernel.elf",
				BlockDevices: []qemu.BlockDevice{
					{ID: "blk0", Path: "disk.img"},
				},
				EntropyDevice: true,
			},
		},
		{
			name:    "missing kernel",
			spec:    qemu.CommandSpec{},
			wantErr: true,
			errMsg:  "no kernel artifact",
		},
		{
			name: "block device without id",
			spec: qemu.CommandSpec{
				Kernel:       "kernel.elf",
				BlockDevices: []qemu.BlockDevice{{Path: "disk.img"}},
			},
			wantErr: true,
			errMsg:  "id and backing file",
		},
		{
			name: "duplicate block device id",
			spec: qemu.CommandSpec{
				Kernel: "kernel.elf",
				BlockDevices: []qemu.BlockDevice{
					{ID: "blk0", Path: "a.img"},
					{ID: "blk0", Path: "b.img"},
				},
			},
			wantErr: true,
			errMsg:  "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, &qemu.LaunchError{})
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestNewCommand(t *testing.T) {
	t.Run("full attachment set", func(t *testing.T) {
		spec := qemu.CommandSpec{
			Kernel: "kernel.elf",
			Memory: 128,
			BlockDevices: []qemu.BlockDevice{
				{ID: "blk0", Path: "disk.img"},
			},
			EntropyDevice: true,
		}

		cmd, err := qemu.NewCommand(spec)
		require.NoError(t, err)

		cmdline := cmd.String()
		assert.Contains(t, cmdline, "qemu-system-riscv32")
		assert.Contains(t, cmdline, "-kernel kernel.elf")
		assert.Contains(t, cmdline, "-machine virt")
		assert.Contains(t, cmdline, "-bios default")
		assert.Contains(t, cmdline, "-m 128")
		assert.Contains(t, cmdline,
			"-drive id=blk0,file=disk.img,format=raw,if=none")
		assert.Contains(t, cmdline, "-device virtio-blk-device,drive=blk0")
		assert.Contains(t, cmdline, "-device virtio-rng-device")
		assert.Contains(t, cmdline, "-no-reboot")
		assert.Contains(t, cmdline, "-serial stdio")
	})

	t.Run("device order follows attachment order", func(t *testing.T) {
		spec := qemu.CommandSpec{
			Kernel: "kernel.elf",
			BlockDevices: []qemu.BlockDevice{
				{ID: "blk0", Path: "disk.img"},
			},
			EntropyDevice: true,
		}

		cmd, err := qemu.NewCommand(spec)
		require.NoError(t, err)

		cmdline := cmd.String()
		blk := "-device virtio-blk-device,drive=blk0"
		rng := "-device virtio-rng-device"
		require.Contains(t, cmdline, blk)
		require.Contains(t, cmdline, rng)
		assert.Less(t,
			strings.Index(cmdline, blk), strings.Index(cmdline, rng),
			"block device must occupy the lower bus slot",
		)
	})

	t.Run("no attachments", func(t *testing.T) {
		cmd, err := qemu.NewCommand(qemu.CommandSpec{Kernel: "kernel.elf"})
		require.NoError(t, err)
		assert.NotContains(t, cmd.String(), "-drive")
		assert.NotContains(t, cmd.String(), "virtio-rng")
	})

	t.Run("colliding extra args refused", func(t *testing.T) {
		spec := qemu.CommandSpec{
			Kernel:    "kernel.elf",
			ExtraArgs: []qemu.Argument{qemu.UniqueArg("no-reboot")},
		}

		_, err := qemu.NewCommand(spec)
		assert.ErrorIs(t, err, qemu.ErrArgumentCollision)
	})
}
