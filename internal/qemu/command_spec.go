// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "strconv"

const (
	defaultExecutable = "qemu-system-riscv32"
	defaultMachine    = "virt"
	defaultBios       = "default"
)

// ConsoleMode selects how the guest's serial console is wired up.
type ConsoleMode int

const (
	// ConsoleInteractive binds the serial console directly to the
	// invoking terminal's input and output streams.
	ConsoleInteractive ConsoleMode = iota

	// ConsoleCaptured pipes the guest output through the harness so it
	// can be inspected or redirected.
	ConsoleCaptured
)

// BlockDevice is a virtio block device attachment exposing a backing file
// as a disk to the guest.
type BlockDevice struct {
	// ID of the drive, unique per command.
	ID string

	// Path to the backing image file. The file must not be mounted
	// anywhere when the emulator opens it.
	Path string
}

// CommandSpec defines the parameters for a [Command].
//
// The order of device attachments is significant: it fixes the virtio-mmio
// slot each device appears in, which the kernel relies on.
type CommandSpec struct {
	// Path to the qemu-system binary. Empty means qemu-system-riscv32.
	Executable string

	// Path to the kernel ELF to boot.
	Kernel string

	// QEMU machine type. Empty means "virt".
	Machine string

	// Bios selects the boot firmware. Empty means "default", the
	// bundled SBI firmware the kernel expects.
	Bios string

	// Memory for the machine in MB. Zero keeps the machine default.
	Memory uint64

	// BlockDevices are attached in order.
	BlockDevices []BlockDevice

	// EntropyDevice attaches a virtio entropy source after the block
	// devices.
	EntropyDevice bool

	// Console selects the serial console wiring.
	Console ConsoleMode

	// ExtraArgs are extra arguments passed to the QEMU command. They must
	// not interfere with the essential arguments set by the command
	// itself or an error is returned on [NewCommand].
	ExtraArgs []Argument
}

func (s *CommandSpec) executable() string {
	if s.Executable != "" {
		return s.Executable
	}

	return defaultExecutable
}

// Validate checks that the spec can be launched.
func (s *CommandSpec) Validate() error {
	if s.Kernel == "" {
		return &LaunchError{msg: "no kernel artifact given"}
	}

	seen := make(map[string]bool, len(s.BlockDevices))

	for _, device := range s.BlockDevices {
		if device.ID == "" || device.Path == "" {
			return &LaunchError{
				msg: "block device needs both id and backing file",
			}
		}

		if seen[device.ID] {
			return &LaunchError{msg: "duplicate block device id " + device.ID}
		}

		seen[device.ID] = true
	}

	return nil
}

// arguments compiles the argument list for the QEMU command.
func (s *CommandSpec) arguments() []Argument {
	machine := s.Machine
	if machine == "" {
		machine = defaultMachine
	}

	bios := s.Bios
	if bios == "" {
		bios = defaultBios
	}

	args := []Argument{
		UniqueArg("kernel", s.Kernel),
		UniqueArg("machine", machine),
		UniqueArg("bios", bios),
	}

	if s.Memory != 0 {
		args = append(args,
			UniqueArg("m", strconv.FormatUint(s.Memory, 10)),
		)
	}

	for _, device := range s.BlockDevices {
		args = append(args,
			RepeatableArg("drive",
				"id="+device.ID,
				"file="+device.Path,
				"format=raw",
				"if=none",
			),
			RepeatableArg("device",
				"virtio-blk-device",
				"drive="+device.ID,
			),
		)
	}

	if s.EntropyDevice {
		args = append(args, RepeatableArg("device", "virtio-rng-device"))
	}

	args = append(args,
		// Serial console on stdio.
		RepeatableArg("serial", "stdio"),
		// Disable video output.
		UniqueArg("display", "none"),
		// Disable the QEMU monitor.
		UniqueArg("monitor", "none"),
		// A guest halt or crash is terminal, never a restart.
		UniqueArg("no-reboot"),
	)

	return append(args, s.ExtraArgs...)
}
