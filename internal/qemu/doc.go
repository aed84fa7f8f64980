// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package qemu builds and runs the emulator command booting the kernel.
package qemu
