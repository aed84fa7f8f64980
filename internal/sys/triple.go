// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import "strings"

// Triple is a target triple as understood by the cross toolchain, like
// "riscv32imac-unknown-none-elf".
type Triple string

// DefaultTriple is the target triple of the kernel and its user programs.
const DefaultTriple Triple = "riscv32imac-unknown-none-elf"

func (t *Triple) String() string {
	return string(*t)
}

// Set implements [flag.Value].
func (t *Triple) Set(s string) error {
	if s == "" {
		return ErrEmptyTriple
	}

	if strings.ContainsAny(s, "/ \t") {
		return ErrInvalidTriple
	}

	*t = Triple(s)

	return nil
}
