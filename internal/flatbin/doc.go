// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package flatbin turns a compiled ELF binary into a relocatable object
// the kernel links against.
//
// The binary's loadable segments are flattened into raw bytes in address
// order, with zero-initialized regions materialized as explicit zero
// bytes, so the flattened length equals the full runtime footprint and a
// consumer copying the blob performs no separate zero-fill. The bytes are
// then wrapped in a minimal relocatable object of the same class, machine
// and byte order, exposing exactly three symbols derived from the source
// file name:
//
//	_binary_<ident>_start
//	_binary_<ident>_end
//	_binary_<ident>_size
//
// The size symbol's value always equals the exact flattened byte length.
package flatbin
