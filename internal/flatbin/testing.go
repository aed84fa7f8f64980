// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"os"
	"testing"
)

// TestSegment describes one loadable segment of a synthetic test binary.
// MemSize larger than len(Data) models a zero-initialized region.
type TestSegment struct {
	Addr    uint64
	Data    []byte
	MemSize uint64
}

func (s TestSegment) memSize() uint64 {
	return max(s.MemSize, uint64(len(s.Data)))
}

// WriteTestELF writes a minimal little-endian executable with the given
// loadable segments to path. Test helper for this and dependent packages.
func WriteTestELF(
	tb testing.TB,
	path string,
	class elf.Class,
	machine elf.Machine,
	segments ...TestSegment,
) {
	tb.Helper()

	var object []byte

	switch class {
	case elf.ELFCLASS32:
		object = testELF32(tb, machine, segments)
	case elf.ELFCLASS64:
		object = testELF64(tb, machine, segments)
	default:
		tb.Fatalf("unknown ELF class: %s", class)
	}

	err := os.WriteFile(path, object, 0o755)
	if err != nil {
		tb.Fatal(err)
	}
}

func testELF32(
	tb testing.TB,
	machine elf.Machine,
	segments []TestSegment,
) []byte {
	tb.Helper()

	const (
		ehdrSize = 52
		phdrSize = 32
	)

	ehdr := elf.Header32{
		Ident:     elfIdent(elf.ELFCLASS32, elf.ELFDATA2LSB),
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Phoff:     ehdrSize,
		Ehsize:    ehdrSize,
		Phentsize: phdrSize,
		Phnum:     uint16(len(segments)),
	}

	dataOff := ehdrSize + len(segments)*phdrSize
	phdrs := make([]elf.Prog32, 0, len(segments))
	payload := &bytes.Buffer{}

	for _, segment := range segments {
		phdrs = append(phdrs, elf.Prog32{
			Type:   uint32(elf.PT_LOAD),
			Off:    uint32(dataOff + payload.Len()),
			Vaddr:  uint32(segment.Addr),
			Paddr:  uint32(segment.Addr),
			Filesz: uint32(len(segment.Data)),
			Memsz:  uint32(segment.memSize()),
			Flags:  uint32(elf.PF_R | elf.PF_W | elf.PF_X),
			Align:  1,
		})
		payload.Write(segment.Data)
	}

	buf := &bytes.Buffer{}

	for _, part := range []any{ehdr, phdrs} {
		err := binary.Write(buf, binary.LittleEndian, part)
		if err != nil {
			tb.Fatal(err)
		}
	}

	buf.Write(payload.Bytes())

	return buf.Bytes()
}

func testELF64(
	tb testing.TB,
	machine elf.Machine,
	segments []TestSegment,
) []byte {
	tb.Helper()

	const (
		ehdrSize = 64
		phdrSize = 56
	)

	ehdr := elf.Header64{
		Ident:     elfIdent(elf.ELFCLASS64, elf.ELFDATA2LSB),
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Phoff:     ehdrSize,
		Ehsize:    ehdrSize,
		Phentsize: phdrSize,
		Phnum:     uint16(len(segments)),
	}

	dataOff := ehdrSize + len(segments)*phdrSize
	phdrs := make([]elf.Prog64, 0, len(segments))
	payload := &bytes.Buffer{}

	for _, segment := range segments {
		phdrs = append(phdrs, elf.Prog64{
			Type:   uint32(elf.PT_LOAD),
			Flags:  uint32(elf.PF_R | elf.PF_W | elf.PF_X),
			Off:    uint64(dataOff + payload.Len()),
			Vaddr:  segment.Addr,
			Paddr:  segment.Addr,
			Filesz: uint64(len(segment.Data)),
			Memsz:  segment.memSize(),
			Align:  1,
		})
		payload.Write(segment.Data)
	}

	buf := &bytes.Buffer{}

	for _, part := range []any{ehdr, phdrs} {
		err := binary.Write(buf, binary.LittleEndian, part)
		if err != nil {
			tb.Fatal(err)
		}
	}

	buf.Write(payload.Bytes())

	return buf.Bytes()
}
