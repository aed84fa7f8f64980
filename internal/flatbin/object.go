// SPDX-FileCopyrightText: 2026 The wrenrun authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package flatbin

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"os"
)

// Section header string table, offsets are fixed by construction.
const (
	shstrtab = "\x00.data\x00.symtab\x00.strtab\x00.shstrtab\x00"

	shstrData     = 1
	shstrSymtab   = 7
	shstrStrtab   = 15
	shstrShstrtab = 23
)

// Section indices in the produced object.
const (
	sectionNull = iota
	sectionData
	sectionSymtab
	sectionStrtab
	sectionShstrtab
	sectionCount
)

const objectAlign = 8

// Repack wraps the flattened binary in a minimal relocatable object of
// the binary's class, machine and byte order.
//
// The object contains a single .data section holding the flattened bytes
// and exactly three symbols: start and end of the section, and the byte
// count as an absolute symbol.
func Repack(flat *FlatBinary) ([]byte, error) {
	switch flat.Class {
	case elf.ELFCLASS32, elf.ELFCLASS64:
	default:
		return nil, fmt.Errorf("unknown ELF class: %s", flat.Class)
	}

	order, err := byteOrder(flat.ByteOrder)
	if err != nil {
		return nil, err
	}

	if flat.Class == elf.ELFCLASS32 {
		return repack32(flat, order)
	}

	return repack64(flat, order)
}

// WriteObject repacks the flattened binary and writes the object to the
// given path.
func WriteObject(flat *FlatBinary, path string) error {
	object, err := Repack(flat)
	if err != nil {
		return &EmbedError{Path: path, Err: err}
	}

	err = os.WriteFile(path, object, 0o644)
	if err != nil {
		return &EmbedError{Path: path, Err: err}
	}

	return nil
}

func byteOrder(data elf.Data) (binary.ByteOrder, error) {
	switch data {
	case elf.ELFDATA2LSB:
		return binary.LittleEndian, nil
	case elf.ELFDATA2MSB:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("unknown ELF byte order: %s", data)
	}
}

func elfIdent(class elf.Class, data elf.Data) [elf.EI_NIDENT]byte {
	var ident [elf.EI_NIDENT]byte

	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(class)
	ident[elf.EI_DATA] = byte(data)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	return ident
}

// symbolNames returns the string table and the name offsets of the three
// symbols in declaration order: start, end, size.
func symbolNames(ident string) (string, [3]uint32) {
	var offsets [3]uint32

	strtab := "\x00"

	for idx, suffix := range [3]string{"start", "end", "size"} {
		offsets[idx] = uint32(len(strtab))
		strtab += "_binary_" + ident + "_" + suffix + "\x00"
	}

	return strtab, offsets
}

func alignUp(offset int) int {
	return (offset + objectAlign - 1) &^ (objectAlign - 1)
}

func writePadded(buf *bytes.Buffer, offset int) {
	buf.Write(make([]byte, offset-buf.Len()))
}

func repack32(flat *FlatBinary, order binary.ByteOrder) ([]byte, error) {
	strtab, nameOffsets := symbolNames(flat.Ident)
	size := uint32(len(flat.Data))

	globalInfo := elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE)
	symbols := [4]elf.Sym32{
		{}, // null symbol
		{
			Name:  nameOffsets[0],
			Value: 0,
			Info:  globalInfo,
			Shndx: sectionData,
		},
		{
			Name:  nameOffsets[1],
			Value: size,
			Info:  globalInfo,
			Shndx: sectionData,
		},
		{
			Name:  nameOffsets[2],
			Value: size,
			Info:  globalInfo,
			Shndx: uint16(elf.SHN_ABS),
		},
	}

	ehdrSize := 52
	dataOff := alignUp(ehdrSize)
	symOff := alignUp(dataOff + len(flat.Data))
	strOff := symOff + len(symbols)*elf.Sym32Size
	shstrOff := strOff + len(strtab)
	shOff := alignUp(shstrOff + len(shstrtab))

	sections := [sectionCount]elf.Section32{
		sectionNull: {},
		sectionData: {
			Name:      shstrData,
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint32(elf.SHF_ALLOC | elf.SHF_WRITE),
			Off:       uint32(dataOff),
			Size:      size,
			Addralign: objectAlign,
		},
		sectionSymtab: {
			Name:      shstrSymtab,
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint32(symOff),
			Size:      uint32(len(symbols) * elf.Sym32Size),
			Link:      sectionStrtab,
			Info:      1, // index of the first non-local symbol
			Addralign: 4,
			Entsize:   elf.Sym32Size,
		},
		sectionStrtab: {
			Name:      shstrStrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(strOff),
			Size:      uint32(len(strtab)),
			Addralign: 1,
		},
		sectionShstrtab: {
			Name:      shstrShstrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint32(shstrOff),
			Size:      uint32(len(shstrtab)),
			Addralign: 1,
		},
	}

	ehdr := elf.Header32{
		Ident:     elfIdent(elf.ELFCLASS32, flat.ByteOrder),
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(flat.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint32(shOff),
		Ehsize:    uint16(ehdrSize),
		Shentsize: 40,
		Shnum:     sectionCount,
		Shstrndx:  sectionShstrtab,
	}

	buf := &bytes.Buffer{}

	err := binary.Write(buf, order, ehdr)
	if err != nil {
		return nil, err
	}

	writePadded(buf, dataOff)
	buf.Write(flat.Data)

	writePadded(buf, symOff)

	err = binary.Write(buf, order, symbols)
	if err != nil {
		return nil, err
	}

	buf.WriteString(strtab)
	buf.WriteString(shstrtab)

	writePadded(buf, shOff)

	err = binary.Write(buf, order, sections)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func repack64(flat *FlatBinary, order binary.ByteOrder) ([]byte, error) {
	strtab, nameOffsets := symbolNames(flat.Ident)
	size := uint64(len(flat.Data))

	globalInfo := elf.ST_INFO(elf.STB_GLOBAL, elf.STT_NOTYPE)
	symbols := [4]elf.Sym64{
		{}, // null symbol
		{
			Name:  nameOffsets[0],
			Value: 0,
			Info:  globalInfo,
			Shndx: sectionData,
		},
		{
			Name:  nameOffsets[1],
			Value: size,
			Info:  globalInfo,
			Shndx: sectionData,
		},
		{
			Name:  nameOffsets[2],
			Value: size,
			Info:  globalInfo,
			Shndx: uint16(elf.SHN_ABS),
		},
	}

	ehdrSize := 64
	dataOff := alignUp(ehdrSize)
	symOff := alignUp(dataOff + len(flat.Data))
	strOff := symOff + len(symbols)*elf.Sym64Size
	shstrOff := strOff + len(strtab)
	shOff := alignUp(shstrOff + len(shstrtab))

	sections := [sectionCount]elf.Section64{
		sectionNull: {},
		sectionData: {
			Name:      shstrData,
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint64(elf.SHF_ALLOC | elf.SHF_WRITE),
			Off:       uint64(dataOff),
			Size:      size,
			Addralign: objectAlign,
		},
		sectionSymtab: {
			Name:      shstrSymtab,
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint64(symOff),
			Size:      uint64(len(symbols) * elf.Sym64Size),
			Link:      sectionStrtab,
			Info:      1, // index of the first non-local symbol
			Addralign: 8,
			Entsize:   elf.Sym64Size,
		},
		sectionStrtab: {
			Name:      shstrStrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(strOff),
			Size:      uint64(len(strtab)),
			Addralign: 1,
		},
		sectionShstrtab: {
			Name:      shstrShstrtab,
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(shstrOff),
			Size:      uint64(len(shstrtab)),
			Addralign: 1,
		},
	}

	ehdr := elf.Header64{
		Ident:     elfIdent(elf.ELFCLASS64, flat.ByteOrder),
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(flat.Machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     uint64(shOff),
		Ehsize:    uint16(ehdrSize),
		Shentsize: 64,
		Shnum:     sectionCount,
		Shstrndx:  sectionShstrtab,
	}

	buf := &bytes.Buffer{}

	err := binary.Write(buf, order, ehdr)
	if err != nil {
		return nil, err
	}

	writePadded(buf, dataOff)
	buf.Write(flat.Data)

	writePadded(buf, symOff)

	err = binary.Write(buf, order, symbols)
	if err != nil {
		return nil, err
	}

	buf.WriteString(strtab)
	buf.WriteString(shstrtab)

	writePadded(buf, shOff)

	err = binary.Write(buf, order, sections)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
