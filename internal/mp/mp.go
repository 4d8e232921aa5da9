// Package mp discovers the multiprocessor configuration: it scans for
// the "_MP_" floating pointer structure, validates the "PCMP"
// configuration table it references, and walks the table's entries to
// register CPUs, learn the I/O APIC's ID, and publish the LAPIC MMIO
// base.
//
// Grounded on original_source/kernel/src/mp.rs.
package mp

import (
	"encoding/binary"
	"unsafe"

	"novakernel/internal/cpu"
	"novakernel/internal/ioapic"
	"novakernel/internal/lapic"
)

const (
	procEntry    = 0
	busEntry     = 1
	ioapicEntry  = 2
	iointrEntry  = 3
	lintrEntry   = 4

	procEntrySize   = 20
	busEntrySize    = 8
	ioapicEntrySize = 8
	iointrEntrySize = 8
	lintrEntrySize  = 8
)

// checksum sums every byte of b and reports whether the total is
// zero mod 256, the validation rule both the floating pointer
// structure and the configuration table use (spec §4.3: "length sum
// must be zero").
func checksum(b []byte) bool {
	var sum uint8
	for _, v := range b {
		sum += v
	}
	return sum == 0
}

func findSignature(region []byte, sig string) int {
	for i := 0; i+len(sig) <= len(region); i += 16 {
		if string(region[i:i+len(sig)]) == sig {
			return i
		}
	}
	return -1
}

// search scans the EBDA, the last KiB of base memory, and the BIOS
// ROM area 0xF0000-0x100000 for the "_MP_" floating pointer. It
// returns the physical address of the MP configuration table, or 0 if
// none was found.
func search(physMem func(addr, length uint32) []byte) uint32 {
	ebda := binary.LittleEndian.Uint16(physMem(0x40E, 2))
	regions := [][2]uint32{
		{uint32(ebda) << 4, 1024},
		{0x9FC00, 1024}, // last KiB of base memory on machines without an EBDA pointer
		{0xF0000, 0x10000},
	}
	for _, r := range regions {
		buf := physMem(r[0], r[1])
		if off := findSignature(buf, "_MP_"); off >= 0 && off+16 <= len(buf) {
			if !checksum(buf[off : off+16]) {
				continue
			}
			confAddr := binary.LittleEndian.Uint32(buf[off+4 : off+8])
			return confAddr
		}
	}
	return 0
}

// Init discovers the MP configuration, registering every processor
// entry via internal/cpu.RegisterCPU, recording the I/O APIC ID, and
// publishing the LAPIC MMIO base. physMem maps a physical range to a
// byte slice the caller can read (the kernel's direct map; tests
// supply a synthetic buffer).
func Init(physMem func(addr, length uint32) []byte) bool {
	confAddr := search(physMem)
	if confAddr == 0 {
		return false
	}

	hdr := physMem(confAddr, 44)
	if string(hdr[0:4]) != "PCMP" {
		return false
	}
	length := binary.LittleEndian.Uint16(hdr[4:6])
	version := hdr[6]
	if version != 1 && version != 4 {
		return false
	}
	table := physMem(confAddr, uint32(length))
	if !checksum(table) {
		return false
	}

	lapicAddr := binary.LittleEndian.Uint32(hdr[36:40])
	lapic.SetBase(unsafe.Pointer(uintptr(lapicAddr)))

	entryCount := binary.LittleEndian.Uint16(hdr[34:36])
	off := 44
	for i := 0; i < int(entryCount); i++ {
		if off >= len(table) {
			break
		}
		switch table[off] {
		case procEntry:
			ent := table[off : off+procEntrySize]
			apicID := ent[1]
			flags := ent[4]
			const procEntryUsable = 0x1
			if flags&procEntryUsable != 0 {
				cpu.RegisterCPU(apicID)
			}
			off += procEntrySize
		case busEntry:
			off += busEntrySize
		case ioapicEntry:
			ent := table[off : off+ioapicEntrySize]
			ioapic.ID = ent[1]
			off += ioapicEntrySize
		case iointrEntry:
			off += iointrEntrySize
		case lintrEntry:
			off += lintrEntrySize
		default:
			return true // unknown entry type; stop rather than misparse
		}
	}

	cpu.SetLapicIDFunc(lapic.ID)
	return true
}
