// Package gdt builds the per-CPU segment descriptor table and task
// state segment. Segments are flat (base 0, limit 4 GiB); privilege
// separation is by descriptor privilege level (DPL) alone.
//
// Grounded on original_source/kernel/src/vm.rs's seginit() and the
// Cpu.gdt field it fills in.
package gdt

import (
	"unsafe"

	"novakernel/internal/arch"
)

// Selector indices into the 6-entry GDT (spec §4.3).
const (
	SegNull = iota
	SegKCode
	SegKData
	SegUCode
	SegUData
	SegTSS
	NumSegs
)

// Descriptor privilege levels.
const (
	DPL_KERNEL = 0
	DPL_USER   = 3
)

// Segment descriptor type-field bits (Intel SDM segment descriptors).
const (
	stA  = 0x1 // accessed
	stRW = 0x2 // readable (code) / writable (data)
	stC  = 0x4 // conforming (code) / expand-down (data)
	stX  = 0x8 // executable

	sS    = 0x10 // descriptor type: 1 = code/data, 0 = system
	sDPL0 = 0 << 5
	sDPL3 = 3 << 5
	sP    = 0x80 // present

	sDB = 0x4 // 32-bit segment
	sG  = 0x8 // limit is in 4 KiB units
)

// Descriptor is one 8-byte GDT/LDT entry.
type Descriptor struct {
	LimitLow  uint16
	BaseLow   uint16
	BaseMid   uint8
	Access    uint8
	LimitHigh uint8 // low nibble: limit[19:16]; high nibble: flags
	BaseHigh  uint8
}

func flat(access uint8) Descriptor {
	return Descriptor{
		LimitLow:  0xFFFF,
		BaseLow:   0,
		BaseMid:   0,
		Access:    access,
		LimitHigh: 0xF | (sG|sDB)<<4,
		BaseHigh:  0,
	}
}

// TSS is the i386 task state segment. The kernel only ever touches
// SS0/ESP0 (the ring-0 stack to load on a privilege-level change) and
// IOMB (set past the segment limit so no I/O bitmap is consulted).
type TSS struct {
	Link                                   uint32
	ESP0                                   uint32
	SS0                                    uint32
	ESP1, SS1, ESP2, SS2                   uint32
	CR3, EIP, EFLAGS                       uint32
	EAX, ECX, EDX, EBX, ESP, EBP, ESI, EDI uint32
	ES, CS, SS, DS, FS, GS                 uint32
	LDT                                    uint32
	Trap                                   uint16
	IOMB                                   uint16
}

// GDT is a 6-entry, per-CPU global descriptor table.
type GDT struct {
	Entries [NumSegs]Descriptor
}

// Seginit fills in gdt's 6 flat segments and points its TSS entry at
// tss. It does not load the GDTR or TR: Load loads the GDTR, and the
// TR is loaded with arch.Ltr by cmd/kernel at boot and again by
// vm.UVM.Switch (done once per CPU, matching spec §4.3: "seginit (run
// on every CPU)").
func Seginit(g *GDT, tss *TSS) {
	g.Entries[SegNull] = Descriptor{}
	g.Entries[SegKCode] = flat(sP | sDPL0 | sS | stX | stRW)
	g.Entries[SegKData] = flat(sP | sDPL0 | sS | stRW)
	g.Entries[SegUCode] = flat(sP | sDPL3 | sS | stX | stRW)
	g.Entries[SegUData] = flat(sP | sDPL3 | sS | stRW)

	tssBase := uint32(uintptr(unsafe.Pointer(tss)))
	tssLimit := uint32(unsafe.Sizeof(*tss) - 1)
	g.Entries[SegTSS] = Descriptor{
		LimitLow:  uint16(tssLimit),
		BaseLow:   uint16(tssBase),
		BaseMid:   uint8(tssBase >> 16),
		Access:    sP | sDPL0 | stX | stA, // 32-bit TSS (available), not S
		LimitHigh: uint8(tssLimit>>16) & 0xF,
		BaseHigh:  uint8(tssBase >> 24),
	}
	tss.IOMB = 0xFFFF
}

// Load points the GDTR at g (spec §4.3: "seginit (run on every CPU)"
// loads the GDTR). It executes only lgdt and reloads no segment
// register. CS in particular is left alone: every CPU's GDT lays out
// SegKCode identically to the selector the boot transition into
// protected mode already loaded, so no far jump is needed to refresh
// it.
func Load(g *GDT) {
	var pd [6]byte
	limit := uint16(unsafe.Sizeof(*g) - 1)
	base := uint32(uintptr(unsafe.Pointer(g)))
	pd[0] = byte(limit)
	pd[1] = byte(limit >> 8)
	pd[2] = byte(base)
	pd[3] = byte(base >> 8)
	pd[4] = byte(base >> 16)
	pd[5] = byte(base >> 24)
	arch.Lgdt(unsafe.Pointer(&pd[0]))
}
