// Package ioapic programs the I/O APIC's interrupt redirection table:
// every IRQ starts masked and is explicitly routed by internal/trap's
// device drivers via Enable.
//
// Grounded on original_source/kernel/src/ioapic.rs.
package ioapic

import "unsafe"

const (
	mmioBase = 0xFEC00000 // spec §6: "IOAPIC MMIO at 0xFEC00000"

	regID    = 0x00
	regVER   = 0x01
	regTable = 0x10 // redirection table entries start here, 2 words each

	intDisabled = 0x00010000
	intLevel    = 0x00008000 // unused: this kernel always routes edge-triggered
)

type regs struct {
	regsel uint32
	_      [3]uint32
	win    uint32
}

var io *regs

// ID is the I/O APIC's ID, published by internal/mp after it parses
// the MP configuration table's IOAPIC entry.
var ID uint8

func read(r uint32) uint32 {
	io.regsel = r
	return io.win
}

func write(r uint32, v uint32) {
	io.regsel = r
	io.win = v
}

// Init masks and de-routes every IRQ (spec §4.3: "IOAPIC init disables
// and deroutes all IRQs").
func Init() {
	io = (*regs)(unsafe.Pointer(uintptr(mmioBase)))

	maxintr := (read(regVER) >> 16) & 0xFF
	id := uint8(read(regID) >> 24)
	if id != ID {
		// The MP table and the IOAPIC's own ID register disagree;
		// the hardware register is authoritative, matching the source.
		ID = id
	}

	for i := uint32(0); i <= maxintr; i++ {
		write(regTable+2*i, intDisabled|(32+i))
		write(regTable+2*i+1, 0)
	}
}

// Enable routes irq, edge-triggered and active-high, to the given
// CPU's local APIC ID (spec §4.3).
func Enable(irq uint32, apicID uint8) {
	write(regTable+2*irq, 32+irq)
	write(regTable+2*irq+1, uint32(apicID)<<24)
}
