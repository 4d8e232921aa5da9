// Package pic masks off the legacy 8259 programmable interrupt
// controllers entirely; this kernel routes every interrupt through
// the LAPIC/IOAPIC pair instead.
//
// Grounded on original_source/kernel/src/pic_irq.rs.
package pic

import "novakernel/internal/arch"

const (
	io_PIC1 = 0x20
	io_PIC2 = 0xA0
)

// Init masks both PICs (spec §4.3: "The 8259 PICs are masked off
// entirely").
func Init() {
	arch.Outb(io_PIC1+1, 0xFF)
	arch.Outb(io_PIC2+1, 0xFF)
}
