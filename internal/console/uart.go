// UART COM1 driver: 9600 baud, 8N1, no flow control. Grounded on
// original_source/kernel/src/uart.rs.
package console

import (
	"novakernel/internal/lapic"
	"novakernel/internal/lock"
)

const com1 = 0x03F8

var (
	uartMu  lock.Spinlock
	present bool
)

// InitUART programs the 16550 at COM1. If no UART answers (the line
// status register reads all-ones, the original's "status is 0xFF no
// serial port" check), output silently no-ops instead of hanging on a
// transmit-empty poll.
func InitUART() {
	outb(com1+2, 0) // disable FIFO

	outb(com1+3, 0x80)
	outb(com1+0, uint8(115200/9600))
	outb(com1+1, 0)
	outb(com1+3, 0x03)
	outb(com1+4, 0)
	outb(com1+1, 0x01) // enable RX interrupts

	if inb(com1+5) == 0xFF {
		return
	}
	present = true

	inb(com1 + 2) // acknowledge any pending interrupt
	inb(com1 + 0)
}

// PutcUART writes one byte to COM1, busy-waiting for the transmit
// holding register to empty.
func PutcUART(c byte) {
	uartMu.Lock()
	defer uartMu.Unlock()
	if !present {
		return
	}
	for inb(com1+5)&0x20 == 0 {
		lapic.Microdelay(10)
	}
	outb(com1+0, c)
}

// PutsUART writes s to COM1 one byte at a time.
func PutsUART(s string) {
	for i := 0; i < len(s); i++ {
		PutcUART(s[i])
	}
}

// GetcUART reads one pending RX byte, or (0, false) if none is ready.
// Called from the COM1 interrupt handler (spec §4.6: "drain UART RX").
func GetcUART() (byte, bool) {
	if !present {
		return 0, false
	}
	if inb(com1+5)&0x01 == 0 {
		return 0, false
	}
	return inb(com1 + 0), true
}
