// Package arch concentrates every inline-assembly primitive the
// kernel needs: port I/O, privileged control-register and descriptor-
// table loads, and the one atomic exchange the spinlock needs.
// Every function here is a thin typed wrapper around a single
// instruction; nothing outside this package writes assembly (spec §9).
//
// Grounded on original_source/utils/src/x86.rs, which defines the same
// primitive set as inline asm. No example repo in the retrieval pack
// contains a single Go assembly (.s) file, so the instruction
// selection below is new code translated from that Rust source into
// the Go/Plan 9 assembly idiom, not copied from any Go precedent.
//go:build 386

package arch

import "unsafe"

// Inb reads one byte from an I/O port.
func Inb(port uint16) uint8

// Outb writes one byte to an I/O port.
func Outb(port uint16, data uint8)

// Insl reads count doublewords from an I/O port into the memory at
// addr (used by the IDE driver to drain a sector's worth of data).
func Insl(port uint16, addr unsafe.Pointer, count int32)

// Outsl writes count doublewords from the memory at addr to an I/O
// port.
func Outsl(port uint16, addr unsafe.Pointer, count int32)

// Stosl stores count copies of data into the memory at addr (used to
// zero a freshly allocated page).
func Stosl(addr unsafe.Pointer, data uint32, count int32)

// Cli disables maskable interrupts.
func Cli()

// Sti enables maskable interrupts.
func Sti()

// ReadEflags returns the current EFLAGS register.
func ReadEflags() uint32

// Xchgl atomically stores newval into *addr and returns the previous
// value. This is the primitive the spinlock's test-and-set builds on.
func Xchgl(addr *uint32, newval uint32) uint32

// Lgdt loads the GDTR from a 6-byte pseudo-descriptor (limit:16,
// base:32).
func Lgdt(pd unsafe.Pointer)

// Lidt loads the IDTR from a 6-byte pseudo-descriptor.
func Lidt(pd unsafe.Pointer)

// Ltr loads the task register with a GDT selector.
func Ltr(sel uint16)

// Lcr3 loads CR3 (the page directory base register).
func Lcr3(val uint32)

// Rcr3 reads CR3.
func Rcr3() uint32

// Lcr0 loads CR0.
func Lcr0(val uint32)

// Rcr0 reads CR0.
func Rcr0() uint32

// Lcr4 loads CR4 (used to enable CR4.PSE for 4 MiB pages).
func Lcr4(val uint32)

// Rcr4 reads CR4.
func Rcr4() uint32

// Nop executes a single no-op instruction; used to pad delay loops
// waiting on device status.
func Nop()

// EflagsIF is the interrupt-enable flag bit in EFLAGS.
const EflagsIF = 0x00000200
