// Package lapic programs the local APIC: the periodic timer, EOI,
// inter-processor interrupts, and the startup-IPI sequence that wakes
// application processors.
//
// Grounded on original_source/kernel/src/lapic.rs: the register enum,
// the exact Init() sequence (SVR, TDCR, TIMER, TICR, LINT0/1 masking,
// ESR/EOI acks, broadcast INIT level-deassert, TPR=0), and
// start_ap()'s universal-startup-algorithm AP bring-up (CMOS shutdown
// code, warm-reset vector at 0x40:0x67, INIT then two STARTUP IPIs).
package lapic

import (
	"unsafe"
)

// Register offsets into the LAPIC MMIO page, in units of uint32 words
// (each register occupies 16 bytes of MMIO space but only the first
// word is meaningful).
type reg uint32

const (
	regID      reg = 0x0020 / 4
	regVER     reg = 0x0030 / 4
	regTPR     reg = 0x0080 / 4
	regEOI     reg = 0x00B0 / 4
	regSVR     reg = 0x00F0 / 4
	regESR     reg = 0x0280 / 4
	regICRLO   reg = 0x0300 / 4
	regICRHI   reg = 0x0310 / 4
	regTIMER   reg = 0x0320 / 4
	regPCINT   reg = 0x0340 / 4
	regLINT0   reg = 0x0350 / 4
	regLINT1   reg = 0x0360 / 4
	regERROR   reg = 0x0370 / 4
	regTICR    reg = 0x0380 / 4
	regTCCR    reg = 0x0390 / 4
	regTDCR    reg = 0x03E0 / 4
)

const (
	enable   = 0x00000100
	initCmd  = 0x00000500
	startup  = 0x00000600
	delivs   = 0x00001000
	assert   = 0x00004000
	deassert = 0x00000000
	level    = 0x00008000
	bcast    = 0x00080000
	busy     = 0x00001000
	fixed    = 0x00000000
	x1       = 0x0000000B
	periodic = 0x00020000
	masked   = 0x00010000
)

// IRQ vector this kernel routes the LAPIC timer to (T_IRQ0+IRQ_TIMER
// is assigned by internal/trap; lapic only needs the raw vector
// number to arm the timer LVT entry).
var TimerVector uint32 = 32 // T_IRQ0+IRQ_TIMER
var ErrorVector uint32 = 51 // T_IRQ0+IRQ_ERROR

var base *[1024]uint32

// SetBase records the LAPIC MMIO base. Called once by internal/mp
// with the base published in the MP configuration table.
func SetBase(p unsafe.Pointer) {
	base = (*[1024]uint32)(p)
}

func read(r reg) uint32  { return base[r] }
func write(r reg, v uint32) {
	base[r] = v
	_ = base[regID] // wait for write to complete, matching the source's read-after-write idiom
}

// ID returns the running CPU's local APIC ID.
func ID() uint8 {
	return uint8(read(regID) >> 24)
}

// Init brings up the local APIC on the calling CPU: timer, LINT
// masking, error vector, and TPR. Grounded step-for-step on lapic.rs.
func Init() {
	write(regSVR, enable|63) // spurious vector T_IRQ0+IRQ_SPURIOUS (63) in low byte, enable bit set
	write(regTDCR, x1)
	write(regTIMER, periodic|TimerVector)
	write(regTICR, 10000000)

	write(regLINT0, masked)
	write(regLINT1, masked)

	if uint8(read(regVER)>>16) >= 4 {
		write(regPCINT, masked)
	}

	write(regERROR, ErrorVector)

	write(regESR, 0)
	write(regESR, 0)

	write(regEOI, 0)

	write(regICRHI, 0)
	write(regICRLO, bcast|initCmd|level)
	for read(regICRLO)&delivs != 0 {
	}

	write(regTPR, 0)
}

// EOI acknowledges the current interrupt.
func EOI() { write(regEOI, 0) }

// startIPI sends one IPI with the given command word (destination
// APIC ID in icrhi, command in icrlo), busy-waiting for delivery.
func startIPI(apicID uint8, cmd uint32) {
	write(regICRHI, uint32(apicID)<<24)
	write(regICRLO, cmd)
	for read(regICRLO)&delivs != 0 {
	}
}

// StartAP wakes an application processor at physical address addr
// (which must be page-aligned and below 1 MiB, since real-mode code
// runs there), following the Intel universal startup algorithm: INIT,
// a brief delay, then two STARTUP IPIs.
//
// Grounded on lapic.rs's start_ap(): CMOS port 0x70/0x71 shutdown code
// and the warm-reset vector at 0x40:0x67 are the BIOS-compatibility
// dance that makes the AP jump to addr after RESET#.
func StartAP(apicID uint8, addr uint32) {
	const cmosPort, cmosData = 0x70, 0x71
	const warmResetVector = 0x467

	outb(cmosPort, 0xF) // offset 0xF, shutdown status byte
	outb(cmosData, 0x0A)

	wrv := (*[4]uint16)(unsafe.Pointer(uintptr(warmResetVector)))
	wrv[0] = 0
	wrv[1] = uint16(addr >> 4)

	startIPI(apicID, initCmd|level|assert)
	microdelay(200)
	startIPI(apicID, initCmd|level)
	microdelay(100)

	for i := 0; i < 2; i++ {
		startIPI(apicID, startup|(addr>>12))
		microdelay(200)
	}
}

func microdelay(us int) {
	for i := 0; i < us*100; i++ {
		nop()
	}
}

// Microdelay busy-waits roughly us microseconds. Exported for drivers
// outside this package that need the same crude spin-delay (the
// original's uart.rs calls lapic::micro_delay while polling the
// transmit-empty bit).
func Microdelay(us int) { microdelay(us) }
