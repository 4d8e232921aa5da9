// Package trap builds the interrupt descriptor table, defines the
// trap frame layout the entry stubs produce, and dispatches every
// trap and device interrupt to its handler.
//
// Grounded on original_source/kernel/src/trap.rs: the vector numbers,
// the IDT fill loop with T_SYSCALL singled out as a user-reachable
// trap gate, and the TrapFrame field order (pusha order, then
// segment registers, then trap_no/err, then the hardware-pushed
// eip/cs/eflags[/esp/ss]).
package trap

import (
	"fmt"
	"unsafe"

	"golang.org/x/arch/x86/x86asm"

	"novakernel/internal/gdt"
	"novakernel/internal/ioapic"
	"novakernel/internal/lapic"
	"novakernel/internal/lock"
)

// Vector numbers (spec §4.6 and original_source/kernel/src/trap.rs).
const (
	T_SYSCALL = 64
	T_DEFAULT = 500

	T_IRQ0 = 32

	IRQ_TIMER    = 0
	IRQ_KBD      = 1
	IRQ_COM1     = 4
	IRQ_IDE      = 14
	IRQ_ERROR    = 19
	IRQ_SPURIOUS = 31
)

// IDT gate descriptor types.
const (
	gateIntr32 = 0xE // 32-bit interrupt gate
	gateTrap32 = 0xF // 32-bit trap gate (does not clear IF)

	gateP = 0x80
)

// GateDesc is one 8-byte IDT entry.
type GateDesc struct {
	OffsetLow  uint16
	Selector   uint16
	_          uint8
	TypeAttr   uint8
	OffsetHigh uint16
}

func setGate(g *GateDesc, istrap bool, selector uint16, offset uint32, dpl uint8) {
	typ := gateIntr32
	if istrap {
		typ = gateTrap32
	}
	g.OffsetLow = uint16(offset)
	g.OffsetHigh = uint16(offset >> 16)
	g.Selector = selector
	g.TypeAttr = gateP | (dpl&0x3)<<5 | uint8(typ)
}

var idt [256]GateDesc

// Vectors is the per-vector entry-stub address table, filled in at
// package initialization by vectors_386.go from the 386-only stubs in
// vectors_386.s. On hosted
// builds (tests on a non-386 GOARCH) it stays nil; Init is never
// called from those builds.
var Vectors [256]uintptr

// Init builds the shared IDT (spec §4.3/§4.6: "the IDT itself is
// built once at boot"). It must run before any CPU calls IDTLoad.
func Init() {
	for i := 0; i < 256; i++ {
		setGate(&idt[i], false, uint16(gdt.SegKCode<<3), uint32(Vectors[i]), gdt.DPL_KERNEL)
	}
	setGate(&idt[T_SYSCALL], true, uint16(gdt.SegKCode<<3), uint32(Vectors[T_SYSCALL]), gdt.DPL_USER)
}

// IDTLoad loads this CPU's IDTR to point at the shared IDT (spec
// §4.3: "idt_init (per CPU) loads the IDT"). The pseudo-descriptor is
// built as a raw 6-byte array rather than a Go struct because the
// hardware format (a 16-bit limit immediately followed by a 32-bit
// base, unaligned) does not match Go's struct field alignment rules.
func IDTLoad() {
	var pd [6]byte
	limit := uint16(unsafe.Sizeof(idt) - 1)
	base := uint32(uintptr(unsafe.Pointer(&idt[0])))
	pd[0] = byte(limit)
	pd[1] = byte(limit >> 8)
	pd[2] = byte(base)
	pd[3] = byte(base >> 8)
	pd[4] = byte(base >> 16)
	pd[5] = byte(base >> 24)
	lidt(unsafe.Pointer(&pd[0]))
}

// TrapFrame is the exact stack layout alltraps produces: pusha order,
// then segment registers (each padded to 32 bits), then trap_no/err,
// then the hardware-pushed eip/cs/eflags and, when crossing rings,
// esp/ss (spec §3 "Trap frame").
type TrapFrame struct {
	EDI, ESI, EBP, OrigESP uint32
	EBX, EDX, ECX, EAX     uint32

	GS, _ uint16
	FS, _ uint16
	ES, _ uint16
	DS, _ uint16

	TrapNo uint32

	Err     uint32
	EIP     uint32
	CS, _   uint16
	EFLAGS  uint32

	ESP     uint32
	SS, _   uint16
}

// Handlers grouped by concern, installed by the subsystems that own
// them so package trap doesn't need to import proc/fs directly
// (mirrors internal/cpu and internal/lock's late-binding pattern).
type Handlers struct {
	Syscall   func(tf *TrapFrame) uint32
	TimerTick func()
	IDEIntr   func()
	KbdIntr   func()
	ComIntr   func()
	KillUser  func(tf *TrapFrame)
	Yield     func()
	// ProfileSample, if set, is called with the interrupted eip on
	// every timer tick (internal/profdev's developer-debug path).
	ProfileSample func(eip uint32)
}

var h Handlers

// SetHandlers installs the subsystem callbacks. Must be called before
// any interrupt can fire.
func SetHandlers(hh Handlers) { h = hh }

var ticksLock lock.Spinlock
var ticks uint32

// Ticks returns the current tick count (spec §4.6: "advance a global
// tick counter under its spinlock").
func Ticks() uint32 {
	ticksLock.Lock()
	defer ticksLock.Unlock()
	return ticks
}

// Dispatch is the Go side of the common trap entry point. The
// assembly alltraps stub passes it a pointer to the TrapFrame it just
// built on the current stack.
func Dispatch(tf *TrapFrame) {
	switch tf.TrapNo {
	case T_IRQ0 + IRQ_TIMER:
		ticksLock.Lock()
		ticks++
		ticksLock.Unlock()
		if h.TimerTick != nil {
			h.TimerTick()
		}
		if h.ProfileSample != nil {
			h.ProfileSample(tf.EIP)
		}
		lapic.EOI()
		if fromUser(tf) && h.Yield != nil {
			h.Yield()
		}
		return
	case T_IRQ0 + IRQ_IDE:
		if h.IDEIntr != nil {
			h.IDEIntr()
		}
		lapic.EOI()
		return
	case T_IRQ0 + IRQ_KBD:
		if h.KbdIntr != nil {
			h.KbdIntr()
		}
		lapic.EOI()
		return
	case T_IRQ0 + IRQ_COM1:
		if h.ComIntr != nil {
			h.ComIntr()
		}
		lapic.EOI()
		return
	case T_IRQ0 + IRQ_SPURIOUS:
		lapic.EOI()
		return
	case T_SYSCALL:
		if h.Syscall != nil {
			tf.EAX = h.Syscall(tf)
		}
		return
	}

	if fromUser(tf) {
		if h.KillUser != nil {
			h.KillUser(tf)
		}
		return
	}
	panic(fmt.Sprintf("trap: unexpected trap %d eip %#x: %s", tf.TrapNo, tf.EIP, disasmFault(tf.EIP)))
}

// disasmFault decodes the instruction at eip for a panic message, the
// same "print what's at the fault" instinct caller.Dump applies to a
// Go call stack. Reads directly through eip as a pointer: by the time
// Dispatch runs, the kernel's own code and data are identity- or
// direct-mapped in every address space, so a kernel-mode fault's eip
// is always dereferenceable here.
func disasmFault(eip uint32) string {
	code := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(eip))), 16)
	inst, err := x86asm.Decode(code, 32)
	if err != nil {
		return fmt.Sprintf("(undecodable: %v)", err)
	}
	return inst.String()
}

func fromUser(tf *TrapFrame) bool {
	return tf.CS&0x3 == gdt.DPL_USER
}

// enableIRQ forwards to ioapic.Enable.
func enableIRQ(irq uint32, apicID uint8) {
	ioapic.Enable(irq, apicID)
}

// EnableIRQ routes irq to the CPU whose LAPIC ID is bootApicID (spec
// §4.3: every IRQ starts masked; drivers explicitly route their own).
// The only driver, internal/fs/ide, calls ioapic.Enable directly
// rather than this function.
func EnableIRQ(irq uint32, bootApicID uint8) {
	enableIRQ(irq, bootApicID)
}
