// Command kernel is the bootable kernel image: it owns the entry
// trampoline's Go-level continuation and brings up every subsystem in
// the fixed order spec §6 describes, then hands off to the scheduler.
//
// Grounded on original_source/kernel/src/main.rs's boot sequence
// (kalloc::init1, vm::kvmalloc, mp::init, lapic::init) carried to
// completion per spec §4.5/§4.9/§6 (the original stops at a todo!()
// once MP and the LAPIC are up), and on xv6's main.c/forkret ordering
// for where disk-backed filesystem init has to happen: forkret runs
// with a real process on the stack, which is the first point sleep-
// based IDE reads are safe to issue.
package main

import (
	"unsafe"

	"novakernel/internal/addr"
	"novakernel/internal/arch"
	"novakernel/internal/boot"
	"novakernel/internal/console"
	"novakernel/internal/cpu"
	"novakernel/internal/fs/bcache"
	"novakernel/internal/fs/ide"
	"novakernel/internal/fs/inode"
	"novakernel/internal/fs/super"
	"novakernel/internal/gdt"
	"novakernel/internal/ioapic"
	"novakernel/internal/kheap"
	"novakernel/internal/lapic"
	"novakernel/internal/mmu"
	"novakernel/internal/mp"
	"novakernel/internal/pmm"
	"novakernel/internal/proc"
	"novakernel/internal/profdev"
	"novakernel/internal/syscall"
	"novakernel/internal/trap"
	"novakernel/internal/vm"
)

// profileEnabled gates internal/profdev's timer-tick PC sampling. A
// freestanding image has no argv and no os.Args to parse a -profile
// flag from, so this stays a compile-time switch, the same way
// biscuit itself is configured (no CLI parsing observed anywhere in
// the pack): flip it and relink for a profiling build.
var profileEnabled = false

func init() {
	boot.SetMainHook(Main)
}

// heapArena backs the kernel heap. A real link would instead carve
// this out of the kernel's own bss past KernelEnd; a fixed array is
// the simplest thing that gives kheap.Init a contiguous byte slice
// without this package having to reason about which physical frames
// happen to be adjacent.
var heapArena [4 << 20]byte

// initCode stands in for the embedded init binary: producing that
// binary is cmd/chentry's and the userland init program's job, both
// named as out-of-scope external inputs by spec §2's Non-goals ("the
// userland init binary ... input: embedded image"). This is an
// infinite loop (jmp $-2) so a kernel booted without a real init image
// still has something harmless at user eip 0.
var initCode = []byte{0xEB, 0xFE}

// physMem maps a physical address range to a byte slice through the
// kernel's direct map, for internal/mp's MP-table scan.
func physMem(pa, length uint32) []byte {
	va := mmu.P2V(addr.FromRawUnchecked[byte, addr.Physical](uintptr(pa)))
	return unsafe.Slice((*byte)(va.Ptr()), int(length))
}

// Main is entry_386.s's Go-level continuation: paging is on, the
// bootstrap stack is live, nothing else is. It never returns.
func Main() {
	console.Init()
	console.InitUART()
	console.WriteString("booting\n")

	kernelEndVA := addr.FromRawUnchecked[byte, addr.Virtual](uintptr(unsafe.Pointer(&boot.KernelEnd)))
	kernelEndPA := mmu.V2P(kernelEndVA)
	fourMB := addr.FromRawUnchecked[byte, addr.Physical](uintptr(4 * 1024 * 1024))
	physTop := addr.FromRawUnchecked[byte, addr.Physical](uintptr(mmu.PHYSTOP))

	fa := pmm.New(kernelEndPA)
	fa.Init1(kernelEndPA, fourMB)

	dataStartVA := kernelEndVA.RoundUp(mmu.PageSize)
	kpgdir, ok := vm.SetupKVM(fa, uint32(dataStartVA.Raw()), mmu.PHYSTOP)
	if !ok {
		panic("kernel: out of memory building the kernel page directory")
	}
	vm.SwitchKVM(kpgdir)
	fa.Init2(fourMB, physTop)

	heap := kheap.Init(heapArena[:])

	haveMP := mp.Init(physMem)
	var bspID uint8
	if haveMP && cpu.NCPU() > 0 {
		lapic.Init()
		ioapic.Init()
		bspID = lapic.ID()
	} else {
		// No MP configuration table: fall back to a single, unnamed
		// CPU so cpu.Mine() still resolves. No LAPIC/IOAPIC means no
		// routed device interrupts; the filesystem stays unmounted.
		cpu.RegisterCPU(0)
		cpu.SetLapicIDFunc(func() uint8 { return 0 })
	}

	c := cpu.Mine()
	gdt.Seginit(&c.GDT, &c.TSS)
	gdt.Load(&c.GDT)
	arch.Ltr(uint16(gdt.SegTSS << 3))

	trap.Init()
	trap.IDTLoad()

	syscall.Init(heap, fa)

	handlers := trap.Handlers{
		Yield:   proc.Yield,
		Syscall: syscall.Dispatch,
		KillUser: func(tf *trap.TrapFrame) {
			if p, ok := cpu.Mine().CurrentProc.(*proc.Proc); ok {
				proc.Kill(p.PID())
			}
		},
	}
	if profileEnabled {
		profDev := profdev.New()
		handlers.ProfileSample = profDev.Sample
	}

	if haveMP {
		ide.Init(bspID)
		handlers.IDEIntr = ide.Intr

		proc.SetForkretHook(func() {
			bcache.Init()
			inode.Init(super.RootDev)
			if p, ok := cpu.Mine().CurrentProc.(*proc.Proc); ok {
				p.SetCwd(inode.Get(inode.RootDev, inode.RootIno))
			}
		})
	}
	trap.SetHandlers(handlers)

	dataStart := uint32(dataStartVA.Raw())
	proc.SetMemoryLayout(dataStart, mmu.PHYSTOP)
	if _, ok := proc.UserInit(heap, fa, dataStart, mmu.PHYSTOP, initCode, nil); !ok {
		panic("kernel: failed to create the first process")
	}

	proc.Scheduler(c, kpgdir)
}
