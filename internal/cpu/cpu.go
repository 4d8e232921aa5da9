// Package cpu holds the per-CPU record and the nested-CLI accounting
// that internal/lock's spinlock builds on. It sits below both lock
// and proc in the import graph: lock needs push_cli/pop_cli and
// "which CPU am I", proc needs the CPU's scheduler context and
// current-process slot.
//
// Grounded on original_source/kernel/src/proc.rs's Cpu struct
// (apic_id, gdt, num_cli, int_enabled) and spec §3's "Per-CPU record".
package cpu

import (
	"novakernel/internal/gdt"
)

// MaxCPUs bounds the CPU array the same way the teacher lineage does;
// MP discovery never reports more processors than this on the target
// hardware class this kernel teaches against.
const MaxCPUs = 8

// Proc is the minimal view internal/cpu needs of a scheduled process;
// internal/proc's *Proc satisfies it. Kept as an interface here so
// that cpu does not import proc (which imports cpu and lock).
type Proc interface{}

// CPU is the per-processor kernel state: identity, its segment
// tables, and the interrupt-disable nesting depth that make
// push_cli/pop_cli safe to call recursively.
type CPU struct {
	ApicID      uint8
	Started     bool
	GDT         gdt.GDT
	TSS         gdt.TSS
	NumCli      int  // depth of nested push_cli calls
	IntEnabled  bool // were interrupts enabled before the first push_cli?
	CurrentProc Proc // process currently running on this CPU, if any
	Scheduler   Context
}

// Context is the callee-saved register set swapped by the hand
// written context switch (internal/proc's switchTo); kept here so both
// cpu and proc can refer to "the scheduler's own context" without an
// import cycle.
type Context struct {
	EDI, ESI, EBX, EBP, EIP uint32
}

var cpus [MaxCPUs]CPU
var ncpu int

// RegisterCPU appends a newly discovered CPU (called by internal/mp
// during MP table parsing). Safe only during single-threaded boot.
func RegisterCPU(apicID uint8) *CPU {
	if ncpu >= MaxCPUs {
		panic("cpu: too many CPUs")
	}
	cpus[ncpu] = CPU{ApicID: apicID}
	c := &cpus[ncpu]
	ncpu++
	return c
}

// NCPU returns the number of CPUs discovered so far.
func NCPU() int { return ncpu }

// All returns the slice of discovered CPUs.
func All() []CPU { return cpus[:ncpu] }

// lapicID reads the running CPU's local APIC ID. Installed through
// SetLapicIDFunc rather than imported, to avoid an import cycle (lapic
// depends on arch only; cpu would otherwise need to depend on lapic,
// which needs mmu/vm wiring that belongs above cpu in the dependency
// order).
var lapicID func() uint8

// SetLapicIDFunc installs the function used to read the current CPU's
// local APIC ID. Called once at boot: by internal/mp.Init with
// lapic.ID, or by cmd/kernel's single-CPU fallback when no MP table is
// found.
func SetLapicIDFunc(f func() uint8) { lapicID = f }

// Mine returns the calling CPU's record. Must be called with
// interrupts disabled, matching spec §3: "allowed only with
// interrupts disabled" since the APIC ID read and the linear search
// must not be preempted onto a different CPU mid-lookup.
func Mine() *CPU {
	if interruptsEnabled() {
		panic("cpu.Mine called with interrupts enabled")
	}
	if lapicID == nil {
		panic("cpu: lapic not initialized")
	}
	id := lapicID()
	for i := range cpus[:ncpu] {
		if cpus[i].ApicID == id {
			return &cpus[i]
		}
	}
	panic("cpu.Mine: no matching CPU record")
}

// PushCli disables interrupts, remembering the pre-call IF state only
// on the outermost call so that matched push/pop pairs nest. Grounded
// on original_source/kernel/src/spinlock.rs's push_cli/pop_cli.
func PushCli() {
	wasEnabled := interruptsEnabled()
	cli()
	c := Mine()
	if c.NumCli == 0 {
		c.IntEnabled = wasEnabled
	}
	c.NumCli++
}

// PopCli re-enables interrupts only when the outermost matching
// PushCli ran with interrupts already enabled, and only once the
// nesting depth returns to zero.
func PopCli() {
	if interruptsEnabled() {
		panic("cpu.PopCli: interrupts enabled on entry")
	}
	c := Mine()
	c.NumCli--
	if c.NumCli < 0 {
		panic("cpu.PopCli: unmatched pop")
	}
	if c.NumCli == 0 && c.IntEnabled {
		sti()
	}
}
