// Package limits tracks the system-wide resource ceilings spec §3
// implies (a fixed-capacity process table, bounded buffer cache,
// bounded open-file and inode-cache counts): the knobs that keep an
// unprivileged workload from exhausting kernel memory by opening
// pipes or vnodes without bound.
//
// Grounded on biscuit's limits/limits.go; Sysatomic_t's Give/Taken
// pair and the default Syslimit_t values are carried over directly,
// rescaled down from biscuit's multi-gigabyte defaults to the much
// smaller SPEC_FULL memory map this kernel runs in (see
// novakernel/internal/mmu's PHYSTOP).
package limits

import (
	"sync/atomic"
	"unsafe"
)

// Sysatomic_t is a resource counter that can be atomically taken from
// and given back to, so a shared limit can be enforced without a
// separate lock.
type Sysatomic_t int64

func (s *Sysatomic_t) aptr() *int64 { return (*int64)(unsafe.Pointer(s)) }

// Taken attempts to reserve n units of the resource. It reports
// whether the reservation succeeded (the counter did not go
// negative).
func (s *Sysatomic_t) Taken(n uint) bool {
	g := atomic.AddInt64(s.aptr(), -int64(n))
	if g >= 0 {
		return true
	}
	atomic.AddInt64(s.aptr(), int64(n))
	return false
}

// Take reserves a single unit.
func (s *Sysatomic_t) Take() bool { return s.Taken(1) }

// Given releases n units back to the resource.
func (s *Sysatomic_t) Given(n uint) {
	atomic.AddInt64(s.aptr(), int64(n))
}

// Give releases a single unit.
func (s *Sysatomic_t) Give() { s.Given(1) }

// Syslimit_t holds the configured system-wide resource ceilings.
type Syslimit_t struct {
	// Sysprocs bounds the process table; kept equal to proc.NProc so
	// the two can never disagree about how many processes fit.
	Sysprocs int
	// Vnodes bounds the live inode cache.
	Vnodes int
	// Pipes bounds outstanding pipe endpoints.
	Pipes Sysatomic_t
	// Blocks bounds the buffer cache, in blocks.
	Blocks int
}

// Syslimit holds the process-wide default limits.
var Syslimit = MkSysLimit()

// MkSysLimit returns a fresh set of default limits.
func MkSysLimit() *Syslimit_t {
	return &Syslimit_t{
		Sysprocs: 64,
		Vnodes:   4096,
		Pipes:    256,
		Blocks:   4096,
	}
}
