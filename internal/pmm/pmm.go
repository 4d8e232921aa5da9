// Package pmm is the physical frame allocator: a LIFO free list of
// 4 KiB frames, brought up in two phases because the bootstrap page
// directory only identity-maps the first 4 MiB.
//
// Grounded on original_source/kernel/src/kalloc.rs (a stub in the
// source; the free-list logic here is built from spec §4.2 directly)
// and biscuit's mem/mem.go Physmem_t, whose per-CPU refcounted
// multi-list design is simplified down to the single free list the
// spec calls for while keeping its Lock()/Unlock() spinlock idiom.
package pmm

import (
	"unsafe"

	"novakernel/internal/addr"
	"novakernel/internal/lock"
	"novakernel/internal/mmu"
)

// PoisonByte overwrites every freed frame, so that a dangling read
// sees an obviously-wrong pattern rather than stale data (spec §4.2).
const PoisonByte = 0x01

type freeFrame struct {
	next *freeFrame
}

// Allocator is a LIFO free list of physical page frames.
type Allocator struct {
	mu        lock.Spinlock
	freelist  *freeFrame
	kernelEnd addr.PA[byte]
	nfree     int
}

// New returns an allocator whose freed-frame floor is kernelEnd: any
// address below it (kernel image, boot structures) is never added to
// the free list even if it falls inside [start, end).
func New(kernelEnd addr.PA[byte]) *Allocator {
	return &Allocator{kernelEnd: kernelEnd}
}

// Init1 seeds the free list with frames in [start, end), called while
// the bootstrap identity map is the only mapping in effect, so start
// and end must lie within the first 4 MiB.
func (a *Allocator) Init1(start, end addr.PA[byte]) {
	if end.Raw() > mmu.Page4MSize {
		panic("pmm.Init1: range beyond bootstrap identity map")
	}
	a.freeRange(start, end)
}

// Init2 extends the free list with the remainder of physical memory
// up to PHYSTOP, called once KPG_DIR (the full kernel page directory)
// is active and the direct map covers all of physical memory.
func (a *Allocator) Init2(start, end addr.PA[byte]) {
	if end.Raw() > mmu.PHYSTOP {
		panic("pmm.Init2: range beyond PHYSTOP")
	}
	a.freeRange(start, end)
}

func (a *Allocator) freeRange(start, end addr.PA[byte]) {
	p := start.RoundUp(mmu.PageSize)
	for p.Raw()+mmu.PageSize <= end.Raw() {
		a.free(p)
		p = p.AddBytes(mmu.PageSize)
	}
}

// free pushes a single frame onto the list, after poisoning it and
// checking the invariants spec §4.2 names: addr >= kernel_end and
// v2p(addr) < PHYSTOP (expressed here directly in physical terms
// since free operates on physical addresses).
func (a *Allocator) free(pa addr.PA[byte]) {
	if pa.Raw()%mmu.PageSize != 0 {
		panic("pmm.free: unaligned frame")
	}
	if pa.Raw() < a.kernelEnd.Raw() {
		panic("pmm.free: frame below kernel end")
	}
	if pa.Raw() >= mmu.PHYSTOP {
		panic("pmm.free: frame at or above PHYSTOP")
	}

	va := mmu.P2V(pa)
	p := (*[mmu.PageSize]byte)(va.Ptr())
	for i := range p {
		p[i] = PoisonByte
	}

	a.mu.Lock()
	fr := (*freeFrame)(va.Ptr())
	fr.next = a.freelist
	a.freelist = fr
	a.nfree++
	a.mu.Unlock()
}

// Free returns a previously allocated frame to the pool.
func (a *Allocator) Free(pa addr.PA[byte]) { a.free(pa) }

// Alloc pops one frame from the free list, or reports ok=false if the
// allocator is exhausted. Non-initialization callers must handle
// ok=false (spec §7: "return an empty option; callers propagate or
// panic").
func (a *Allocator) Alloc() (pa addr.PA[byte], ok bool) {
	a.mu.Lock()
	fr := a.freelist
	if fr == nil {
		a.mu.Unlock()
		return addr.PA[byte]{}, false
	}
	a.freelist = fr.next
	a.nfree--
	a.mu.Unlock()

	va := addr.FromRawUnchecked[freeFrame, addr.Virtual](uintptr(unsafe.Pointer(fr)))
	pa = addr.Cast[byte](mmu.V2P(va))
	return pa, true
}

// NFree reports how many frames remain free, for diagnostics and
// tests (spec §8: "Allocating exactly PHYSTOP/PAGE_SIZE - kernel_pages
// frames succeeds; the next fails").
func (a *Allocator) NFree() int {
	a.mu.Lock()
	n := a.nfree
	a.mu.Unlock()
	return n
}
