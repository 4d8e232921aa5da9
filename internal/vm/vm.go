// Package vm builds and tears down page directories: the kernel's own
// (setup_kvm/kvmalloc/switch_kvm) and each process's user address
// space (UVM).
//
// Grounded on original_source/kernel/src/vm.rs: map_pages's
// refuse-to-remap assertion, setup_kvm's four-region Kmap table,
// uvm::switch loading TSS ss0/esp0/iomb + ltr + lcr3, and free_vm's
// user-pages-then-tables-then-directory teardown order. The
// concurrency wrapper around the page directory (the pgfault-tracking
// lock) is kept from biscuit's vm/as.go Vm_t, adapted from x86_64
// four-level paging down to this kernel's i386 two-level scheme.
package vm

import (
	"novakernel/internal/addr"
	"novakernel/internal/arch"
	"novakernel/internal/gdt"
	"novakernel/internal/lock"
	"novakernel/internal/mmu"
)

// FrameAllocator is the subset of internal/pmm.Allocator that vm
// needs: a fresh page on demand. The page is not zeroed (pmm fills
// freed frames with its poison byte); every caller here clears or
// overwrites it. Declared as an interface so
// vm does not import pmm directly, matching the dependency order in
// spec §2 (vm sits above the allocator).
type FrameAllocator interface {
	Alloc() (addr.PA[byte], bool)
	Free(addr.PA[byte])
}

// PageDir is a process's or the kernel's page directory: 1024 PDEs,
// each either absent, a 4 MiB page, or pointing at a 1024-entry page
// table.
type PageDir struct {
	PA      addr.PA[mmu.PDE] // physical address of the directory itself
	entries *[mmu.NPDEntries]mmu.PDE
}

func pdeView(pa addr.PA[mmu.PDE]) *[mmu.NPDEntries]mmu.PDE {
	va := mmu.P2V(pa)
	return (*[mmu.NPDEntries]mmu.PDE)(va.Ptr())
}

// NewPageDir allocates and zeroes a fresh page directory frame.
func NewPageDir(fa FrameAllocator) (*PageDir, bool) {
	pa, ok := fa.Alloc()
	if !ok {
		return nil, false
	}
	ppd := addr.Cast[mmu.PDE](pa)
	pd := &PageDir{PA: ppd, entries: pdeView(ppd)}
	for i := range pd.entries {
		pd.entries[i] = 0
	}
	return pd, true
}

// WalkPageDir returns a pointer to the PTE mapping va, allocating the
// subordinate page table on demand when alloc is true. It returns nil
// if the table is absent and alloc is false, or if allocation fails.
func WalkPageDir(fa FrameAllocator, pd *PageDir, va uint32, alloc bool) *mmu.PTE {
	pdx := mmu.PDX(va)
	ptx := mmu.PTX(va)

	pde := &pd.entries[pdx]
	var pt *[mmu.NPTEntries]mmu.PTE
	if pde.Present() {
		if pde.Is4MiB() {
			panic("vm.WalkPageDir: va falls under a 4 MiB PDE")
		}
		pt = (*[mmu.NPTEntries]mmu.PTE)(mmu.P2V(addr.FromRawUnchecked[mmu.PTE, addr.Physical](uintptr(pde.Addr()))).Ptr())
	} else {
		if !alloc {
			return nil
		}
		pa, ok := fa.Alloc()
		if !ok {
			return nil
		}
		ppt := addr.Cast[mmu.PTE](pa)
		pt = (*[mmu.NPTEntries]mmu.PTE)(mmu.P2V(ppt).Ptr())
		for i := range pt {
			pt[i] = 0
		}
		*pde = mmu.MakePDE(uint32(ppt.Raw()), mmu.PTE_P|mmu.PTE_W|mmu.PTE_U)
	}
	return &pt[ptx]
}

// MapPages maps the size bytes starting at va to the physical range
// starting at pa, size must be a multiple of PAGE_SIZE. It panics on
// an attempt to remap an already-present page (spec §4.1: "refusing
// to remap an already-present entry (fatal)").
func MapPages(fa FrameAllocator, pd *PageDir, va uint32, size uint32, pa uint32, perm uint32) {
	if size == 0 {
		return
	}
	start := va &^ (mmu.PageSize - 1)
	last := (va + size - 1) &^ (mmu.PageSize - 1)
	a := start
	p := pa
	for {
		pte := WalkPageDir(fa, pd, a, true)
		if pte == nil {
			panic("vm.MapPages: out of memory for page table")
		}
		if pte.Present() {
			panic("vm.MapPages: remap")
		}
		*pte = mmu.MakePTE(p, perm|mmu.PTE_P)
		if a == last {
			break
		}
		a += mmu.PageSize
		p += mmu.PageSize
	}
}

// Translate walks pd and returns the physical address va maps to and
// whether it is present, without allocating.
func Translate(pd *PageDir, va uint32) (pa uint32, perm uint32, ok bool) {
	pdx := mmu.PDX(va)
	pde := pd.entries[pdx]
	if !pde.Present() {
		return 0, 0, false
	}
	if pde.Is4MiB() {
		offset := va & (mmu.Page4MSize - 1)
		return pde.Addr() + offset, pde.Flags(), true
	}
	pt := (*[mmu.NPTEntries]mmu.PTE)(mmu.P2V(addr.FromRawUnchecked[mmu.PTE, addr.Physical](uintptr(pde.Addr()))).Ptr())
	pte := pt[mmu.PTX(va)]
	if !pte.Present() {
		return 0, 0, false
	}
	return pte.Addr() + (va & (mmu.PageSize - 1)), pte.Flags(), true
}

// region is one entry in the kernel's static memory map.
type region struct {
	va, pa, size, perm uint32
}

// SetupKVM builds the full kernel page directory with the four
// regions spec §4.1 names: the low-memory I/O hole, kernel text+
// rodata (read-only), kernel data+frames, and the device window.
func SetupKVM(fa FrameAllocator, dataStart, physTop uint32) (*PageDir, bool) {
	pd, ok := NewPageDir(fa)
	if !ok {
		return nil, false
	}
	kmap := []region{
		{mmu.KERNBASE, 0, mmu.EXTMEM, mmu.PTE_W},
		{mmu.KERNLINK, mmu.KERNLINK - mmu.KERNBASE, dataStart - mmu.KERNLINK, 0},
		{dataStart, dataStart - mmu.KERNBASE, physTop - (dataStart - mmu.KERNBASE), mmu.PTE_W},
		{mmu.DEVSPACE, mmu.DEVSPACE, 0 - mmu.DEVSPACE, mmu.PTE_W},
	}
	for _, r := range kmap {
		MapPages(fa, pd, r.va, r.size, r.pa, r.perm)
	}
	return pd, true
}

// SwitchKVM loads CR3 with the kernel's own page directory, dropping
// any process mapping (and the bootstrap 4 MiB identity map, the
// first time it is called).
func SwitchKVM(pd *PageDir) {
	arch.Lcr3(uint32(pd.PA.Raw()))
}

// UVM groups the user-address-space operations: loading the first
// process's code, switching TSS/CR3 on context switch, and tearing
// the space down.
type UVM struct{}

// Init maps code (which must be smaller than one page for the
// embedded init binary, matching spec §4.5's "user page at VA 0") at
// virtual address 0 in pd.
func (UVM) Init(fa FrameAllocator, pd *PageDir, code []byte) bool {
	if len(code) > mmu.PageSize {
		panic("vm.UVM.Init: init binary larger than one page")
	}
	pa, ok := fa.Alloc()
	if !ok {
		return false
	}
	dst := (*[mmu.PageSize]byte)(mmu.P2V(pa).Ptr())
	for i := range dst {
		dst[i] = 0
	}
	copy(dst[:], code)
	MapPages(fa, pd, 0, mmu.PageSize, uint32(pa.Raw()), mmu.PTE_W|mmu.PTE_U)
	return true
}

// Switch loads the per-process TSS fields and CR3 for p's address
// space, so that a privilege-level change during this process's next
// trap lands on its kernel stack (spec §4.5 step 4: "switch_uvm(p)
// loads the per-process TSS fields and CR3").
func (UVM) Switch(g *gdt.GDT, tss *gdt.TSS, pd *PageDir, kstackTop uint32) {
	_ = g
	tss.SS0 = uint32(gdt.SegKData) << 3
	tss.ESP0 = kstackTop
	tss.IOMB = 0xFFFF
	arch.Ltr(uint16(gdt.SegTSS << 3))
	arch.Lcr3(uint32(pd.PA.Raw()))
}

// Dealloc unmaps every page in [oldsz, newsz) from pd, freeing the
// backing frames, and returns the new size. It is the shrink half of
// the allocator the spec's Non-goals exclude the grow half of (no
// demand paging; growth is a fixed, one-shot mapping).
func (UVM) Dealloc(fa FrameAllocator, pd *PageDir, oldsz, newsz uint32) uint32 {
	if newsz >= oldsz {
		return oldsz
	}
	a := (newsz + mmu.PageSize - 1) &^ (mmu.PageSize - 1)
	for ; a < oldsz; a += mmu.PageSize {
		pte := WalkPageDir(fa, pd, a, false)
		if pte == nil || !pte.Present() {
			continue
		}
		pa := addr.FromRawUnchecked[byte, addr.Physical](uintptr(pte.Addr()))
		fa.Free(pa)
		*pte = 0
	}
	return newsz
}

// FreeVM deallocates every user page, then every subordinate
// page-table frame, then the directory frame itself (spec §8
// end-to-end scenario 6 and §4.1's free_vm description).
func FreeVM(fa FrameAllocator, pd *PageDir, usersz uint32) {
	if usersz > 0 {
		UVM{}.Dealloc(fa, pd, usersz, 0)
	}
	for pdx := uint32(0); pdx < mmu.NPDEntries; pdx++ {
		pde := pd.entries[pdx]
		if !pde.Present() || pde.Is4MiB() {
			continue
		}
		pa := addr.FromRawUnchecked[byte, addr.Physical](uintptr(pde.Addr()))
		fa.Free(pa)
	}
	fa.Free(addr.Cast[byte](pd.PA))
}

// Copy builds a fresh address space with the same kernel mapping as
// every other process (dataStart/physTop, matching SetupKVM) and a
// page-for-page copy of old's user range [0, sz) (spec §4.5's fork:
// "allocates a child process ... copies the parent's memory"). Used
// by internal/proc.Fork; returns false (freeing whatever partial copy
// was made) on the first allocation failure.
func Copy(fa FrameAllocator, old *PageDir, dataStart, physTop, sz uint32) (*PageDir, bool) {
	newpd, ok := SetupKVM(fa, dataStart, physTop)
	if !ok {
		return nil, false
	}
	for va := uint32(0); va < sz; va += mmu.PageSize {
		pa, perm, ok := Translate(old, va)
		if !ok {
			FreeVM(fa, newpd, va)
			return nil, false
		}
		npa, ok := fa.Alloc()
		if !ok {
			FreeVM(fa, newpd, va)
			return nil, false
		}
		src := (*[mmu.PageSize]byte)(mmu.P2V(addr.FromRawUnchecked[byte, addr.Physical](uintptr(pa))).Ptr())
		dst := (*[mmu.PageSize]byte)(mmu.P2V(npa).Ptr())
		*dst = *src
		MapPages(fa, newpd, va, mmu.PageSize, uint32(npa.Raw()), perm)
	}
	return newpd, true
}

// Space serializes concurrent page-fault handling for a single
// address space, kept from biscuit's vm/as.go Vm_t shape (a lock that
// travels with the page directory rather than living in a global
// table), though this kernel's Non-goals exclude demand paging so no
// fault handler currently takes it; it exists for the Dealloc/MapPages
// mutation path shared across threads of the same process.
type Space struct {
	Dir  *PageDir
	Size uint32
	lk   lock.Spinlock
}

func (s *Space) Lock()   { s.lk.Lock() }
func (s *Space) Unlock() { s.lk.Unlock() }
