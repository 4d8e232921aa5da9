// Package kheap is the kernel's dynamic allocator: a linked-list
// first-fit heap layered over whatever virtual window internal/vm
// hands it. Unlike internal/pmm it operates purely on byte offsets
// within an arena a caller supplies (Init/Extend take a []byte), which
// keeps the allocation algorithm itself testable without a real MMU.
//
// No biscuit analogue exists (biscuit relies on the Go runtime's own
// allocator); this package's shape is grounded on spec §4.2 directly,
// using the same "struct wrapping container/list with its own
// spinlock" idiom biscuit's fs/blk.go BlkList_t uses for block lists.
package kheap

import (
	"container/list"

	"novakernel/internal/lock"
)

type freeBlock struct {
	off, size uintptr
}

// Heap is a first-fit allocator over one or more contiguous arenas.
type Heap struct {
	mu    lock.Spinlock
	arena []byte
	free  *list.List // of *freeBlock, address order
}

// Init seeds the heap with a single arena. The backing slice must
// remain valid for the heap's lifetime (in the kernel, it is backed
// by mapped virtual memory from internal/vm; kheap never allocates
// the arena itself).
func Init(arena []byte) *Heap {
	h := &Heap{arena: arena, free: list.New()}
	h.free.PushBack(&freeBlock{off: 0, size: uintptr(len(arena))})
	return h
}

// Extend grows the heap with additional contiguous memory immediately
// following the current arena (the caller is responsible for having
// actually mapped it).
func (h *Heap) Extend(more []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	base := uintptr(len(h.arena))
	h.arena = append(h.arena, more...)
	h.free.PushBack(&freeBlock{off: base, size: uintptr(len(more))})
}

// Alloc returns a slice of n bytes from the heap, or nil if no first-
// fit block is large enough.
func (h *Heap) Alloc(n uintptr) []byte {
	if n == 0 {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for e := h.free.Front(); e != nil; e = e.Next() {
		fb := e.Value.(*freeBlock)
		if fb.size < n {
			continue
		}
		off := fb.off
		if fb.size == n {
			h.free.Remove(e)
		} else {
			fb.off += n
			fb.size -= n
		}
		return h.arena[off : off+n : off+n]
	}
	return nil
}

// Free returns a block previously obtained from Alloc. It does not
// coalesce adjacent free blocks; that is a deliberate simplification
// matching the teaching scope (no general-purpose allocator
// fragmentation story is in scope here).
func (h *Heap) Free(b []byte) {
	if len(b) == 0 {
		return
	}
	off := uintptr(&b[0]) - uintptr(&h.arena[0])
	h.mu.Lock()
	defer h.mu.Unlock()
	h.free.PushBack(&freeBlock{off: off, size: uintptr(len(b))})
}

// FreeBytes reports how many bytes remain allocatable, for tests and
// diagnostics.
func (h *Heap) FreeBytes() uintptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	var total uintptr
	for e := h.free.Front(); e != nil; e = e.Next() {
		total += e.Value.(*freeBlock).size
	}
	return total
}
