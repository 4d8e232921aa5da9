package syscall

import (
	"unsafe"

	"novakernel/internal/proc"
	"novakernel/internal/trap"
)

// User-space argument fetching. A syscall's user-mode stub (xv6's
// usys.S idiom) calls into the kernel with `int 0x40` rather than a
// normal `call`, so no argument register-passing convention applies:
// the arguments are wherever the C calling convention already put them
// on the user stack before the trap, just above the return address
// alltraps's hardware-pushed esp records in tf.ESP.
//
// The process whose trap this is stays the one loaded in CR3 for the
// whole time Dispatch runs (no context switch happens until the
// handler returns), so a user virtual address can be read or written
// directly as a Go pointer — the same direct-dereference trick
// trap.disasmFault uses for a kernel-mode fault's eip.

// uaddrOK reports whether [va, va+n) lies within a size-byte mapped
// user address space starting at 0, rejecting an out-of-bounds or
// wraparound argument before it's dereferenced. Takes the bound as a
// plain uint32 (rather than a *proc.Proc) so it can be exercised
// directly in a hosted test; every call site below passes p.Size().
func uaddrOK(size, va, n uint32) bool {
	if n > size || va > size-n {
		return false
	}
	return true
}

// argInt fetches the n'th 32-bit argument from the user stack above
// tf's saved esp (arg 0 is the first word above the return address).
func argInt(p *proc.Proc, tf *trap.TrapFrame, n int) (int32, bool) {
	addr := tf.ESP + 4 + uint32(n)*4
	if !uaddrOK(p.Size(), addr, 4) {
		return 0, false
	}
	return int32(*(*uint32)(unsafe.Pointer(uintptr(addr)))), true
}

// argStr fetches the n'th argument as a user pointer, then copies a
// NUL-terminated string out of user memory (capped at maxPath to bound
// the scan).
const maxPath = 128

func argStr(p *proc.Proc, tf *trap.TrapFrame, n int) (string, bool) {
	raw, ok := argInt(p, tf, n)
	if !ok {
		return "", false
	}
	va := uint32(raw)
	for i := uint32(0); i < maxPath; i++ {
		if !uaddrOK(p.Size(), va+i, 1) {
			return "", false
		}
		b := *(*byte)(unsafe.Pointer(uintptr(va + i)))
		if b == 0 {
			return string(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(va))), i)), true
		}
	}
	return "", false
}

// copyin copies len(dst) bytes from user address va into dst.
func copyin(p *proc.Proc, va uint32, dst []byte) bool {
	if !uaddrOK(p.Size(), va, uint32(len(dst))) {
		return false
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(va))), len(dst))
	copy(dst, src)
	return true
}

// copyout copies src into user address va.
func copyout(p *proc.Proc, va uint32, src []byte) bool {
	if !uaddrOK(p.Size(), va, uint32(len(src))) {
		return false
	}
	dst := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(va))), len(src))
	copy(dst, src)
	return true
}

// putInt writes a single 32-bit word to user address va, used for
// out-parameters like wait's status pointer and pipe's fd pair.
func putInt(p *proc.Proc, va uint32, v int32) bool {
	if !uaddrOK(p.Size(), va, 4) {
		return false
	}
	*(*uint32)(unsafe.Pointer(uintptr(va))) = uint32(v)
	return true
}
