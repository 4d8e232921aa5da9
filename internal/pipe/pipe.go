// Package pipe implements the in-kernel anonymous pipe the pipe
// syscall hands back as a pair of file descriptors: a fixed-capacity
// ring buffer with blocking read/write, backing internal/fd.Fdops_i on
// both ends.
//
// Grounded on biscuit's src/circbuf/circbuf.go (the head/tail modulo-
// capacity ring arithmetic, Full/Empty/Left/Used) adapted from its
// Userio_i/mem.Page_i-backed design — a single physical page refcounted
// across address spaces, since biscuit processes are goroutines and a
// circbuf crosses user/kernel boundaries via copyin/copyout — to a
// plain kernel-heap byte slice: this kernel's syscall layer already
// copies each argument buffer between user and kernel memory before
// calling Fdops_i.Read/Write (see internal/syscall), so the pipe itself
// only ever sees kernel-side slices and needs no page-table awareness
// of its own. Blocking is grounded on original_source/kernel/src/
// proc.rs's sleep/wakeup contract, channel-keyed on the pipe's own
// address the same way internal/console's (absent) blocking read would
// be, per spec §4.5.
package pipe

import (
	"unsafe"

	"novakernel/internal/defs"
	"novakernel/internal/lock"
	"novakernel/internal/proc"
)

// capacity is the pipe's fixed backing-buffer size. xv6 uses one page
// (512 bytes here would starve a single large write); a full 4 KiB page
// keeps the common case of one read draining one write's worth of data
// in a single pass.
const capacity = 4096

// pipe is the shared state both ends of one pipe() call reference.
type pipe struct {
	lk lock.Spinlock

	buf        [capacity]byte
	head, tail int // head-tail is bytes buffered; both monotonically increasing

	readOpen, writeOpen int // live descriptor counts on each end
}

func (p *pipe) chanAddr() uintptr { return uintptr(unsafe.Pointer(p)) }

func (p *pipe) full() bool  { return p.head-p.tail == capacity }
func (p *pipe) empty() bool { return p.head == p.tail }

// New allocates a pipe and returns its read and write ends, each
// already wrapped in an internal/fd.Fdops_i implementation (spec
// §4.5's pipe syscall: "returns two descriptors, one readable one
// writable").
func New() (*ReadEnd, *WriteEnd) {
	p := &pipe{readOpen: 1, writeOpen: 1}
	return &ReadEnd{p: p}, &WriteEnd{p: p}
}

// ReadEnd is the readable half of a pipe.
type ReadEnd struct{ p *pipe }

// WriteEnd is the writable half of a pipe.
type WriteEnd struct{ p *pipe }

// Read blocks until at least one byte is available or every writer has
// closed its end, in which case it returns 0 bytes (EOF), matching
// xv6's piperead.
func (r *ReadEnd) Read(dst []byte) (int, defs.Err_t) {
	p := r.p
	p.lk.Lock()
	defer p.lk.Unlock()

	for p.empty() && p.writeOpen > 0 {
		proc.Sleep(p.chanAddr(), &p.lk)
	}
	if p.empty() {
		return 0, 0 // no writers left, no data left: EOF
	}

	n := 0
	for n < len(dst) && !p.empty() {
		dst[n] = p.buf[p.tail%capacity]
		p.tail++
		n++
	}
	proc.Wakeup(p.chanAddr()) // wake any writer blocked on a full buffer
	return n, 0
}

// Close drops this end's reference; once every reader has closed, a
// blocked writer is woken so it can observe EPIPE.
func (r *ReadEnd) Close() defs.Err_t {
	p := r.p
	p.lk.Lock()
	p.readOpen--
	p.lk.Unlock()
	proc.Wakeup(p.chanAddr())
	return 0
}

// Reopen bumps the read-end refcount, called when this descriptor is
// duplicated (dup, fork).
func (r *ReadEnd) Reopen() defs.Err_t {
	p := r.p
	p.lk.Lock()
	p.readOpen++
	p.lk.Unlock()
	return 0
}

// Write on a read end is never valid.
func (r *ReadEnd) Write([]byte) (int, defs.Err_t) { return 0, defs.EINVAL }

// Write blocks until the whole buffer is accepted or every reader has
// closed (EPIPE, reported here as EIO since this kernel does not carry
// a distinct EPIPE code), matching xv6's pipewrite.
func (w *WriteEnd) Write(src []byte) (int, defs.Err_t) {
	p := w.p
	p.lk.Lock()
	defer p.lk.Unlock()

	n := 0
	for n < len(src) {
		if p.readOpen == 0 {
			return n, defs.EIO
		}
		if p.full() {
			proc.Wakeup(p.chanAddr())
			proc.Sleep(p.chanAddr(), &p.lk)
			continue
		}
		p.buf[p.head%capacity] = src[n]
		p.head++
		n++
	}
	proc.Wakeup(p.chanAddr())
	return n, 0
}

// Read on a write end is never valid.
func (w *WriteEnd) Read([]byte) (int, defs.Err_t) { return 0, defs.EINVAL }

// Close drops this end's reference; once every writer has closed, a
// blocked reader is woken so it can observe EOF.
func (w *WriteEnd) Close() defs.Err_t {
	p := w.p
	p.lk.Lock()
	p.writeOpen--
	p.lk.Unlock()
	proc.Wakeup(p.chanAddr())
	return 0
}

// Reopen bumps the write-end refcount, called when this descriptor is
// duplicated (dup, fork).
func (w *WriteEnd) Reopen() defs.Err_t {
	p := w.p
	p.lk.Lock()
	p.writeOpen++
	p.lk.Unlock()
	return 0
}
