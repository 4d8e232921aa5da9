// Package lock provides the kernel's two blocking primitives:
// an interrupt-aware spinlock, and a sleep lock layered over it and
// the scheduler's sleep/wakeup channel.
//
// Grounded on original_source/kernel/src/spinlock.rs and lock.rs
// (reorganized into spin/sleep submodules in the original; kept as
// one package here since both are small and tightly coupled, matching
// how biscuit's own locks travel with the data structure they guard
// rather than living in a single lock package).
package lock

import (
	"fmt"
	"unsafe"

	"novakernel/internal/cpu"
)

// Spinlock is a interrupt-safe mutual exclusion lock: acquiring it
// disables interrupts on the current CPU (via nested push_cli) for
// the duration of the critical section, and it refuses re-entry by
// the CPU that already holds it.
//
// The zero value is an unlocked spinlock; Name is set for panic
// messages, matching the source's "named" locks used throughout
// trap/bcache/icache/ptable.
type Spinlock struct {
	Name   string
	locked uint32
	holder *cpu.CPU
}

// Holding reports whether the calling CPU currently holds l. Must be
// called with interrupts disabled (the same discipline as Mine()).
func (l *Spinlock) Holding() bool {
	return l.locked != 0 && l.holder == cpu.Mine()
}

// Lock acquires the spinlock, spinning until it's free. Re-entry by
// the same CPU is a fatal assertion, matching the source's acquire().
func (l *Spinlock) Lock() {
	cpu.PushCli()
	if l.Holding() {
		panic(fmt.Sprintf("spinlock %q: already held by this CPU", l.Name))
	}
	for xchgl(&l.locked, 1) != 0 {
		// spin
	}
	l.holder = cpu.Mine()
}

// Unlock releases the spinlock.
func (l *Spinlock) Unlock() {
	if !l.Holding() {
		panic(fmt.Sprintf("spinlock %q: release by non-holder", l.Name))
	}
	l.holder = nil
	xchgl(&l.locked, 0)
	cpu.PopCli()
}

// waiter decouples Sleeplock (and anything else that needs to block)
// from internal/proc, which in turn depends on lock for Spinlock.
// internal/proc installs the real implementation via SetScheduler
// during kernel init; this mirrors how internal/cpu takes its
// LAPIC-ID reader as a late-bound func to avoid the same kind of
// import cycle.
type waiter interface {
	// Sleep blocks the calling kernel thread on chan, a sleep/wakeup
	// token (conventionally the address of the thing being waited on,
	// matching the GLOSSARY's definition), releasing lk while blocked
	// and re-acquiring it before returning.
	Sleep(chanToken uintptr, lk *Spinlock)
	// Wakeup makes every thread sleeping on chanToken runnable again.
	Wakeup(chanToken uintptr)
}

var sched waiter

// SetScheduler installs the scheduler's Sleep/Wakeup implementation.
// Called once by internal/proc during boot.
func SetScheduler(w waiter) {
	sched = w
}

// Sleeplock is a lock that blocks the calling kernel thread (via the
// scheduler's sleep/wakeup) rather than spinning, appropriate for
// critical sections that may perform disk I/O (Buf payloads, Inode
// bodies).
type Sleeplock struct {
	Name   string
	guard  Spinlock
	locked bool
}

// Lock acquires the sleep lock, blocking the calling kernel thread if
// it is already held.
func (s *Sleeplock) Lock() {
	s.guard.Name = s.Name
	s.guard.Lock()
	for s.locked {
		sched.Sleep(chanToken(s), &s.guard)
	}
	s.locked = true
	s.guard.Unlock()
}

// Unlock releases the sleep lock and wakes any sleepers.
func (s *Sleeplock) Unlock() {
	s.guard.Lock()
	s.locked = false
	s.guard.Unlock()
	sched.Wakeup(chanToken(s))
}

// Holding reports whether the sleep lock is currently held (by
// anyone), used by debugging assertions the same way the source's
// holding() is.
func (s *Sleeplock) Holding() bool {
	s.guard.Lock()
	h := s.locked
	s.guard.Unlock()
	return h
}

func chanToken(p *Sleeplock) uintptr {
	return uintptr(unsafe.Pointer(p))
}
