//go:build !386

package lock

import "sync/atomic"

// xchgl's hosted stand-in is a real atomic swap (sync/atomic), not a
// no-op: Spinlock's mutual exclusion depends on it actually
// exchanging, unlike the CLI/STI simulation in internal/cpu which only
// needs to track nesting depth correctly.
func xchgl(addr *uint32, newval uint32) uint32 {
	return atomic.SwapUint32(addr, newval)
}
