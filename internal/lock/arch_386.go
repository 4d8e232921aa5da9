//go:build 386

package lock

import "novakernel/internal/arch"

func xchgl(addr *uint32, newval uint32) uint32 { return arch.Xchgl(addr, newval) }
