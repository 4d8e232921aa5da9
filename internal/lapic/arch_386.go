//go:build 386

package lapic

import "novakernel/internal/arch"

func outb(port uint16, v uint8) { arch.Outb(port, v) }
func nop()                      { arch.Nop() }
