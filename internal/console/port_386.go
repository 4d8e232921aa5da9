// +build 386

package console

import "novakernel/internal/arch"

func outb(port uint16, v uint8) { arch.Outb(port, v) }
func inb(port uint16) uint8     { return arch.Inb(port) }
