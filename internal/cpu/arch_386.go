//go:build 386

package cpu

import "novakernel/internal/arch"

func interruptsEnabled() bool { return arch.ReadEflags()&arch.EflagsIF != 0 }
func cli()                    { arch.Cli() }
func sti()                    { arch.Sti() }
