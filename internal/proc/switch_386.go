// +build 386

package proc

import "novakernel/internal/cpu"

// switchTo and forkret are implemented in switch_386.s.
func switchTo(old, new *cpu.Context)
func forkretEntryPC() uint32
