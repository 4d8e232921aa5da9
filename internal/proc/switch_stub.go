// +build !386

package proc

import "novakernel/internal/cpu"

// Hosted stand-ins so the process-table bookkeeping in proc.go can
// run under `go test` on the development machine; a real context
// switch only exists on 386 (see switch_386.s).
func switchTo(old, new *cpu.Context) {
	panic("proc: switchTo is only implemented for GOARCH=386")
}

func forkretEntryPC() uint32 { return 0 }
