//go:build !386

package cpu

// Hosted stand-ins for the privileged CLI/STI instructions, so the
// nested push_cli/pop_cli accounting in this package (and everything
// built on it: locks, the scheduler, traps) is exercisable under
// `go test` without real hardware. ifFlag simulates EFLAGS.IF,
// starting enabled the way a CPU boots.
var ifFlag = true

func interruptsEnabled() bool { return ifFlag }
func cli()                    { ifFlag = false }
func sti()                    { ifFlag = true }
