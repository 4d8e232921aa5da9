//go:build 386

package boot

// Entry is the bare-metal hand-off target; body in entry_386.s.
func Entry()
