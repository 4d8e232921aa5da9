// +build !386

package trap

import "unsafe"

// On a hosted, non-386 build there are no real vector stubs to link
// against; Vectors stays all-zero and Init/IDTLoad are never called
// outside a real or emulated i386 boot. This lets the pure-logic
// parts of this package (gate encoding, dispatch routing) run under
// `go test` on the development machine.
func init() {}

func lidt(pd unsafe.Pointer) {}
