// +build !386

package console

// Hosted stand-ins so the VGA scrolling/cursor-tracking logic in
// vga.go runs under `go test` without real port I/O.
func outb(port uint16, v uint8) {}
func inb(port uint16) uint8     { return 0 }
