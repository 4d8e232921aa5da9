package console

import "novakernel/internal/defs"

// Device is the D_CONSOLE file description: writes go straight to the
// VGA text buffer and the UART, reads drain whatever the keyboard and
// COM1 ring buffers have already buffered. Implements internal/fd's
// Fdops_i.
//
// Read never blocks (spec's Non-goal: "no blocking read() syscall is
// implemented" — console input is a best-effort drain), so a read with
// nothing pending returns (0, 0) rather than putting the calling
// process to sleep.
type Device struct{}

// NewDevice returns the console device description.
func NewDevice() Device { return Device{} }

// Write echoes buf to the screen and the serial port.
func (Device) Write(buf []byte) (int, defs.Err_t) {
	WriteString(string(buf))
	for _, b := range buf {
		PutcUART(b)
	}
	return len(buf), 0
}

// Read copies up to len(dst) already-buffered input bytes, preferring
// the keyboard ring and falling back to COM1 once it's empty. It
// returns as soon as both rings are empty rather than blocking.
func (Device) Read(dst []byte) (int, defs.Err_t) {
	n := 0
	for n < len(dst) {
		if b, ok := ReadKeyboard(); ok {
			dst[n] = b
			n++
			continue
		}
		if b, ok := ReadCOM1(); ok {
			dst[n] = b
			n++
			continue
		}
		break
	}
	return n, 0
}

// Close is a no-op: the console has no per-descriptor state to tear
// down.
func (Device) Close() defs.Err_t { return 0 }

// Reopen is a no-op for the same reason.
func (Device) Reopen() defs.Err_t { return 0 }
