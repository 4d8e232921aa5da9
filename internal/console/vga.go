// Package console implements the kernel's only user-visible output
// and input devices: a VGA text-mode writer and a 16550 UART, plus
// the small ring buffer draining keyboard/COM1 RX during their
// interrupt handlers.
//
// Grounded on original_source/utils/src/vga.rs (Writer, ScreenCell,
// the scroll-on-newline algorithm, CRTC cursor update) and
// original_source/kernel/src/uart.rs (port layout, baud-rate divisor,
// the IS_UART probe-and-disable-if-absent check).
package console

import (
	"unsafe"

	"novakernel/internal/lock"
)

const (
	vgaHeight = 25
	vgaWidth  = 80
	crtPort   = 0x3D4

	vgaBase = 0x800B8000 // direct-mapped VA of the 0xB8000 text buffer
)

// Color is one of the 16 VGA text-mode colors.
type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	Pink
	Yellow
	White
)

// ColorCode packs a foreground/background pair into the one byte VGA
// text mode expects: bg<<4 | fg.
type ColorCode uint8

func NewColorCode(fg, bg Color) ColorCode {
	return ColorCode(uint8(bg)<<4 | uint8(fg))
}

var (
	DefColor = NewColorCode(White, Black)
	ErrColor = NewColorCode(LightRed, Black)
	WrnColor = NewColorCode(Yellow, Black)
	InfColor = NewColorCode(LightCyan, Black)
	DbgColor = NewColorCode(LightGreen, Black)
)

type screenCell struct {
	ascii uint8
	color ColorCode
}

type vgaBuffer = [vgaHeight][vgaWidth]screenCell

// Writer drives the VGA text buffer: scrolling, color, and the
// hardware text-mode cursor.
type Writer struct {
	mu   lock.Spinlock
	col  int
	row  int
	color ColorCode
	buf  *vgaBuffer
}

var vga = &Writer{color: DefColor}

// Init clears the screen and resets the cursor. Must run once,
// after paging has mapped the direct-map window containing 0xB8000.
func Init() {
	vga.buf = (*vgaBuffer)(unsafe.Pointer(uintptr(vgaBase)))
	vga.mu.Lock()
	defer vga.mu.Unlock()
	vga.clearScreenLocked()
}

// WriteString writes s to the screen, substituting 0xFE for any byte
// outside printable ASCII/newline (spec-adjacent to the original's
// "0x20..=0x7E | b'\n'" filter).
func WriteString(s string) {
	vga.mu.Lock()
	defer vga.mu.Unlock()
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\n' || (b >= 0x20 && b <= 0x7E) {
			vga.writeByteLocked(b)
		} else {
			vga.writeByteLocked(0xFE)
		}
	}
}

// SetColor changes the foreground/background pair used by subsequent
// WriteString calls. Nothing in the kernel calls it; output uses the
// default color.
func SetColor(c ColorCode) {
	vga.mu.Lock()
	vga.color = c
	vga.mu.Unlock()
}

func (w *Writer) writeByteLocked(b byte) {
	if b == '\n' {
		w.newLineLocked()
		return
	}
	if w.col >= vgaWidth {
		w.newLineLocked()
	}
	w.buf[w.row][w.col] = screenCell{ascii: b, color: w.color}
	w.col++
	w.updateCursorLocked()
}

func (w *Writer) newLineLocked() {
	if w.row == vgaHeight-1 {
		for row := 1; row < vgaHeight; row++ {
			w.buf[row-1] = w.buf[row]
		}
		w.clearRowLocked(vgaHeight - 1)
	} else {
		w.row++
	}
	w.col = 0
	w.updateCursorLocked()
}

func (w *Writer) clearRowLocked(row int) {
	blank := screenCell{ascii: ' ', color: w.color}
	for col := 0; col < vgaWidth; col++ {
		w.buf[row][col] = blank
	}
}

func (w *Writer) clearScreenLocked() {
	for r := 0; r < vgaHeight; r++ {
		w.clearRowLocked(r)
	}
	w.row, w.col = 0, 0
}

func (w *Writer) updateCursorLocked() {
	pos := w.row*vgaWidth + w.col
	outb(crtPort+0, 0x0F)
	outb(crtPort+1, uint8(pos&0xFF))
	outb(crtPort+0, 0x0E)
	outb(crtPort+1, uint8((pos>>8)&0xFF))
}
