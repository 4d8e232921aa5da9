// Package stat implements the on-the-wire layout of a stat(2) result
// (spec's Fd/Proc ambient stack; not itself a spec [MODULE]). No other
// package imports it: internal/syscall's fstat copies out the type,
// size and link count as three 32-bit words rather than a Stat_t.
//
// Grounded on biscuit's stat/stat.go: same field set, same Wxxx setter
// naming, same raw-bytes escape hatch for the syscall copyout path.
package stat

import "unsafe"

// Stat_t mirrors the fields a stat(2) result reports.
type Stat_t struct {
	dev    uint
	ino    uint
	mode   uint
	size   uint
	rdev   uint
	uid    uint
	blocks uint
	mSec   uint
	mNsec  uint
}

// Wdev stores the device ID.
func (st *Stat_t) Wdev(v uint) { st.dev = v }

// Wino stores the inode number.
func (st *Stat_t) Wino(v uint) { st.ino = v }

// Wmode records the file mode.
func (st *Stat_t) Wmode(v uint) { st.mode = v }

// Wsize records the file size in bytes.
func (st *Stat_t) Wsize(v uint) { st.size = v }

// Wrdev stores the rdev field (device number for device-special files).
func (st *Stat_t) Wrdev(v uint) { st.rdev = v }

// Mode returns the stored mode value.
func (st *Stat_t) Mode() uint { return st.mode }

// Size returns the stored size.
func (st *Stat_t) Size() uint { return st.size }

// Rdev returns the stored rdev.
func (st *Stat_t) Rdev() uint { return st.rdev }

// Rino returns the stored inode number.
func (st *Stat_t) Rino() uint { return st.ino }

// Bytes exposes the struct's raw bytes, for copying out to a user
// buffer without a field-by-field marshaller.
func (st *Stat_t) Bytes() []uint8 {
	const sz = unsafe.Sizeof(Stat_t{})
	sl := (*[sz]uint8)(unsafe.Pointer(st))
	return sl[:]
}
