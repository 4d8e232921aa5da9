// Package profdev implements a device for the D_PROF device major
// (internal/defs): its Read returns a pprof-format CPU profile built
// from program-counter samples collected at timer ticks. A
// developer-debug path, not part of the freestanding runtime image
// proper — wired in by cmd/kernel's compile-time profileEnabled
// switch, which installs Device.Sample as trap.Handlers.ProfileSample.
// internal/syscall's deviceOps does not map D_PROF, so no open() from
// userspace reaches a Device.
//
// Grounded on biscuit's own D_PROF device major (defs/device.go),
// which this pack never supplies an implementation for; built using
// google/pprof/profile, a real dependency of biscuit's go.mod with no
// visible call site anywhere in the retrieved pack.
package profdev

import (
	"bytes"
	"sync"

	"github.com/google/pprof/profile"

	"novakernel/internal/defs"
)

// Device is a D_PROF file description: an accumulating set of
// program-counter samples, readable as a serialized pprof profile.
// Implements internal/fd's Fdops_i.
type Device struct {
	mu      sync.Mutex
	samples []uint32
	pending bytes.Buffer
}

// New returns an empty profiling device.
func New() *Device { return &Device{} }

// Sample records one timer-tick program counter. Cheap enough to call
// from Dispatch's timer-tick path: just an append under a lock.
func (d *Device) Sample(pc uint32) {
	d.mu.Lock()
	d.samples = append(d.samples, pc)
	d.mu.Unlock()
}

// snapshot turns the recorded samples into a pprof Profile, one
// single-frame Location per distinct program counter.
func (d *Device) snapshot() *profile.Profile {
	locByPC := make(map[uint32]*profile.Location, len(d.samples))
	p := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "samples", Unit: "count"}},
		PeriodType: &profile.ValueType{Type: "cpu", Unit: "nanoseconds"},
		Period:     1,
	}
	for _, pc := range d.samples {
		loc, ok := locByPC[pc]
		if !ok {
			loc = &profile.Location{ID: uint64(len(p.Location) + 1), Address: uint64(pc)}
			locByPC[pc] = loc
			p.Location = append(p.Location, loc)
		}
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{1},
		})
	}
	return p
}

// Read serializes the samples collected so far and copies them out in
// pprof's gzip-compressed wire format, draining buf-sized chunks
// across repeated calls the way a regular file's Read does.
func (d *Device) Read(buf []byte) (int, defs.Err_t) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending.Len() == 0 && len(d.samples) > 0 {
		if err := d.snapshot().Write(&d.pending); err != nil {
			return 0, defs.EIO
		}
	}
	n := copy(buf, d.pending.Bytes())
	d.pending.Next(n)
	return n, 0
}

// Write is unsupported: a profiling device is read-only from
// userspace's point of view.
func (d *Device) Write(buf []byte) (int, defs.Err_t) { return 0, defs.EINVAL }

// Close resets the device, discarding any samples collected so far.
func (d *Device) Close() defs.Err_t {
	d.mu.Lock()
	d.samples = nil
	d.pending.Reset()
	d.mu.Unlock()
	return 0
}

// Reopen is a no-op: profiling devices aren't meaningfully
// reference-counted the way a regular inode-backed file is.
func (d *Device) Reopen() defs.Err_t { return 0 }
