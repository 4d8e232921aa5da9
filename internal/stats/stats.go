// Package stats holds the kernel's free-running IRQ/tick counters and
// a compile-time-gated instrumentation layer for them: when Enabled is
// false every counter operation is a no-op, so leaving instrumentation
// in the source costs nothing in the common build.
//
// Grounded on biscuit's stats/stats.go and its `const Stats = false`
// gate; renamed Enabled to read clearly next to spec's own interrupt
// counters (spec §4.6's timer tick, §4.9's device IRQs).
package stats

import (
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"unsafe"
)

// Enabled gates whether Counter_t.Inc does any work. Flipping it to
// true is a recompile, not a runtime flag, matching biscuit's own
// all-or-nothing instrumentation switch.
const Enabled = false

// Nirqs counts interrupts per IDT vector; Irqs is the running total
// across all vectors.
var (
	Nirqs [256]int
	Irqs  int
)

// Counter_t is a free-running statistical counter.
type Counter_t int64

// Inc increments the counter. A no-op when Enabled is false.
func (c *Counter_t) Inc() {
	if Enabled {
		atomic.AddInt64((*int64)(unsafe.Pointer(c)), 1)
	}
}

// Stats2String renders every Counter_t field of st as a line of
// "#Name: value", for a debug dump of an arbitrary stats struct.
func Stats2String(st interface{}) string {
	if !Enabled {
		return ""
	}
	v := reflect.ValueOf(st)
	s := ""
	for i := 0; i < v.NumField(); i++ {
		if !strings.HasSuffix(v.Field(i).Type().String(), "Counter_t") {
			continue
		}
		n := v.Field(i).Interface().(Counter_t)
		s += "\n\t#" + v.Type().Field(i).Name + ": " + strconv.FormatInt(int64(n), 10)
	}
	return s + "\n"
}
