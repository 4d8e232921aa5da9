// Package caller provides call-stack debug tooling: printing the
// current stack and recording which distinct ancestor call chains
// have been seen before. Ambient debug tooling, not gated by any spec
// module, kept the way biscuit keeps it available for one-off
// diagnosis without threading a debug flag through every call site.
//
// Grounded on biscuit's caller/caller.go.
package caller

import (
	"fmt"
	"runtime"
	"sync"
)

// Dump prints the call stack starting at the given frame depth.
func Dump(start int) {
	i := start
	s := ""
	for {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		i++
		if s == "" {
			s = fmt.Sprintf("%s:%d\n", f, l)
		} else {
			s += fmt.Sprintf("\t<-%s:%d\n", f, l)
		}
	}
	fmt.Printf("%s", s)
}

// DistinctCaller tracks whether a call chain has been seen before, so
// a noisy log site can print only the first occurrence of each
// distinct caller path. Fields are protected by the embedded mutex.
type DistinctCaller struct {
	sync.Mutex
	Enabled bool
	did     map[uintptr]bool
	Whitel  map[string]bool
}

// pchash hashes a stack's program counters into one token identifying
// that call chain.
func (dc *DistinctCaller) pchash(pcs []uintptr) uintptr {
	var ret uintptr
	for _, pc := range pcs {
		pc = pc*1103515245 + 12345
		ret ^= pc
	}
	return ret
}

// Len returns the number of unique caller paths recorded so far.
func (dc *DistinctCaller) Len() int {
	dc.Lock()
	defer dc.Unlock()
	return len(dc.did)
}

// Distinct reports whether the caller's current call chain is new. The
// recorded chain starts at the caller's own caller: the function that
// calls Distinct is skipped, so two calls from different lines of one
// function count as the same chain. On a first sighting it returns
// true along with a formatted trace; repeat sightings and any chain
// passing through a whitelisted function return false.
func (dc *DistinctCaller) Distinct() (bool, string) {
	dc.Lock()
	defer dc.Unlock()
	if !dc.Enabled {
		return false, ""
	}
	if dc.did == nil {
		dc.did = make(map[uintptr]bool)
	}

	var pcs []uintptr
	for sz, got := 30, 30; got >= sz; sz *= 2 {
		pcs = make([]uintptr, sz)
		got = runtime.Callers(3, pcs)
		if got == 0 {
			return false, ""
		}
		pcs = pcs[:got]
	}

	h := dc.pchash(pcs)
	if dc.did[h] {
		return false, ""
	}
	dc.did[h] = true

	frames := runtime.CallersFrames(pcs)
	fs := ""
	for {
		fr, more := frames.Next()
		if dc.Whitel[fr.Function] {
			return false, ""
		}
		if fs == "" {
			fs = fmt.Sprintf("%v (%v:%v)\n", fr.Function, fr.File, fr.Line)
		} else {
			fs += fmt.Sprintf("\t%v (%v:%v)\n", fr.Function, fr.File, fr.Line)
		}
		if !more || fr.Function == "runtime.goexit" {
			break
		}
	}
	return true, fs
}
