package proc

import "testing"

// fakeHeap backs kernel-stack allocations with ordinary Go slices so
// the process-table bookkeeping can run under `go test` without any
// real memory-management subsystem underneath it.
type fakeHeap struct {
	fail bool
}

func (h *fakeHeap) Alloc(n uintptr) []byte {
	if h.fail {
		return nil
	}
	return make([]byte, n)
}

func (h *fakeHeap) Free(b []byte) {}

func resetTable(t *testing.T) {
	t.Helper()
	ptableLock.Lock()
	for i := range table {
		table[i] = Proc{}
	}
	nextPid = 0
	ptableLock.Unlock()
}

func TestAllocProcAssignsMonotonicPIDs(t *testing.T) {
	resetTable(t)
	h := &fakeHeap{}

	p1, ok := AllocProc(h)
	if !ok || p1.PID() != 1 {
		t.Fatalf("first AllocProc: ok=%v pid=%d, want true/1", ok, p1.PID())
	}
	if p1.State() != Embryo {
		t.Fatalf("state = %v, want Embryo", p1.State())
	}

	p2, ok := AllocProc(h)
	if !ok || p2.PID() != 2 {
		t.Fatalf("second AllocProc: ok=%v pid=%d, want true/2", ok, p2.PID())
	}
	if p1 == p2 {
		t.Fatal("AllocProc returned the same slot twice")
	}
}

func TestAllocProcExhaustsTable(t *testing.T) {
	resetTable(t)
	h := &fakeHeap{}
	for i := 0; i < NProc; i++ {
		if _, ok := AllocProc(h); !ok {
			t.Fatalf("AllocProc failed early at slot %d", i)
		}
	}
	if _, ok := AllocProc(h); ok {
		t.Fatal("AllocProc succeeded past table capacity")
	}
}

func TestAllocProcRollsBackOnStackFailure(t *testing.T) {
	resetTable(t)
	h := &fakeHeap{fail: true}
	if _, ok := AllocProc(h); ok {
		t.Fatal("AllocProc should fail when the heap is out of memory")
	}
	// The slot must be released back to Unused so a later attempt with
	// working memory can reuse it.
	h.fail = false
	if _, ok := AllocProc(h); !ok {
		t.Fatal("AllocProc did not roll back the failed slot")
	}
}

func TestWakeupOnlyTouchesMatchingChan(t *testing.T) {
	resetTable(t)
	h := &fakeHeap{}
	p1, _ := AllocProc(h)
	p2, _ := AllocProc(h)
	p1.state, p1.chanAddr = Sleeping, 0x1000
	p2.state, p2.chanAddr = Sleeping, 0x2000

	Wakeup(0x1000)

	if p1.State() != Runnable {
		t.Fatalf("p1 state = %v, want Runnable", p1.State())
	}
	if p2.State() != Sleeping {
		t.Fatalf("p2 state = %v, want still Sleeping", p2.State())
	}
}

func TestKillWakesSleepingProcess(t *testing.T) {
	resetTable(t)
	h := &fakeHeap{}
	p, _ := AllocProc(h)
	p.state, p.chanAddr = Sleeping, 0x3000

	if !Kill(p.PID()) {
		t.Fatal("Kill reported no such pid")
	}
	if !p.killed {
		t.Fatal("killed flag not set")
	}
	if p.State() != Runnable {
		t.Fatalf("state = %v, want Runnable after killing a sleeper", p.State())
	}
}

func TestKillUnknownPID(t *testing.T) {
	resetTable(t)
	if Kill(999) {
		t.Fatal("Kill reported success for a nonexistent pid")
	}
}
