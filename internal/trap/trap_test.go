package trap

import "testing"

func TestSetGateEncoding(t *testing.T) {
	var g GateDesc
	setGate(&g, false, 0x0008, 0xDEADBEEF, 0)
	if g.OffsetLow != 0xBEEF || g.OffsetHigh != 0xDEAD {
		t.Fatalf("offset split wrong: low=%#x high=%#x", g.OffsetLow, g.OffsetHigh)
	}
	if g.Selector != 0x0008 {
		t.Fatalf("selector = %#x, want 0x0008", g.Selector)
	}
	if g.TypeAttr != gateP|gateIntr32 {
		t.Fatalf("interrupt gate TypeAttr = %#x", g.TypeAttr)
	}

	var trapGate GateDesc
	setGate(&trapGate, true, 0x0008, 0, 3)
	want := uint8(gateP | (3&0x3)<<5 | gateTrap32)
	if trapGate.TypeAttr != want {
		t.Fatalf("trap gate TypeAttr = %#x, want %#x", trapGate.TypeAttr, want)
	}
}

func TestFromUser(t *testing.T) {
	kernel := &TrapFrame{CS: 0x0008} // SegKCode<<3, DPL 0
	if fromUser(kernel) {
		t.Fatal("kernel CS misclassified as user")
	}
	user := &TrapFrame{CS: 0x001B} // SegUCode<<3 | 3
	if !fromUser(user) {
		t.Fatal("user CS misclassified as kernel")
	}
}

func TestDispatchTimerTickWakesAndYieldsOnlyFromUser(t *testing.T) {
	var ticked, yielded bool
	SetHandlers(Handlers{
		TimerTick: func() { ticked = true },
		Yield:     func() { yielded = true },
	})
	defer SetHandlers(Handlers{})

	Dispatch(&TrapFrame{TrapNo: T_IRQ0 + IRQ_TIMER, CS: 0x0008})
	if !ticked || yielded {
		t.Fatalf("kernel-mode tick: ticked=%v yielded=%v, want ticked && !yielded", ticked, yielded)
	}

	ticked, yielded = false, false
	Dispatch(&TrapFrame{TrapNo: T_IRQ0 + IRQ_TIMER, CS: 0x001B})
	if !ticked || !yielded {
		t.Fatalf("user-mode tick: ticked=%v yielded=%v, want both true", ticked, yielded)
	}
}

func TestDispatchTimerTickSamplesEIPWhenProfiling(t *testing.T) {
	var sampled uint32
	SetHandlers(Handlers{ProfileSample: func(eip uint32) { sampled = eip }})
	defer SetHandlers(Handlers{})

	Dispatch(&TrapFrame{TrapNo: T_IRQ0 + IRQ_TIMER, CS: 0x0008, EIP: 0xCAFE})
	if sampled != 0xCAFE {
		t.Fatalf("ProfileSample saw eip %#x, want %#x", sampled, 0xCAFE)
	}
}

func TestDispatchSyscallSetsEAX(t *testing.T) {
	SetHandlers(Handlers{Syscall: func(tf *TrapFrame) uint32 { return tf.EAX + 1 }})
	defer SetHandlers(Handlers{})

	tf := &TrapFrame{TrapNo: T_SYSCALL, EAX: 41}
	Dispatch(tf)
	if tf.EAX != 42 {
		t.Fatalf("eax = %d, want 42", tf.EAX)
	}
}

func TestDispatchKillsUserOnUnknownTrap(t *testing.T) {
	var killed bool
	SetHandlers(Handlers{KillUser: func(tf *TrapFrame) { killed = true }})
	defer SetHandlers(Handlers{})

	Dispatch(&TrapFrame{TrapNo: 13, CS: 0x001B})
	if !killed {
		t.Fatal("unexpected user trap did not kill the process")
	}
}

func TestDispatchPanicsOnUnknownKernelTrap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on unexpected kernel-mode trap")
		}
	}()
	SetHandlers(Handlers{})
	Dispatch(&TrapFrame{TrapNo: 13, CS: 0x0008})
}
