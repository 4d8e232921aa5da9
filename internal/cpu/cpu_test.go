package cpu

import "testing"

func resetForTest() {
	ncpu = 0
	cpus = [MaxCPUs]CPU{}
	ifFlag = true
	lapicID = nil
}

func TestRegisterCPUAndMine(t *testing.T) {
	resetForTest()
	RegisterCPU(0)
	RegisterCPU(1)
	SetLapicIDFunc(func() uint8 { return 1 })

	cli()
	defer sti()
	c := Mine()
	if c.ApicID != 1 {
		t.Fatalf("Mine().ApicID = %d, want 1", c.ApicID)
	}
}

func TestMinePanicsWithInterruptsEnabled(t *testing.T) {
	resetForTest()
	RegisterCPU(0)
	SetLapicIDFunc(func() uint8 { return 0 })
	sti()
	defer func() {
		if recover() == nil {
			t.Fatal("Mine() with interrupts enabled did not panic")
		}
	}()
	Mine()
}

func TestPushPopCliNests(t *testing.T) {
	resetForTest()
	RegisterCPU(0)
	SetLapicIDFunc(func() uint8 { return 0 })
	sti()

	PushCli()
	if interruptsEnabled() {
		t.Fatal("interrupts still enabled after PushCli")
	}
	PushCli()
	PopCli()
	if interruptsEnabled() {
		t.Fatal("interrupts re-enabled before outermost PopCli")
	}
	PopCli()
	if !interruptsEnabled() {
		t.Fatal("interrupts not restored after matching PopCli")
	}
}

func TestPopCliUnmatchedPanics(t *testing.T) {
	resetForTest()
	RegisterCPU(0)
	SetLapicIDFunc(func() uint8 { return 0 })
	cli()
	defer func() {
		if recover() == nil {
			t.Fatal("unmatched PopCli did not panic")
		}
	}()
	PopCli()
}
