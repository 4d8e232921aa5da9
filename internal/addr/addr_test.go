package addr

import "testing"

func TestRoundTrip(t *testing.T) {
	a := FromRaw[uint32, Virtual](0x80100000)
	if a.Raw() != 0x80100000 {
		t.Fatal("raw mismatch")
	}
}

func TestMisalignedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned construction")
		}
	}()
	FromRaw[uint32, Physical](1)
}

func TestRoundUpDown(t *testing.T) {
	a := FromRawUnchecked[uint8, Physical](0x80000001)
	if got := a.RoundDown(0x400000).Raw(); got != 0x80000000 {
		t.Fatalf("round down = %#x", got)
	}
	if got := a.RoundUp(0x400000).Raw(); got != 0x80400000 {
		t.Fatalf("round up = %#x", got)
	}
	// A 4 MiB-aligned address round-down by 4 KiB equals itself.
	b := FromRawUnchecked[uint8, Physical](0x80400000)
	if got := b.RoundDown(0x1000).Raw(); got != b.Raw() {
		t.Fatalf("aligned round down changed value: %#x", got)
	}
}

func TestAddSub(t *testing.T) {
	a := FromRawUnchecked[uint32, Physical](0x1000)
	if got := a.Add(2).Raw(); got != 0x1008 {
		t.Fatalf("add = %#x", got)
	}
	if got := a.Add(2).Sub(2).Raw(); got != a.Raw() {
		t.Fatalf("add then sub not identity: %#x", got)
	}
}
