package accnt

import "testing"

func TestUtaddSystadd(t *testing.T) {
	var a Accnt_t
	a.Utadd(100)
	a.Systadd(50)
	if a.Userns != 100 {
		t.Fatalf("Userns = %d, want 100", a.Userns)
	}
	if a.Sysns != 50 {
		t.Fatalf("Sysns = %d, want 50", a.Sysns)
	}
}

func TestAddMergesCounters(t *testing.T) {
	var parent, child Accnt_t
	parent.Utadd(10)
	child.Utadd(20)
	child.Systadd(5)

	parent.Add(&child)

	if parent.Userns != 30 {
		t.Fatalf("Userns = %d, want 30", parent.Userns)
	}
	if parent.Sysns != 5 {
		t.Fatalf("Sysns = %d, want 5", parent.Sysns)
	}
}

func TestFetchReturnsFourWords(t *testing.T) {
	var a Accnt_t
	a.Utadd(1)
	ru := a.Fetch()
	if len(ru) != 32 {
		t.Fatalf("Fetch() returned %d bytes, want 32", len(ru))
	}
}
