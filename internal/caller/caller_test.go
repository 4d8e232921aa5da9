package caller

import "testing"

func TestDistinctFirstSightingVsRepeat(t *testing.T) {
	var dc DistinctCaller
	dc.Enabled = true

	first, trace := dc.Distinct()
	if !first {
		t.Fatal("first call from this chain should be distinct")
	}
	if trace == "" {
		t.Fatal("distinct sighting should produce a non-empty trace")
	}

	second, _ := dc.Distinct()
	if second {
		t.Fatal("repeated call from the same chain should not be distinct")
	}
}

func TestDistinctDisabledAlwaysFalse(t *testing.T) {
	var dc DistinctCaller
	if d, _ := dc.Distinct(); d {
		t.Fatal("Distinct should report false when not Enabled")
	}
}

func TestDistinctWhitelistedCallerSuppressed(t *testing.T) {
	var dc DistinctCaller
	dc.Enabled = true
	dc.Whitel = map[string]bool{
		"testing.tRunner": true,
	}
	if d, _ := dc.Distinct(); d {
		t.Fatal("whitelisted caller should suppress the distinct report")
	}
}

func TestLenTracksSightings(t *testing.T) {
	var dc DistinctCaller
	dc.Enabled = true
	if dc.Len() != 0 {
		t.Fatal("fresh DistinctCaller should report Len() == 0")
	}
	dc.Distinct()
	if dc.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", dc.Len())
	}
}
