package mp

import "testing"

func TestChecksumZeroSum(t *testing.T) {
	b := []byte{1, 2, 3, 250}
	if !checksum(b) {
		t.Fatal("expected zero-sum checksum to pass")
	}
	b[0] = 2
	if checksum(b) {
		t.Fatal("expected tampered checksum to fail")
	}
}

func TestFindSignature(t *testing.T) {
	region := make([]byte, 64)
	copy(region[32:], []byte("_MP_"))
	if off := findSignature(region, "_MP_"); off != 32 {
		t.Fatalf("findSignature = %d, want 32", off)
	}
	if off := findSignature(region, "PCMP"); off != -1 {
		t.Fatalf("findSignature found phantom match at %d", off)
	}
}
