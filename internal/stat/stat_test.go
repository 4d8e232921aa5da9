package stat

import "testing"

func TestSettersAndGetters(t *testing.T) {
	var st Stat_t
	st.Wdev(1)
	st.Wino(42)
	st.Wmode(0644)
	st.Wsize(4096)
	st.Wrdev(7)

	if st.Mode() != 0644 {
		t.Fatalf("Mode() = %#o, want 0644", st.Mode())
	}
	if st.Size() != 4096 {
		t.Fatalf("Size() = %d, want 4096", st.Size())
	}
	if st.Rdev() != 7 {
		t.Fatalf("Rdev() = %d, want 7", st.Rdev())
	}
	if st.Rino() != 42 {
		t.Fatalf("Rino() = %d, want 42", st.Rino())
	}
}

func TestBytesLengthMatchesStruct(t *testing.T) {
	var st Stat_t
	st.Wmode(0755)
	b := st.Bytes()
	if len(b) == 0 {
		t.Fatal("Bytes returned an empty slice")
	}
	// The mode field shows up somewhere in the raw bytes.
	found := false
	for i := 0; i+4 <= len(b); i++ {
		var v uint32
		for j := 0; j < 4; j++ {
			v |= uint32(b[i+j]) << (8 * j)
		}
		if v == 0755 {
			found = true
			break
		}
	}
	if !found {
		t.Fatal("mode value not found in raw bytes")
	}
}
