package path

import "testing"

func TestSplitFirst(t *testing.T) {
	cases := []struct {
		in         string
		first, rest string
		ok         bool
	}{
		{"/foo", "foo", "", true},
		{"a/bb/c", "a", "bb/c", true},
		{"///a//bb", "a", "bb", true},
		{"a", "a", "", true},
		{"", "", "", false},
		{"////", "", "", false},
	}
	for _, c := range cases {
		first, rest, ok := SplitFirst(c.in)
		if ok != c.ok || first != c.first || rest != c.rest {
			t.Errorf("SplitFirst(%q) = %q,%q,%v want %q,%q,%v",
				c.in, first, rest, ok, c.first, c.rest, c.ok)
		}
	}
}

// TestSplitFirstChain walks the same path element-by-element the way
// name_x does, mirroring the original's chained test scenario.
func TestSplitFirstChain(t *testing.T) {
	first, rest, ok := SplitFirst("///a//bb")
	if !ok || first != "a" || rest != "bb" {
		t.Fatalf("step 1 = %q,%q,%v", first, rest, ok)
	}
	first, rest, ok = SplitFirst(rest)
	if !ok || first != "bb" || rest != "" {
		t.Fatalf("step 2 = %q,%q,%v", first, rest, ok)
	}
	_, _, ok = SplitFirst(rest)
	if ok {
		t.Fatalf("step 3: expected no further element")
	}
}
