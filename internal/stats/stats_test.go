package stats

import "testing"

func TestIncIsNoopWhenDisabled(t *testing.T) {
	var c Counter_t
	c.Inc()
	c.Inc()
	if Enabled {
		t.Skip("Enabled is compiled in true for this build; Inc is expected to count")
	}
	if c != 0 {
		t.Fatalf("Counter_t = %d, want 0 while Enabled is false", c)
	}
}

func TestStats2StringEmptyWhenDisabled(t *testing.T) {
	type sample struct {
		Foo Counter_t
	}
	if Enabled {
		t.Skip("Enabled is compiled in true for this build")
	}
	if got := Stats2String(sample{Foo: 5}); got != "" {
		t.Fatalf("Stats2String = %q, want empty string while disabled", got)
	}
}

func TestNirqsIndexable(t *testing.T) {
	Nirqs[32]++
	if Nirqs[32] != 1 {
		t.Fatal("Nirqs should be a plain indexable counter array")
	}
	Nirqs[32] = 0
}
