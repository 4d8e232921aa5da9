package util

import "testing"

func TestRoundupRounddown(t *testing.T) {
	cases := []struct{ v, b, up, down int }{
		{0, 4096, 0, 0},
		{1, 4096, 4096, 0},
		{4096, 4096, 4096, 4096},
		{4097, 4096, 8192, 4096},
		{0x80000000, 0x400000, 0x80000000, 0x80000000},
	}
	for _, c := range cases {
		if got := Roundup(c.v, c.b); got != c.up {
			t.Errorf("Roundup(%#x,%#x) = %#x, want %#x", c.v, c.b, got, c.up)
		}
		if got := Rounddown(c.v, c.b); got != c.down {
			t.Errorf("Rounddown(%#x,%#x) = %#x, want %#x", c.v, c.b, got, c.down)
		}
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Fatal("Min wrong")
	}
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Fatal("Max wrong")
	}
}

func TestReadnWriten(t *testing.T) {
	buf := make([]uint8, 16)
	Writen(buf, 4, 0, 0xdeadbeef)
	if got := Readn(buf, 4, 0); got != int(uint32(0xdeadbeef)) {
		t.Fatalf("got %#x", got)
	}
	Writen(buf, 2, 4, 0x1234)
	if got := Readn(buf, 2, 4); got != 0x1234 {
		t.Fatalf("got %#x", got)
	}
	Writen(buf, 1, 6, 0xff)
	if got := Readn(buf, 1, 6); got != 0xff {
		t.Fatalf("got %#x", got)
	}
}

func TestReadnOutOfBounds(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Readn(make([]uint8, 4), 4, 2)
}
