package hashtable

import "testing"

type devBlock struct{ dev, block uint32 }

func hashDevBlock(k devBlock) uint32 { return k.dev*1000003 + k.block }

func TestSetGetDel(t *testing.T) {
	tb := New[devBlock, int](8, hashDevBlock)
	k := devBlock{0, 42}
	if _, ok := tb.Get(k); ok {
		t.Fatal("Get on empty table found something")
	}
	if !tb.Set(k, 7) {
		t.Fatal("Set on fresh key returned false")
	}
	if v, ok := tb.Get(k); !ok || v != 7 {
		t.Fatalf("Get = %d,%v want 7,true", v, ok)
	}
	if tb.Set(k, 99) {
		t.Fatal("Set on existing key should return false and not overwrite")
	}
	if v, _ := tb.Get(k); v != 7 {
		t.Fatalf("Set on existing key overwrote value: got %d", v)
	}
	tb.Del(k)
	if _, ok := tb.Get(k); ok {
		t.Fatal("Get found key after Del")
	}
}

func TestDelMissingPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Del of missing key did not panic")
		}
	}()
	tb := New[devBlock, int](4, hashDevBlock)
	tb.Del(devBlock{0, 1})
}

func TestSizeCountsAcrossBuckets(t *testing.T) {
	tb := New[devBlock, int](4, hashDevBlock)
	for i := 0; i < 20; i++ {
		tb.Set(devBlock{0, uint32(i)}, i)
	}
	if tb.Size() != 20 {
		t.Fatalf("Size = %d, want 20", tb.Size())
	}
}
