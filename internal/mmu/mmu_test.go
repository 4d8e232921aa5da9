package mmu

import (
	"testing"

	"novakernel/internal/addr"
)

func TestP2VV2PRoundTrip(t *testing.T) {
	for _, raw := range []uint32{0, 0x1000, EXTMEM, PHYSTOP - PageSize} {
		pa := addr.FromRawUnchecked[uint8, addr.Physical](uintptr(raw))
		va := P2V(pa)
		if va.Raw() != pa.Raw()+KERNBASE {
			t.Fatalf("p2v(%#x) = %#x", raw, va.Raw())
		}
		back := V2P(va)
		if back.Raw() != pa.Raw() {
			t.Fatalf("v2p(p2v(%#x)) = %#x, want %#x", raw, back.Raw(), pa.Raw())
		}
	}
}

func TestPDXPTX(t *testing.T) {
	va := uint32(KERNLINK)
	pdx := PDX(va)
	ptx := PTX(va)
	if pdx != va>>22 {
		t.Fatalf("pdx = %d", pdx)
	}
	if ptx != (va>>12)&0x3FF {
		t.Fatalf("ptx = %d", ptx)
	}
}

func TestPDEFlags(t *testing.T) {
	e := MakePDE(0x00400000, PTE_P|PTE_W|PTE_PS)
	if !e.Present() || !e.Is4MiB() {
		t.Fatal("flags not set")
	}
	if e.Addr() != 0x00400000 {
		t.Fatalf("addr = %#x", e.Addr())
	}
}
