package syscall

import (
	"testing"

	"novakernel/internal/defs"
	"novakernel/internal/fd"
)

func TestErrnoRoundTripsNegativeErrorCodes(t *testing.T) {
	got := int32(errno(defs.ENOENT))
	if defs.Err_t(got) != defs.ENOENT {
		t.Fatalf("errno round trip = %d, want %d", got, defs.ENOENT)
	}
	if errno(0) != 0 {
		t.Fatalf("errno(0) = %d, want 0", errno(0))
	}
}

func TestUaddrOKAcceptsWithinBounds(t *testing.T) {
	if !uaddrOK(4096, 0, 4) {
		t.Fatal("[0,4) within a 4096-byte space should be ok")
	}
	if !uaddrOK(4096, 4092, 4) {
		t.Fatal("[4092,4096) within a 4096-byte space should be ok")
	}
}

func TestUaddrOKRejectsOutOfBounds(t *testing.T) {
	if uaddrOK(4096, 4093, 4) {
		t.Fatal("[4093,4097) overruns a 4096-byte space")
	}
	if uaddrOK(4096, 0, 4097) {
		t.Fatal("a request larger than the space itself must be rejected")
	}
}

func TestUaddrOKRejectsWraparound(t *testing.T) {
	// va so large that va+n overflows uint32 back into range: the
	// size-va subtraction form (va > size-n) must catch this without
	// ever computing va+n.
	if uaddrOK(4096, 0xFFFFFFFF, 8) {
		t.Fatal("a va near the uint32 max must not wrap around into bounds")
	}
}

func TestPermsForMapsOpenFlagsToFdPermissionBits(t *testing.T) {
	cases := []struct {
		flags int32
		want  int
	}{
		{O_RDONLY, fd.FD_READ},
		{O_WRONLY, fd.FD_WRITE},
		{O_RDWR, fd.FD_READ | fd.FD_WRITE},
	}
	for _, c := range cases {
		if got := permsFor(c.flags); got != c.want {
			t.Fatalf("permsFor(%#x) = %#x, want %#x", c.flags, got, c.want)
		}
	}
}
