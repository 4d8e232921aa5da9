package profdev

import "testing"

func TestReadWithNoSamplesReturnsNothing(t *testing.T) {
	d := New()
	buf := make([]byte, 64)
	n, err := d.Read(buf)
	if err != 0 {
		t.Fatalf("Read returned error %v", err)
	}
	if n != 0 {
		t.Fatalf("Read with no samples returned %d bytes, want 0", n)
	}
}

func TestSampleThenReadProducesGzipMagic(t *testing.T) {
	d := New()
	d.Sample(0x100000)
	d.Sample(0x100004)
	d.Sample(0x100000)

	buf := make([]byte, 4096)
	n, err := d.Read(buf)
	if err != 0 {
		t.Fatalf("Read returned error %v", err)
	}
	if n < 2 {
		t.Fatalf("Read returned %d bytes, too small to be a profile", n)
	}
	// pprof's wire format is gzip-compressed; a gzip stream always
	// starts with this two-byte magic.
	if buf[0] != 0x1f || buf[1] != 0x8b {
		t.Fatalf("Read output does not start with the gzip magic, got %#x %#x", buf[0], buf[1])
	}
}

func TestWriteIsUnsupported(t *testing.T) {
	d := New()
	if _, err := d.Write([]byte("x")); err == 0 {
		t.Fatal("Write should report an error on a profiling device")
	}
}

func TestCloseDiscardsSamples(t *testing.T) {
	d := New()
	d.Sample(0x1000)
	if err := d.Close(); err != 0 {
		t.Fatalf("Close returned error %v", err)
	}
	buf := make([]byte, 64)
	n, _ := d.Read(buf)
	if n != 0 {
		t.Fatal("Read after Close should report no data")
	}
}
