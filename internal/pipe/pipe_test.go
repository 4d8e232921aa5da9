package pipe

import "testing"

func TestWriteThenReadRoundTrips(t *testing.T) {
	r, w := New()

	n, err := w.Write([]byte("hello"))
	if err != 0 || n != 5 {
		t.Fatalf("Write = %d, %v, want 5, 0", n, err)
	}

	buf := make([]byte, 16)
	n, err = r.Read(buf)
	if err != 0 || n != 5 || string(buf[:n]) != "hello" {
		t.Fatalf("Read = %q, %d, %v, want hello, 5, 0", buf[:n], n, err)
	}
}

func TestReadDrainsAvailableBytesWithoutBlocking(t *testing.T) {
	r, w := New()
	w.Write([]byte("ab"))

	buf := make([]byte, 1)
	n, err := r.Read(buf)
	if err != 0 || n != 1 || buf[0] != 'a' {
		t.Fatalf("Read = %d, %v, %q, want 1, 0, a", n, err, buf[:n])
	}
}

func TestReadAfterWriterClosedReportsEOF(t *testing.T) {
	r, w := New()
	w.Write([]byte("x"))

	buf := make([]byte, 1)
	if n, err := r.Read(buf); err != 0 || n != 1 {
		t.Fatalf("first Read = %d, %v, want 1, 0", n, err)
	}

	if err := w.Close(); err != 0 {
		t.Fatalf("Close = %v, want 0", err)
	}

	n, err := r.Read(buf)
	if err != 0 || n != 0 {
		t.Fatalf("Read after close+drain = %d, %v, want 0, 0 (EOF)", n, err)
	}
}

func TestWriteToClosedReadEndReportsError(t *testing.T) {
	r, w := New()
	r.Close()

	if _, err := w.Write([]byte("x")); err == 0 {
		t.Fatal("Write to a pipe with no open readers should fail")
	}
}

func TestReopenBumpsRefcountSoOneCloseIsNotFinal(t *testing.T) {
	r, w := New()
	if err := r.Reopen(); err != 0 {
		t.Fatalf("Reopen = %v, want 0", err)
	}
	r.Close() // drops the refcount added by Reopen, not the original

	// The original read reference is still open, so a subsequent write
	// must still succeed instead of observing readOpen as fully closed.
	if _, err := w.Write([]byte("still open")); err != 0 {
		t.Fatalf("Write after one of two references closed = %v, want 0", err)
	}
}

func TestWriteOnReadEndAndReadOnWriteEndAreInvalid(t *testing.T) {
	r, w := New()
	if _, err := r.Write([]byte("x")); err == 0 {
		t.Fatal("Write on a ReadEnd should fail")
	}
	if _, err := w.Read(make([]byte, 1)); err == 0 {
		t.Fatal("Read on a WriteEnd should fail")
	}
}
