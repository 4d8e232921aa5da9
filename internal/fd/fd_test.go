package fd

import (
	"novakernel/internal/defs"
	"testing"
)

type fakeFops struct {
	reopened int
	closed   bool
}

func (f *fakeFops) Read(buf []byte) (int, defs.Err_t)  { return 0, 0 }
func (f *fakeFops) Write(buf []byte) (int, defs.Err_t) { return len(buf), 0 }
func (f *fakeFops) Close() defs.Err_t                  { f.closed = true; return 0 }
func (f *fakeFops) Reopen() defs.Err_t                 { f.reopened++; return 0 }

func TestCopyfdReopens(t *testing.T) {
	ops := &fakeFops{}
	f := &Fd_t{Fops: ops, Perms: FD_READ}

	nf, err := Copyfd(f)
	if err != 0 {
		t.Fatalf("Copyfd returned error %v", err)
	}
	if ops.reopened != 1 {
		t.Fatalf("Reopen called %d times, want 1", ops.reopened)
	}
	if nf.Perms != FD_READ {
		t.Fatal("Copyfd did not preserve Perms")
	}
}

func TestClosePanicOnFailure(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("ClosePanic should panic when Close fails")
		}
	}()
	f := &Fd_t{Fops: &failingClose{}}
	ClosePanic(f)
}

type failingClose struct{ fakeFops }

func (f *failingClose) Close() defs.Err_t { return defs.EIO }

func TestCwdFullpath(t *testing.T) {
	cwd := MkRootCwd(&Fd_t{})
	if got := cwd.Fullpath("etc/passwd"); got != "/etc/passwd" {
		t.Fatalf("Fullpath = %q, want /etc/passwd", got)
	}
	if got := cwd.Fullpath("/abs/path"); got != "/abs/path" {
		t.Fatalf("Fullpath should pass through an absolute path unchanged, got %q", got)
	}

	cwd.Path = "/home/user"
	if got := cwd.Fullpath("file.txt"); got != "/home/user/file.txt" {
		t.Fatalf("Fullpath = %q, want /home/user/file.txt", got)
	}
}
