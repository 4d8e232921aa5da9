// Package fd implements the per-process open-file-descriptor table:
// the Fd_t a file, pipe, or device handle is boxed into once opened,
// and the Cwd_t a process's current working directory is tracked in.
// Not itself a spec [MODULE], but the ambient structure the syscall
// layer needs to hand userspace small integer fds that outlive any
// single internal/path lookup.
//
// Grounded on biscuit's fd/fd.go; Fdops_i is trimmed to the
// operations a descriptor actually needs to support generically
// (Read/Write/Close/Reopen), and Cwd_t's path bookkeeping is
// rewritten against internal/path's string-based resolver instead of
// biscuit's Ustr/bpath types, which this pack does not carry.
package fd

import (
	"sync"

	"novakernel/internal/defs"
)

// Descriptor permission bits.
const (
	FD_READ    = 0x1
	FD_WRITE   = 0x2
	FD_CLOEXEC = 0x4
)

// Fdops_i is the operation set every open file description backs,
// whether it resolves to a regular file, a directory, a pipe, or a
// device (spec §3's device-major dispatch).
type Fdops_i interface {
	Read(buf []byte) (int, defs.Err_t)
	Write(buf []byte) (int, defs.Err_t)
	Close() defs.Err_t
	// Reopen is called when a descriptor is duplicated (dup2, fork):
	// it gives the backing implementation a chance to bump a shared
	// refcount before the copy starts fielding calls independently.
	Reopen() defs.Err_t
}

// Fd_t is one entry in a process's open-file-descriptor table. Fops
// is an interface value, so copying an Fd_t copies the reference, not
// the underlying file description.
type Fd_t struct {
	Fops  Fdops_i
	Perms int
}

// Copyfd duplicates fd by reopening its backing description, the way
// dup2 and fork populate a new table slot from an existing one.
func Copyfd(f *Fd_t) (*Fd_t, defs.Err_t) {
	nfd := &Fd_t{}
	*nfd = *f
	if err := nfd.Fops.Reopen(); err != 0 {
		return nil, err
	}
	return nfd, 0
}

// ClosePanic closes f, panicking if the close fails. Used at call
// sites where failure would mean an invariant the kernel depends on
// (e.g. closing a descriptor it just itself opened) has been
// violated.
func ClosePanic(f *Fd_t) {
	if f.Fops.Close() != 0 {
		panic("fd: close must succeed")
	}
}

// Cwd_t tracks a process's current working directory: both the open
// descriptor on it (so operations like fchdir can reuse it) and its
// canonical path string, kept in sync so Fullpath never has to touch
// the filesystem.
type Cwd_t struct {
	sync.Mutex // serializes concurrent chdirs
	Fd         *Fd_t
	Path       string
}

// Fullpath returns p joined onto cwd's path if p is relative;
// absolute paths are returned unchanged.
func (cwd *Cwd_t) Fullpath(p string) string {
	if len(p) > 0 && p[0] == '/' {
		return p
	}
	if cwd.Path == "/" {
		return "/" + p
	}
	return cwd.Path + "/" + p
}

// MkRootCwd constructs a Cwd_t rooted at "/", backed by fd (the
// descriptor on the root directory).
func MkRootCwd(fd *Fd_t) *Cwd_t {
	return &Cwd_t{Fd: fd, Path: "/"}
}
