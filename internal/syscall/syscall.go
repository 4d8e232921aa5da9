// Package syscall dispatches the trap vector T_SYSCALL to one of the
// minimal syscall surface spec §2 names: exit, fork, wait, open, read,
// write, close, dup, chdir, pipe, mknod, fstat. exec is left
// unimplemented, per the spec's own "exec (if implemented)" qualifier.
//
// Grounded on original_source/kernel/src/trap.rs's "dispatch by
// trapframe.eax; result in eax" and xv6's syscall.c argument-fetch
// convention (arguments pushed on the user stack by the calling
// convention before `int`, fetched relative to the trapframe's saved
// user esp) — this pack's original_source stops short of implementing
// any syscall body, so the numbering and per-call argument shapes
// below are built directly from spec §2's "User code enters kernel via
// int 0x40; syscall number in eax; arguments on the user stack; return
// value in eax," generalized the way the rest of this kernel expands
// xv6's idiom into Go.
package syscall

import (
	"novakernel/internal/console"
	"novakernel/internal/defs"
	"novakernel/internal/fd"
	"novakernel/internal/fs/inode"
	"novakernel/internal/path"
	"novakernel/internal/pipe"
	"novakernel/internal/proc"
	"novakernel/internal/trap"
	"novakernel/internal/vm"
)

// Syscall numbers: fork is 1 and exit 2 (xv6's numbering), then the
// rest follow the order in the package comment.
const (
	SysFork = iota + 1
	SysExit
	SysWait
	SysOpen
	SysRead
	SysWrite
	SysClose
	SysDup
	SysChdir
	SysPipe
	SysMknod
	SysFstat
)

// Open flags (spec §4.9's open; a subset of POSIX's, matching what a
// minimal init needs).
const (
	O_RDONLY = 0x0
	O_WRONLY = 0x1
	O_RDWR   = 0x2
	O_CREATE = 0x200
)

var (
	theHeap proc.Heap
	theFA   vm.FrameAllocator
)

// Init records the kernel heap and physical-frame allocator Fork needs
// to build a child's kernel stack and address space. Called once from
// cmd/kernel's boot sequence, the same wiring shape as
// proc.SetForkretHook.
func Init(heap proc.Heap, fa vm.FrameAllocator) {
	theHeap = heap
	theFA = fa
}

// errno packs a defs.Err_t into the uint32 trap.Handlers.Syscall
// returns: trap.Dispatch stores it verbatim into tf.EAX, and a
// negative Err_t reads back as a large unsigned value the userland
// syscall stub reinterprets as negative, matching xv6's int-return
// convention.
func errno(e defs.Err_t) uint32 { return uint32(int32(e)) }

// Dispatch is installed as trap.Handlers.Syscall. tf.EAX holds the
// syscall number on entry (set by the user-mode stub before `int
// 0x40`); the return value assigned here overwrites it.
func Dispatch(tf *trap.TrapFrame) uint32 {
	p, ok := proc.Current()
	if !ok {
		return errno(defs.EINVAL)
	}

	switch tf.EAX {
	case SysFork:
		return sysFork()
	case SysExit:
		return sysExit(p, tf)
	case SysWait:
		return sysWait(p, tf)
	case SysOpen:
		return sysOpen(p, tf)
	case SysRead:
		return sysRead(p, tf)
	case SysWrite:
		return sysWrite(p, tf)
	case SysClose:
		return sysClose(p, tf)
	case SysDup:
		return sysDup(p, tf)
	case SysChdir:
		return sysChdir(p, tf)
	case SysPipe:
		return sysPipe(p, tf)
	case SysMknod:
		return sysMknod(tf)
	case SysFstat:
		return sysFstat(p, tf)
	default:
		return errno(defs.EINVAL)
	}
}

func sysFork() uint32 {
	pid, ok := proc.Fork(theHeap, theFA)
	if !ok {
		return errno(defs.ENOMEM)
	}
	return uint32(pid)
}

func sysExit(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	status, _ := argInt(p, tf, 0)
	proc.Exit(int(status))
	panic("syscall: exit returned")
}

func sysWait(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	pid, status, ok := proc.Wait(theHeap, theFA)
	if !ok {
		return errno(defs.EINVAL)
	}
	if statusAddr, ok := argInt(p, tf, 0); ok && statusAddr != 0 {
		putInt(p, uint32(statusAddr), int32(status))
	}
	return uint32(pid)
}

func sysOpen(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	pathStr, ok := argStr(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	flags, _ := argInt(p, tf, 1)

	ip, ok := path.FromName(inode.Resolver{Proc: p}, pathStr)
	if !ok {
		if flags&O_CREATE == 0 {
			return errno(defs.ENOENT)
		}
		// mknod/open(O_CREAT) cannot allocate a new on-disk inode or
		// data block: the filesystem image the kernel mounts is
		// read-only initially (spec §2's external-inputs framing), and
		// internal/fs/inode's bmap deliberately never allocates (this
		// kernel's Non-goal: demand paging). Creating a file is
		// therefore bounded to "fails cleanly," not silently
		// succeeding against storage that was never writable.
		return errno(defs.ENOSPC)
	}
	underlying, ok := ip.(*inode.Inode)
	if !ok {
		return errno(defs.EINVAL)
	}

	underlying.Lock()
	isDir := underlying.IsDir()
	major, minor := underlying.Major(), underlying.Minor()
	typ := underlying.Type()
	underlying.Unlock()

	if isDir && flags != O_RDONLY {
		inode.Put(underlying)
		return errno(defs.EISDIR)
	}

	var ops fd.Fdops_i = &inodeFile{ip: underlying}
	if typ == inode.Device {
		dev, ok := deviceOps(int(major), int(minor))
		if !ok {
			inode.Put(underlying)
			return errno(defs.EINVAL)
		}
		ops = dev
	}

	desc := &fd.Fd_t{Fops: ops, Perms: permsFor(flags)}
	n, ok := p.AllocFd(desc)
	if !ok {
		if typ != inode.Device {
			inode.Put(underlying)
		}
		return errno(defs.EMFILE)
	}
	return uint32(n)
}

func permsFor(flags int32) int {
	switch flags & (O_RDONLY | O_WRONLY | O_RDWR) {
	case O_WRONLY:
		return fd.FD_WRITE
	case O_RDWR:
		return fd.FD_READ | fd.FD_WRITE
	default:
		return fd.FD_READ
	}
}

func sysRead(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	f, ok := fdArg(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	bufAddr, _ := argInt(p, tf, 1)
	n, _ := argInt(p, tf, 2)
	if n < 0 {
		return errno(defs.EINVAL)
	}
	tmp := make([]byte, n)
	got, err := f.Fops.Read(tmp)
	if err != 0 {
		return errno(err)
	}
	copyout(p, uint32(bufAddr), tmp[:got])
	return uint32(got)
}

func sysWrite(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	f, ok := fdArg(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	bufAddr, _ := argInt(p, tf, 1)
	n, _ := argInt(p, tf, 2)
	if n < 0 {
		return errno(defs.EINVAL)
	}
	tmp := make([]byte, n)
	copyin(p, uint32(bufAddr), tmp)
	wrote, err := f.Fops.Write(tmp)
	if err != 0 {
		return errno(err)
	}
	return uint32(wrote)
}

func sysClose(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	n, ok := argInt(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	f, ok := p.Fd(int(n))
	if !ok {
		return errno(defs.EINVAL)
	}
	err := f.Fops.Close()
	p.ClearFd(int(n))
	return errno(err)
}

func sysDup(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	f, ok := fdArg(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	nf, err := fd.Copyfd(f)
	if err != 0 {
		return errno(err)
	}
	n, ok := p.AllocFd(nf)
	if !ok {
		nf.Fops.Close()
		return errno(defs.EMFILE)
	}
	return uint32(n)
}

func sysChdir(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	pathStr, ok := argStr(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	ip, ok := path.FromName(inode.Resolver{Proc: p}, pathStr)
	if !ok {
		return errno(defs.ENOENT)
	}
	underlying, ok := ip.(*inode.Inode)
	if !ok {
		return errno(defs.EINVAL)
	}
	underlying.Lock()
	isDir := underlying.IsDir()
	underlying.Unlock()
	if !isDir {
		inode.Put(underlying)
		return errno(defs.ENOTDIR)
	}
	p.SetCwd(underlying)
	return 0
}

func sysPipe(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	fdsAddr, ok := argInt(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	r, w := pipe.New()
	rn, ok := p.AllocFd(&fd.Fd_t{Fops: r, Perms: fd.FD_READ})
	if !ok {
		return errno(defs.EMFILE)
	}
	wn, ok := p.AllocFd(&fd.Fd_t{Fops: w, Perms: fd.FD_WRITE})
	if !ok {
		p.ClearFd(rn)
		return errno(defs.EMFILE)
	}
	putInt(p, uint32(fdsAddr), int32(rn))
	putInt(p, uint32(fdsAddr)+4, int32(wn))
	return 0
}

func sysMknod(tf *trap.TrapFrame) uint32 {
	// Creating a directory entry for a new device node has the same
	// on-disk-allocation problem open(O_CREAT) does: the mounted image
	// is read-only initially and this kernel's inode layer never
	// allocates blocks or inodes (see sysOpen's comment). mknod is
	// wired into dispatch (it is part of spec §2's named surface) but
	// bounded to report failure rather than silently no-op.
	return errno(defs.ENOSPC)
}

func sysFstat(p *proc.Proc, tf *trap.TrapFrame) uint32 {
	f, ok := fdArg(p, tf, 0)
	if !ok {
		return errno(defs.EINVAL)
	}
	statAddr, _ := argInt(p, tf, 1)
	ip, ok := f.Fops.(*inodeFile)
	if !ok {
		return errno(defs.EINVAL)
	}
	ip.ip.Lock()
	typ := uint32(ip.ip.Type())
	size := ip.ip.Size()
	nlink := uint32(ip.ip.NLink())
	ip.ip.Unlock()
	putInt(p, uint32(statAddr)+0, int32(typ))
	putInt(p, uint32(statAddr)+4, int32(size))
	putInt(p, uint32(statAddr)+8, int32(nlink))
	return 0
}

func fdArg(p *proc.Proc, tf *trap.TrapFrame, n int) (*fd.Fd_t, bool) {
	raw, ok := argInt(p, tf, n)
	if !ok {
		return nil, false
	}
	return p.Fd(int(raw))
}

// inodeFile adapts a locked-on-demand *inode.Inode to fd.Fdops_i for a
// regular file or directory descriptor.
type inodeFile struct {
	ip  *inode.Inode
	off uint32
}

func (f *inodeFile) Read(dst []byte) (int, defs.Err_t) {
	f.ip.Lock()
	n, err := f.ip.Read(dst, f.off)
	f.ip.Unlock()
	f.off += uint32(n)
	return n, err
}

// Write on a regular file hits the same read-only-image constraint
// sysOpen/sysMknod document: there is no block-allocation path to grow
// a file's data with.
func (f *inodeFile) Write([]byte) (int, defs.Err_t) { return 0, defs.ENOSPC }

func (f *inodeFile) Close() defs.Err_t {
	inode.Put(f.ip)
	return 0
}

func (f *inodeFile) Reopen() defs.Err_t { return 0 }

// deviceOps maps a device inode's (major, minor) to its Fdops_i
// implementation (spec §3's device-major dispatch). Only the console
// is wired; other majors named in internal/defs (D_SUD/D_SUS/
// D_DEVNULL/D_RAWDISK/D_STAT/D_PROF) have no userspace-facing file in
// this minimal surface.
func deviceOps(major, minor int) (fd.Fdops_i, bool) {
	if major == defs.D_CONSOLE {
		return console.NewDevice(), true
	}
	return nil, false
}
