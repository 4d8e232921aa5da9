// Package proc implements the fixed-capacity process table and the
// non-preemptible-inside-the-kernel scheduler: alloc_proc, user_init,
// the per-CPU scheduler loop, and sleep/wakeup.
//
// biscuit's own proc/ package (in the retrieved pack) is empty — its
// real scheduler runs user processes as goroutines over a modified Go
// runtime (see tinfo.go's Gptr/Setgptr) rather than xv6-style kernel
// threads with an explicit switch(). That model doesn't fit a
// from-scratch freestanding kernel with no modified runtime, so this
// package is built directly from spec §4.5 and
// original_source/kernel/src/proc.rs's Cpu record, in xv6's own idiom.
package proc

import (
	"unsafe"

	"novakernel/internal/console"
	"novakernel/internal/cpu"
	"novakernel/internal/fd"
	"novakernel/internal/gdt"
	"novakernel/internal/lock"
	"novakernel/internal/mmu"
	"novakernel/internal/trap"
	"novakernel/internal/vm"
)

// NOFILE bounds each process's open-file-descriptor table, sized for
// the syscall surface's fd-returning calls (open/pipe/dup).
const NOFILE = 16

// State is a process's lifecycle stage (spec §3 "Process").
type State int

const (
	Unused State = iota
	Embryo
	Sleeping
	Runnable
	Running
	Zombie
)

func (s State) String() string {
	switch s {
	case Unused:
		return "unused"
	case Embryo:
		return "embryo"
	case Sleeping:
		return "sleeping"
	case Runnable:
		return "runnable"
	case Running:
		return "running"
	case Zombie:
		return "zombie"
	default:
		return "invalid"
	}
}

// NProc is the process table's fixed capacity.
const NProc = 64

// Proc is one process-table slot.
type Proc struct {
	state State
	sz    uint32
	pd    *vm.PageDir
	// kstack is the backing storage for the process's kernel stack,
	// laid out from the top as [TrapFrame][return-to-trapret][Context]
	// (spec §3). Allocated from the kernel heap rather than as raw
	// physical frames: pmm's free-list allocator does not guarantee
	// that two freshly allocated frames are adjacent, and the stack
	// needs one contiguous virtual (and, since it's never paged, also
	// physical) region.
	kstack []byte
	pid    int
	tf     *trap.TrapFrame
	context *cpu.Context
	chanAddr uintptr
	killed   bool
	cwd      interface{} // *inode.Inode; untyped to avoid importing internal/fs/inode
	name     [16]byte

	fds        [NOFILE]*fd.Fd_t
	parent     *Proc
	exitStatus int
}

// Fd returns process p's open file descriptor n, if any.
func (p *Proc) Fd(n int) (*fd.Fd_t, bool) {
	if n < 0 || n >= NOFILE || p.fds[n] == nil {
		return nil, false
	}
	return p.fds[n], true
}

// SetFd installs f at descriptor n, overwriting whatever was there.
func (p *Proc) SetFd(n int, f *fd.Fd_t) { p.fds[n] = f }

// AllocFd installs f at the lowest-numbered free descriptor, matching
// xv6's fdalloc.
func (p *Proc) AllocFd(f *fd.Fd_t) (int, bool) {
	for i := range p.fds {
		if p.fds[i] == nil {
			p.fds[i] = f
			return i, true
		}
	}
	return 0, false
}

// ClearFd drops descriptor n without closing it; the caller must close
// the backing Fdops_i first if that's what it means to do.
func (p *Proc) ClearFd(n int) {
	if n >= 0 && n < NOFILE {
		p.fds[n] = nil
	}
}

// Current returns the process running on the calling CPU, if any.
func Current() (*Proc, bool) {
	p, ok := cpu.Mine().CurrentProc.(*Proc)
	return p, ok && p != nil
}

// State reports p's current lifecycle stage.
func (p *Proc) State() State { return p.state }

// PID returns p's process ID.
func (p *Proc) PID() int { return p.pid }

// Size returns the size in bytes of p's user address space, the upper
// bound any copyin/copyout of user memory must stay under.
func (p *Proc) Size() uint32 { return p.sz }

// Cwd returns the process's current working directory inode
// (dynamically typed as *inode.Inode; proc can't name that type
// directly without importing internal/fs/inode, which would cycle
// back through internal/fs/bcache -> internal/proc).
func (p *Proc) Cwd() interface{} { return p.cwd }

// SetCwd updates the process's current working directory.
func (p *Proc) SetCwd(ip interface{}) { p.cwd = ip }

// Heap is the subset of internal/kheap.Heap that proc needs to size a
// kernel stack.
type Heap interface {
	Alloc(n uintptr) []byte
	Free(b []byte)
}

var (
	ptableLock lock.Spinlock
	table      [NProc]Proc
	nextPid    int
)

// forkretOnce runs the first time any process is scheduled (spec
// §4.5: "forkret ... performs any once-per-kernel-life
// initialization"). Installed by cmd/kernel's boot sequence.
var forkretOnce func()
var forkretDone bool

// SetForkretHook installs the once-per-boot callback forkret runs
// before falling through to trapret.
func SetForkretHook(f func()) { forkretOnce = f }

// runForkretHook is called from the assembly forkret trampoline the
// first time a process is scheduled.
func runForkretHook() {
	if !forkretDone {
		forkretDone = true
		if forkretOnce != nil {
			forkretOnce()
		}
	}
}

// AllocProc seizes an Unused slot, transitions it to Embryo, assigns
// a fresh monotonic pid, and lays out its kernel stack (spec §4.5).
// It returns false if the table is full or the stack allocation
// fails.
func AllocProc(heap Heap) (*Proc, bool) {
	ptableLock.Lock()
	var p *Proc
	for i := range table {
		if table[i].state == Unused {
			p = &table[i]
			break
		}
	}
	if p == nil {
		ptableLock.Unlock()
		return nil, false
	}
	p.state = Embryo
	nextPid++
	p.pid = nextPid
	ptableLock.Unlock()

	stack := heap.Alloc(mmu.KStackSize)
	if stack == nil {
		ptableLock.Lock()
		p.state = Unused
		p.pid = 0
		ptableLock.Unlock()
		return nil, false
	}
	p.kstack = stack

	sp := len(stack)

	sp -= int(unsafe.Sizeof(trap.TrapFrame{}))
	tfOff := sp
	p.tf = (*trap.TrapFrame)(unsafe.Pointer(&stack[tfOff]))
	*p.tf = trap.TrapFrame{}

	// xv6 reserves a word here holding trapret's address, so forkret's
	// own closing `ret` falls into it; this package's forkret instead
	// inlines the trapret epilogue directly (see switch_386.s), since
	// Go's assembler has no convenient way to take the address of
	// another package's unexported label.
	sp -= int(unsafe.Sizeof(cpu.Context{}))
	ctxOff := sp
	p.context = (*cpu.Context)(unsafe.Pointer(&stack[ctxOff]))
	*p.context = cpu.Context{EIP: forkretEntryPC()}

	return p, true
}

// free returns p to Unused, releasing its kernel stack and address
// space. Called once a Zombie has been reaped.
func free(heap Heap, fa vm.FrameAllocator, p *Proc) {
	if p.pd != nil {
		vm.FreeVM(fa, p.pd, p.sz)
		p.pd = nil
	}
	if p.kstack != nil {
		heap.Free(p.kstack)
		p.kstack = nil
	}
	p.state = Unused
	p.tf = nil
	p.context = nil
	p.sz = 0
	p.killed = false
	p.name = [16]byte{}
}

// UserInit constructs PID 1 (spec §4.5): a fresh kernel page
// directory, a user page at VA 0 populated from code, and a trap
// frame that begins execution at eip=0 in user mode with interrupts
// enabled.
func UserInit(heap Heap, fa vm.FrameAllocator, dataStart, physTop uint32, code []byte, rootInode interface{}) (*Proc, bool) {
	p, ok := AllocProc(heap)
	if !ok {
		return nil, false
	}
	pd, ok := vm.SetupKVM(fa, dataStart, physTop)
	if !ok {
		return nil, false
	}
	if !(vm.UVM{}).Init(fa, pd, code) {
		return nil, false
	}
	p.pd = pd
	p.sz = mmu.PageSize

	p.tf.CS = uint16(gdt.SegUCode<<3 | gdt.DPL_USER)
	p.tf.DS = uint16(gdt.SegUData<<3 | gdt.DPL_USER)
	p.tf.ES = p.tf.DS
	p.tf.SS = p.tf.DS
	p.tf.EFLAGS = 0x200 // IF
	p.tf.ESP = mmu.PageSize
	p.tf.EIP = 0

	p.cwd = rootInode
	copy(p.name[:], "init")

	// init inherits no descriptors from anywhere, so it gets stdin,
	// stdout, and stderr opened onto the console directly, matching
	// xv6's userinit (three console opens before the first exec).
	dev := console.NewDevice()
	for i := 0; i < 3; i++ {
		p.fds[i] = &fd.Fd_t{Fops: dev, Perms: fd.FD_READ | fd.FD_WRITE}
	}

	ptableLock.Lock()
	p.state = Runnable
	ptableLock.Unlock()
	return p, true
}

var memDataStart, memPhysTop uint32

// SetMemoryLayout records the kernel-mapping bounds Fork builds every
// child address space with, matching the values cmd/kernel's boot
// sequence already computed once for vm.SetupKVM.
func SetMemoryLayout(dataStart, physTop uint32) {
	memDataStart, memPhysTop = dataStart, physTop
}

// Fork duplicates the calling process (spec §4.5's fork: a child
// process with a copy of the parent's memory, open files, and trap
// frame). Returns the new child's pid to the parent; the child's own
// trap frame has eax forced to 0, so it observes fork's return value
// as 0 once scheduled (spec §8's fork/wait end-to-end scenario).
func Fork(heap Heap, fa vm.FrameAllocator) (int, bool) {
	parent, ok := Current()
	if !ok {
		return 0, false
	}

	child, ok := AllocProc(heap)
	if !ok {
		return 0, false
	}

	pd, ok := vm.Copy(fa, parent.pd, memDataStart, memPhysTop, parent.sz)
	if !ok {
		free(heap, fa, child)
		return 0, false
	}
	child.pd = pd
	child.sz = parent.sz

	*child.tf = *parent.tf
	child.tf.EAX = 0

	for i, f := range parent.fds {
		if f == nil {
			continue
		}
		if nf, err := fd.Copyfd(f); err == 0 {
			child.fds[i] = nf
		}
	}
	child.cwd = parent.cwd
	child.parent = parent
	child.name = parent.name

	ptableLock.Lock()
	child.state = Runnable
	ptableLock.Unlock()

	return child.pid, true
}

// waitLock protects Wait's scan-then-sleep loop. A separate lock from
// ptableLock, matching xv6's own wait(): Sleep's lk != &ptableLock path
// locks ptableLock, drops lk, then later re-locks lk after retaking
// ptableLock — sleeping directly on ptableLock itself would skip that
// handoff and double-acquire it.
var waitLock lock.Spinlock

// Wait blocks until one of the calling process's children exits,
// reaps it, and returns its pid and exit status (spec §4.5's wait).
// ok is false if the caller has no children at all.
func Wait(heap Heap, fa vm.FrameAllocator) (pid int, status int, ok bool) {
	parent, pok := Current()
	if !pok {
		return 0, 0, false
	}

	waitLock.Lock()
	defer waitLock.Unlock()

	for {
		ptableLock.Lock()
		haveChildren := false
		var zombie *Proc
		for i := range table {
			c := &table[i]
			if c.parent != parent {
				continue
			}
			haveChildren = true
			if c.state == Zombie {
				zombie = c
				break
			}
		}
		if zombie != nil {
			pid = zombie.pid
			status = zombie.exitStatus
			ptableLock.Unlock()
			free(heap, fa, zombie)
			zombie.parent = nil
			return pid, status, true
		}
		ptableLock.Unlock()
		if !haveChildren {
			return 0, 0, false
		}
		Sleep(uintptr(unsafe.Pointer(parent)), &waitLock)
	}
}

// Exit closes the calling process's open files, marks it a Zombie for
// its parent to reap via Wait, and wakes that parent (spec §4.5's
// exit). Never returns.
func Exit(status int) {
	p, ok := Current()
	if !ok {
		panic("proc.Exit: no current process")
	}

	for i, f := range p.fds {
		if f != nil {
			f.Fops.Close()
			p.fds[i] = nil
		}
	}

	ptableLock.Lock()
	p.exitStatus = status
	p.state = Zombie
	ptableLock.Unlock()

	if p.parent != nil {
		Wakeup(uintptr(unsafe.Pointer(p.parent)))
	}

	// switchToScheduler must be called with ptableLock held (see
	// Scheduler's comment): the process never runs again, so nothing
	// here ever unlocks it — Scheduler's own post-switch Unlock handles
	// that, same as for a process returning from Sleep or Yield.
	ptableLock.Lock()
	switchToScheduler(cpu.Mine())
	panic("proc.Exit: zombie process was rescheduled")
}

// Sleep must be called with lk held, protecting the condition being
// waited on (spec §4.5 "sleep(chan, lk)"). It takes the process-table
// lock before releasing lk so an interleaved wakeup cannot be lost.
func Sleep(chanAddr uintptr, lk *lock.Spinlock) {
	c := cpu.Mine()
	p, ok := c.CurrentProc.(*Proc)
	if !ok || p == nil {
		panic("proc.Sleep: no current process")
	}

	if lk != &ptableLock {
		ptableLock.Lock()
		lk.Unlock()
	}

	p.chanAddr = chanAddr
	p.state = Sleeping

	switchToScheduler(c)

	p.chanAddr = 0

	if lk != &ptableLock {
		ptableLock.Unlock()
		lk.Lock()
	}
}

// Wakeup transitions every Sleeping process waiting on chanAddr to
// Runnable (spec §4.5 "wakeup(chan)").
func Wakeup(chanAddr uintptr) {
	ptableLock.Lock()
	defer ptableLock.Unlock()
	for i := range table {
		if table[i].state == Sleeping && table[i].chanAddr == chanAddr {
			table[i].state = Runnable
		}
	}
}

// lock.waiter implementation, installed on package init via
// lock.SetScheduler so internal/lock's Sleeplock can call back into
// the scheduler without an import cycle.
type schedulerBridge struct{}

func (schedulerBridge) Sleep(chanToken uintptr, lk *lock.Spinlock) { Sleep(chanToken, lk) }
func (schedulerBridge) Wakeup(chanToken uintptr)                  { Wakeup(chanToken) }

func init() {
	lock.SetScheduler(schedulerBridge{})
}

// Scheduler runs forever on the calling CPU (spec §4.5 "Scheduler
// loop"), picking a Runnable process, switching to it, and reclaiming
// control when it yields, sleeps, or exits. It never returns.
func Scheduler(c *cpu.CPU, kpgdir *vm.PageDir) {
	for {
		c.CurrentProc = nil

		ptableLock.Lock()
		var p *Proc
		for i := range table {
			if table[i].state == Runnable {
				p = &table[i]
				break
			}
		}
		if p == nil {
			ptableLock.Unlock()
			continue
		}

		c.CurrentProc = p
		(vm.UVM{}).Switch(&c.GDT, &c.TSS, p.pd, kstackTop(p))
		p.state = Running

		// ptableLock stays held across switchTo, matching xv6's
		// scheduler(): the lock is tied to this CPU (lock.Spinlock's
		// Holding()), not to a particular kernel stack, so it is still
		// "held" once execution resumes here after a process sleeps or
		// yields back into the scheduler. Sleep and Yield rely on this:
		// both call switchToScheduler while holding ptableLock and
		// expect it still held when they're switched back into.
		switchTo(&c.Scheduler, p.context)

		vm.SwitchKVM(kpgdir)
		ptableLock.Unlock()
	}
}

func kstackTop(p *Proc) uint32 {
	return uint32(uintptr(unsafe.Pointer(&p.kstack[len(p.kstack)-1])) + 1)
}

func switchToScheduler(c *cpu.CPU) {
	p := c.CurrentProc.(*Proc)
	switchTo(p.context, &c.Scheduler)
}

// Yield gives the CPU back to the scheduler without sleeping on a
// channel (spec §4.6: "after a user-mode timer tick the handler
// yields (re-enters the scheduler) before iret").
func Yield() {
	ptableLock.Lock()
	c := cpu.Mine()
	if p, ok := c.CurrentProc.(*Proc); ok && p != nil {
		p.state = Runnable
		switchToScheduler(c)
	}
	ptableLock.Unlock()
}

// Kill marks the process owning pid for termination; a killed process
// observes p.killed on its next trap and exits instead of resuming
// (spec §7: "User-mode faults ... kill the process; scheduler
// reclaims").
func Kill(pid int) bool {
	ptableLock.Lock()
	defer ptableLock.Unlock()
	for i := range table {
		if table[i].pid == pid {
			table[i].killed = true
			if table[i].state == Sleeping {
				table[i].state = Runnable
			}
			return true
		}
	}
	return false
}
