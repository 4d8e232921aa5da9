// Package ide is the PIO (programmed I/O) IDE disk driver: a single
// FIFO request queue, serviced one sector-group at a time, with the
// caller blocking via the scheduler's sleep/wakeup until its request
// completes.
//
// Grounded on original_source/kernel/src/fs/ide.rs (port layout,
// RDMUL/WRMUL command selection, the second-drive probe) and
// biscuit's pci/olddiski.go (the Disk_i{Start,Complete,Intr} interface
// shape this package's Queue mirrors, generalized from a PCI AHCI
// driver's API down to this kernel's simpler single-queue PIO model).
package ide

import (
	"unsafe"

	"novakernel/internal/arch"
	"novakernel/internal/fs/super"
	"novakernel/internal/ioapic"
	"novakernel/internal/lock"
	"novakernel/internal/proc"
	"novakernel/internal/trap"
)

const (
	portBase = 0x1F0

	statBSY  = 0x80
	statDRDY = 0x40
	statDF   = 0x20
	statERR  = 0x01

	cmdRead  = 0x20
	cmdWrite = 0x30
	cmdRdMul = 0xC4
	cmdWrMul = 0xC5

	sectorSize      = 512
	sectorsPerBlock = super.BlkSize / sectorSize
)

type request struct {
	write    bool
	dev      uint32
	blockNo  uint32
	data     []byte // len == super.BlkSize
	done     *bool  // set true on successful completion
	chanTok  uintptr
}

type queue struct {
	mu      lock.Spinlock
	items   []request
	running bool
}

var (
	ideQueue  queue
	haveDisk1 bool
)

func init() {
	if sectorsPerBlock > 7 {
		panic("ide: block size needs more sectors per transfer than one LBA28 command supports")
	}
}

// Init enables the IDE IRQ on the given CPU's local APIC ID (matching
// the source's ioapic::enable(IRQ_IDE, last_cpu)) and probes for a
// second drive.
func Init(apicID uint8) {
	ioapic.Enable(trap.IRQ_IDE, apicID)
	waitReady(false)

	arch.Outb(portBase+6, 0xE0|(1<<4))
	for i := 0; i < 1000; i++ {
		if arch.Inb(portBase+7) != 0 {
			haveDisk1 = true
			break
		}
	}

	arch.Outb(portBase+6, 0xE0|(0<<4)) // switch back to disk 0
}

// HaveDisk1 reports whether the second-drive probe in Init found a
// drive.
func HaveDisk1() bool { return haveDisk1 }

// ReadBlock reads one filesystem block from dev into data (which must
// be super.BlkSize long), blocking the calling kernel thread until the
// read completes. chanTok is the sleep/wakeup token the caller (the
// buffer cache) uses to identify this request — conventionally the
// address of the Buf being filled.
func ReadBlock(dev, blockNo uint32, data []byte, chanTok uintptr) {
	if dev != 0 && !haveDisk1 {
		panic("ide: disk 1 not present")
	}
	doIO(request{write: false, dev: dev, blockNo: blockNo, data: data, chanTok: chanTok})
}

// WriteBlock writes data (super.BlkSize bytes) to dev, blocking until
// the write completes.
func WriteBlock(dev, blockNo uint32, data []byte, chanTok uintptr) {
	if dev != 0 && !haveDisk1 {
		panic("ide: disk 1 not present")
	}
	doIO(request{write: true, dev: dev, blockNo: blockNo, data: data, chanTok: chanTok})
}

func doIO(req request) {
	done := false
	req.done = &done

	ideQueue.mu.Lock()
	ideQueue.items = append(ideQueue.items, req)
	if len(ideQueue.items) == 1 {
		start(&ideQueue.items[0])
	}
	for !done {
		proc.Sleep(req.chanTok, &ideQueue.mu)
	}
	ideQueue.mu.Unlock()
}

// start issues the head-of-queue request to the controller. Must be
// called with ideQueue.mu held.
func start(req *request) {
	sector := req.blockNo * sectorsPerBlock
	readCmd, writeCmd := byte(cmdRead), byte(cmdWrite)
	if sectorsPerBlock != 1 {
		readCmd, writeCmd = cmdRdMul, cmdWrMul
	}

	waitReady(false)
	arch.Outb(0x3F6, 0) // generate interrupt
	arch.Outb(portBase+2, byte(sectorsPerBlock))
	arch.Outb(portBase+3, byte(sector&0xFF))
	arch.Outb(portBase+4, byte((sector>>8)&0xFF))
	arch.Outb(portBase+5, byte((sector>>16)&0xFF))
	arch.Outb(portBase+6, 0xE0|byte((req.dev&1)<<4)|byte((sector>>24)&0x0F))

	if req.write {
		arch.Outb(portBase+7, writeCmd)
		arch.Outsl(portBase+0, unsafe.Pointer(&req.data[0]), int32(super.BlkSize/4))
	} else {
		arch.Outb(portBase+7, readCmd)
	}

	ideQueue.running = true
}

// Intr is the IDE interrupt handler: completes the head-of-queue
// request (reading its data in for a read command) and starts the
// next one, if any.
func Intr() {
	ideQueue.mu.Lock()
	defer ideQueue.mu.Unlock()

	if len(ideQueue.items) == 0 {
		return
	}
	req := ideQueue.items[0]
	ideQueue.items = ideQueue.items[1:]
	ideQueue.running = false

	if !waitReady(true) {
		panic("ide: disk error")
	}
	if !req.write {
		arch.Insl(portBase+0, unsafe.Pointer(&req.data[0]), int32(super.BlkSize/4))
	}
	*req.done = true
	proc.Wakeup(req.chanTok)

	if len(ideQueue.items) > 0 {
		start(&ideQueue.items[0])
	}
}

// waitReady polls the status port until the drive is ready (not busy,
// DRDY set). If checkErr, it also reports whether the completed
// operation signalled an error.
func waitReady(checkErr bool) bool {
	var r byte
	for {
		r = arch.Inb(portBase + 7)
		if r&(statBSY|statDRDY) == statDRDY {
			break
		}
	}
	if checkErr {
		return r&(statDF|statERR) == 0
	}
	return true
}
