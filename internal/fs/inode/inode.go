// Package inode is the inode cache and on-disk inode format: the
// layer path resolution and file I/O sit on top of.
//
// Grounded on original_source/kernel/src/fs/inode.rs (FileType,
// Inode/InodeBody shapes, Icache's get-without-reading semantics,
// trunc()'s direct-then-indirect block freeing) and biscuit's
// fs/super.go field-accessor style (internal/fs/super, which this
// package's on-disk layout builds on).
package inode

import (
	"novakernel/internal/defs"
	"novakernel/internal/fs/bcache"
	"novakernel/internal/fs/super"
	"novakernel/internal/lock"
	"novakernel/internal/path"
)

// FileType is the on-disk inode's type tag.
type FileType uint16

const (
	Invalid FileType = iota
	Directory
	File
	Device
)

// NInode is the fixed capacity of the inode cache (spec §4.9).
const NInode = 50

const onDiskSize = 2 + 2 + 2 + 2 + 4 + (super.NDirect+1)*4

func init() {
	const inodesPerBlock = super.BlkSize / 64
	if onDiskSize != 64 || inodesPerBlock*64 != super.BlkSize {
		panic("inode: on-disk inode size does not divide the block size evenly")
	}
}

// OnDiskInode is the 64-byte on-disk inode record (spec §4.9).
type OnDiskInode struct {
	Type       FileType
	Major      uint16
	Minor      uint16
	NLink      uint16
	Size       uint32
	Addrs      [super.NDirect + 1]uint32
}

// DecodeInode reads an OnDiskInode out of a 64-byte slice, little-endian.
func DecodeInode(b []byte) OnDiskInode {
	var d OnDiskInode
	d.Type = FileType(le16(b[0:]))
	d.Major = le16(b[2:])
	d.Minor = le16(b[4:])
	d.NLink = le16(b[6:])
	d.Size = le32(b[8:])
	for i := range d.Addrs {
		d.Addrs[i] = le32(b[12+i*4:])
	}
	return d
}

// EncodeInode writes d into b (64 bytes), little-endian.
func EncodeInode(d OnDiskInode, b []byte) {
	putLE16(b[0:], uint16(d.Type))
	putLE16(b[2:], d.Major)
	putLE16(b[4:], d.Minor)
	putLE16(b[6:], d.NLink)
	putLE32(b[8:], d.Size)
	for i, a := range d.Addrs {
		putLE32(b[12+i*4:], a)
	}
}

// DirEnt is one fixed-size directory entry: a 16-bit inode number
// (zero marks a free slot) and a fixed, NUL-padded name.
type DirEnt struct {
	Inum uint32
	Name string
}

const dirEntSize = 2 + super.DirSize

// DecodeDirEnt reads one directory entry out of a 16-byte slice.
func DecodeDirEnt(b []byte) DirEnt {
	inum := le16(b[0:])
	name := b[2:dirEntSize]
	n := 0
	for n < len(name) && name[n] != 0 {
		n++
	}
	return DirEnt{Inum: uint32(inum), Name: string(name[:n])}
}

// EncodeDirEnt writes e into b (16 bytes).
func EncodeDirEnt(e DirEnt, b []byte) {
	putLE16(b[0:], uint16(e.Inum))
	name := b[2:dirEntSize]
	for i := range name {
		name[i] = 0
	}
	copy(name, e.Name)
}

// Inode is one cached inode: an identity (dev, inum) plus its body,
// populated lazily the first time Lock is called.
type Inode struct {
	Dev, Inum uint32

	lk    lock.Sleeplock
	valid bool
	body  OnDiskInode

	ref int
}

// Lock acquires the inode's body lock, reading it in from disk on
// first use (spec §4.9: "body is populated lazily on first lock").
func (ip *Inode) Lock() {
	ip.lk.Lock()
	if ip.valid {
		return
	}
	sb := currentSuper
	blockNo := sb.InodeBlock(ip.Inum)
	buf := bcache.Read(ip.Dev, blockNo)
	const inodesPerBlock = super.BlkSize / 64
	off := (ip.Inum % inodesPerBlock) * 64
	ip.body = DecodeInode(buf.Data[off : off+64])
	bcache.Release(buf)
	ip.valid = true
}

// Unlock releases the inode's body lock.
func (ip *Inode) Unlock() { ip.lk.Unlock() }

// IsDir reports whether the (locked) inode is a directory, satisfying
// internal/path.Inode.
func (ip *Inode) IsDir() bool { return ip.body.Type == Directory }

// Type, Size, NLink expose the (locked) inode's metadata.
func (ip *Inode) Type() FileType { return ip.body.Type }
func (ip *Inode) Size() uint32   { return ip.body.Size }
func (ip *Inode) NLink() uint16  { return ip.body.NLink }

// Major and Minor identify the device a Device inode names (spec
// §3/§4.9's device-major dispatch: console is major 1).
func (ip *Inode) Major() uint16 { return ip.body.Major }
func (ip *Inode) Minor() uint16 { return ip.body.Minor }

// Read copies up to len(dst) bytes from the (locked) inode's data
// starting at byte offset off, stopping at Size, and returns the
// number of bytes copied (spec §4.9's read path backing the read
// syscall for regular files and directories). It never allocates, so
// it cannot read past a hole left by an inode trunc raced against a
// concurrent reader; that races with iupdate elsewhere in the kernel,
// not with anything in this read-only path.
func (ip *Inode) Read(dst []byte, off uint32) (int, defs.Err_t) {
	if off >= ip.body.Size {
		return 0, 0
	}
	n := uint32(len(dst))
	if off+n > ip.body.Size {
		n = ip.body.Size - off
	}
	var got uint32
	for got < n {
		blockOff := (off + got) % super.BlkSize
		chunk := super.BlkSize - blockOff
		if chunk > n-got {
			chunk = n - got
		}
		if !ip.readAt(dst[got:got+chunk], off+got) {
			return int(got), defs.EIO
		}
		got += chunk
	}
	return int(got), 0
}

// DirLookup scans a (locked) directory's entries for name, returning
// the referenced inode on a match (spec §4.9's dir_lookup). Entries
// with Inum == 0 are free slots and are skipped. Returns
// internal/path.Inode rather than *Inode so *Inode satisfies
// internal/path.Inode, letting NameX descend without importing this
// package.
func (ip *Inode) DirLookup(name string) (path.Inode, bool) {
	n := ip.body.Size / dirEntSize
	var buf [dirEntSize]byte
	for i := uint32(0); i < n; i++ {
		if !ip.readAt(buf[:], i*dirEntSize) {
			break
		}
		de := DecodeDirEnt(buf[:])
		if de.Inum == 0 || de.Name != name {
			continue
		}
		return get(ip.Dev, de.Inum), true
	}
	return nil, false
}

// readAt reads len(dst) bytes (must fit within one block) starting at
// byte offset off within the inode's data, following bmap. Returns
// false if off lies beyond an allocated block (a sparse/unallocated
// region, which this read-oriented implementation treats as "nothing
// more to scan" rather than zero-filling).
func (ip *Inode) readAt(dst []byte, off uint32) bool {
	blockIdx := off / super.BlkSize
	blockNo, ok := bmap(ip.Dev, ip.body.Addrs, blockIdx)
	if !ok {
		return false
	}
	buf := bcache.Read(ip.Dev, blockNo)
	defer bcache.Release(buf)
	start := off % super.BlkSize
	if int(start)+len(dst) > super.BlkSize {
		return false
	}
	copy(dst, buf.Data[start:start+uint32(len(dst))])
	return true
}

// bmap resolves file-relative block index idx to an on-disk block
// number via the direct blocks and, for idx >= NDirect, the single
// indirect block. It never allocates: an unallocated (zero) slot
// reports ok = false, since this kernel's inode layer only needs to
// serve reads (directory lookups, trunc) and Non-goal demand paging
// covers the write/allocate path.
func bmap(dev uint32, addrs [super.NDirect + 1]uint32, idx uint32) (uint32, bool) {
	if idx < super.NDirect {
		b := addrs[idx]
		return b, b != 0
	}
	idx -= super.NDirect
	if idx >= super.NIndirect {
		return 0, false
	}
	indirectBlock := addrs[super.NDirect]
	if indirectBlock == 0 {
		return 0, false
	}
	buf := bcache.Read(dev, indirectBlock)
	defer bcache.Release(buf)
	b := le32(buf.Data[idx*4:])
	return b, b != 0
}

// trunc frees every data block the (locked) inode owns — direct
// blocks, then the indirect block's slots, then the indirect block
// itself — and zeroes Size. Spec §4.9.
func (ip *Inode) trunc() {
	for i := range ip.body.Addrs[:super.NDirect] {
		if ip.body.Addrs[i] != 0 {
			freeBlock(ip.Dev, ip.body.Addrs[i])
			ip.body.Addrs[i] = 0
		}
	}
	if indirectBlock := ip.body.Addrs[super.NDirect]; indirectBlock != 0 {
		buf := bcache.Read(ip.Dev, indirectBlock)
		for i := 0; i < super.NIndirect; i++ {
			if b := le32(buf.Data[i*4:]); b != 0 {
				freeBlock(ip.Dev, b)
			}
		}
		bcache.Release(buf)
		freeBlock(ip.Dev, indirectBlock)
		ip.body.Addrs[super.NDirect] = 0
	}
	ip.body.Size = 0
	ip.iupdate()
}

// iupdate writes the (locked) inode's body back to its disk block.
// The log layer this would normally go through is a stub (spec's
// Non-goal: "journaling (log layer is stubbed)"), so this writes
// directly through the buffer cache.
func (ip *Inode) iupdate() {
	sb := currentSuper
	blockNo := sb.InodeBlock(ip.Inum)
	buf := bcache.Read(ip.Dev, blockNo)
	const inodesPerBlock = super.BlkSize / 64
	off := (ip.Inum % inodesPerBlock) * 64
	EncodeInode(ip.body, buf.Data[off:off+64])
	buf.Dirty = true
	buf.Write()
	bcache.Release(buf)
}

func freeBlock(dev, blockNo uint32) {
	sb := currentSuper
	bitBlock := sb.BitmapBlock(blockNo)
	buf := bcache.Read(dev, bitBlock)
	defer bcache.Release(buf)
	bitIdx := blockNo % (super.BlkSize * 8)
	buf.Data[bitIdx/8] &^= 1 << (bitIdx % 8)
	buf.Dirty = true
	buf.Write()
}

func le16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func putLE16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}
func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
