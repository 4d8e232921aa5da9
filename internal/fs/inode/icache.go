package inode

import (
	"novakernel/internal/fs/bcache"
	"novakernel/internal/fs/super"
	"novakernel/internal/hashtable"
	"novakernel/internal/lock"
)

// RootDev and RootIno name the filesystem root, re-exported from
// internal/fs/super so callers outside this package family don't need
// to import both.
const (
	RootDev = super.RootDev
	RootIno = super.RootIno
)

var currentSuper super.Superblock

type key struct{ dev, inum uint32 }

func hashKey(k key) uint32 { return k.dev*2654435761 + k.inum }

type node struct {
	inode      Inode
	prev, next *node
}

type icache struct {
	mu    lock.Spinlock
	index *hashtable.Table[key, *node]
	head, tail *node
	arena [NInode]node
}

var ic icache

// Init reads the superblock from dev's block 1 and resets the inode
// cache's LRU ring, the same static-arena-plus-hash-index arrangement
// internal/fs/bcache uses.
func Init(dev uint32) {
	buf := bcache.Read(dev, super.SuperBlockNo)
	currentSuper = super.Decode(buf.Data[:])
	bcache.Release(buf)

	ic.index = hashtable.New[key, *node](NInode, hashKey)
	for i := range ic.arena {
		n := &ic.arena[i]
		if i == 0 {
			ic.head = n
		} else {
			n.prev = &ic.arena[i-1]
			ic.arena[i-1].next = n
		}
	}
	ic.tail = &ic.arena[NInode-1]
}

func (c *icache) moveToFront(n *node) {
	if n == c.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if n == c.tail {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
}

// get returns a reference to the cached inode (dev, inum), without
// reading anything from disk (spec §4.9: "get(dev, inum) returns a
// reference without reading from disk; body is populated lazily on
// first lock").
func get(dev, inum uint32) *Inode {
	k := key{dev, inum}

	ic.mu.Lock()
	defer ic.mu.Unlock()

	if n, ok := ic.index.Get(k); ok {
		n.inode.ref++
		ic.moveToFront(n)
		return &n.inode
	}

	for n := ic.tail; n != nil; n = n.prev {
		if n.inode.ref != 0 {
			continue
		}
		if n.inode.valid || n.inode.Dev != 0 || n.inode.Inum != 0 {
			ic.index.Del(key{n.inode.Dev, n.inode.Inum})
		}
		n.inode = Inode{Dev: dev, Inum: inum, ref: 1}
		ic.index.Set(k, n)
		ic.moveToFront(n)
		return &n.inode
	}
	panic("inode: no free cache slots")
}

// Get returns a reference to inode (dev, inum). Exported for callers
// (path resolution's Resolver, the syscall layer) that need to start a
// lookup from a known inode number rather than walking a path.
func Get(dev, inum uint32) *Inode { return get(dev, inum) }

// Put releases the caller's reference to ip, acquired from Get,
// DirLookup, or a Resolver's Root/Cwd. If ip's link count has already
// dropped to zero and this is the last reference, its data is
// truncated and its on-disk type cleared before the slot goes back to
// the free list (spec §3's inode lifecycle: "last reference drops and
// nlink == 0 && valid: truncate, free, and evict"), matching xv6's
// iput. Nothing in this kernel's syscall surface drives nlink to zero
// (no unlink/rmdir is implemented), so this path is reachable only in
// principle today; it is wired rather than left as dead code for when
// that surface grows.
func Put(ip *Inode) {
	ip.Lock()
	if ip.valid && ip.body.NLink == 0 {
		ic.mu.Lock()
		last := ip.ref == 1
		ic.mu.Unlock()
		if last {
			ip.trunc()
			ip.body.Type = Invalid
			ip.iupdate()
			ip.valid = false
		}
	}
	ip.Unlock()

	ic.mu.Lock()
	defer ic.mu.Unlock()
	ip.ref--
	if ip.ref < 0 {
		panic("inode: Put of inode with no outstanding reference")
	}
}
