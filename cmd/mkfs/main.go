// Command mkfs builds the on-disk filesystem image spec §4.9
// describes: a host-side tool that lays out the boot block,
// superblock, (empty, reserved) log region, inode blocks, free
// bitmap, and data blocks, then replicates a skeleton directory tree
// from the host into it.
//
// Grounded on original_source/mkfs/src/main.rs's FsBuilder (same
// alloc_inode/append_inode/alloc_block sequencing, same meta-block
// layout arithmetic) and biscuit's mkfs/mkfs.go (addfiles/copydata's
// filepath.WalkDir-driven replication, panic-on-host-I/O-error style).
// Uses internal/fs/super and internal/fs/inode's own Encode functions
// directly rather than redefining the on-disk layout a second time, so
// an image this tool writes is guaranteed byte-for-byte compatible
// with what the kernel's reader expects.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"

	kfs "novakernel/internal/fs/inode"
	"novakernel/internal/fs/super"
)

// Image geometry (blocks), matching original_source/mkfs/src/main.rs's
// constants: FS_SIZE 1000, N_INODES 200, LOG_SIZE 30.
const (
	fsSize  = 1000
	nInodes = 200
	nLog    = 30

	inodesPerBlock = super.BlkSize / 64
	nInodeBlocks   = nInodes/inodesPerBlock + 1
	nBitmapBlocks  = fsSize/(super.BlkSize*8) + 1
	nMeta          = 2 + nLog + nInodeBlocks + nBitmapBlocks
	nDataBlocks    = fsSize - nMeta
)

// builder accumulates an image in memory before a single flush to
// disk: simpler than original_source's seek-per-operation File I/O,
// and the whole image comfortably fits in memory at this size.
type builder struct {
	blocks    [][super.BlkSize]byte
	sb        super.Superblock
	freeInode uint32
	freeBlock uint32
}

func newBuilder() *builder {
	b := &builder{
		blocks: make([][super.BlkSize]byte, fsSize),
		sb: super.Superblock{
			Size:       fsSize,
			NBlocks:    nDataBlocks,
			NInodes:    nInodes,
			NLog:       nLog,
			LogStart:   2,
			InodeStart: 2 + nLog,
			BmapStart:  2 + nLog + nInodeBlocks,
		},
		freeInode: 1,
		freeBlock: nMeta,
	}
	super.Encode(b.sb, b.blocks[super.SuperBlockNo][:])
	return b
}

func (b *builder) readInode(inum uint32) kfs.OnDiskInode {
	blockNo := b.sb.InodeBlock(inum)
	off := (inum % inodesPerBlock) * 64
	return kfs.DecodeInode(b.blocks[blockNo][off : off+64])
}

func (b *builder) writeInode(inum uint32, d kfs.OnDiskInode) {
	blockNo := b.sb.InodeBlock(inum)
	off := (inum % inodesPerBlock) * 64
	kfs.EncodeInode(d, b.blocks[blockNo][off:off+64])
}

// allocInode reserves the next inode number and writes a fresh,
// empty record of the given type.
func (b *builder) allocInode(ty kfs.FileType) uint32 {
	inum := b.freeInode
	b.freeInode++
	b.writeInode(inum, kfs.OnDiskInode{Type: ty, NLink: 1})
	return inum
}

// takeNextBlock reserves the next free data block.
func (b *builder) takeNextBlock() uint32 {
	r := b.freeBlock
	b.freeBlock++
	if r >= fsSize {
		panic("mkfs: image ran out of space")
	}
	return r
}

// appendInode appends data to inum's file, growing its direct and (if
// needed) single indirect block list as it goes, matching
// original_source's append_inode.
func (b *builder) appendInode(inum uint32, data []byte) {
	din := b.readInode(inum)
	off := din.Size

	for len(data) > 0 {
		fbn := off / super.BlkSize
		var sect uint32
		if fbn < super.NDirect {
			if din.Addrs[fbn] == 0 {
				din.Addrs[fbn] = b.takeNextBlock()
			}
			sect = din.Addrs[fbn]
		} else {
			if din.Addrs[super.NDirect] == 0 {
				din.Addrs[super.NDirect] = b.takeNextBlock()
			}
			indirectBlock := din.Addrs[super.NDirect]
			idx := fbn - super.NDirect
			slot := le32(b.blocks[indirectBlock][idx*4:])
			if slot == 0 {
				slot = b.takeNextBlock()
				putLE32(b.blocks[indirectBlock][idx*4:], slot)
			}
			sect = slot
		}

		begin := off % super.BlkSize
		n := len(data)
		if room := int(super.BlkSize - begin); n > room {
			n = room
		}
		copy(b.blocks[sect][begin:], data[:n])

		off += uint32(n)
		data = data[n:]
	}

	din.Size = off
	b.writeInode(inum, din)
}

// finalizeBitmap marks every block below freeBlock as used — the
// meta blocks and every data block appendInode has handed out.
func (b *builder) finalizeBitmap() {
	var buf [super.BlkSize]byte
	for i := uint32(0); i < b.freeBlock; i++ {
		buf[i/8] |= 1 << (i % 8)
	}
	b.blocks[b.sb.BmapStart] = buf
}

func (b *builder) flush(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for i := range b.blocks {
		if _, err := f.Write(b.blocks[i][:]); err != nil {
			return err
		}
	}
	return nil
}

// validName reports whether name is valid UTF-8 and short enough to
// survive EncodeDirEnt's fixed 14-byte field without silent
// truncation.
func validName(name string) bool {
	if len(name) == 0 || len(name) >= super.DirSize {
		return false
	}
	if strings.ContainsRune(name, '/') {
		return false
	}
	if _, err := unicode.UTF8.NewEncoder().String(name); err != nil {
		return false
	}
	return true
}

func addDirEnt(b *builder, dirInum, childInum uint32, name string) {
	var raw [16]byte
	kfs.EncodeDirEnt(kfs.DirEnt{Inum: childInum, Name: name}, raw[:])
	b.appendInode(dirInum, raw[:])
}

// addFiles walks skelDir and replicates its tree into b, rooted at
// rootInum. Directories are visited before their children (WalkDir's
// lexical order), so each directory's inode already exists by the
// time its entries are added to its parent.
func addFiles(b *builder, rootInum uint32, skelDir string) error {
	inumOf := map[string]uint32{".": rootInum}

	return filepath.WalkDir(skelDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(skelDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		name := d.Name()
		if !validName(name) {
			fmt.Fprintf(os.Stderr, "mkfs: skipping %q: invalid directory entry name\n", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parentRel := filepath.Dir(rel)
		parentInum, ok := inumOf[parentRel]
		if !ok {
			return fmt.Errorf("mkfs: parent of %q not yet recorded", rel)
		}

		if d.IsDir() {
			inum := b.allocInode(kfs.Directory)
			addDirEnt(b, inum, inum, ".")
			addDirEnt(b, inum, parentInum, "..")
			addDirEnt(b, parentInum, inum, name)
			inumOf[rel] = inum
			return nil
		}

		inum := b.allocInode(kfs.File)
		addDirEnt(b, parentInum, inum, name)
		copyFileData(b, inum, path)
		return nil
	})
}

func copyFileData(b *builder, inum uint32, hostPath string) {
	f, err := os.Open(hostPath)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	buf := make([]byte, super.BlkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			b.appendInode(inum, buf[:n])
		}
		if err != nil {
			break
		}
	}
}

func le32(p []byte) uint32 {
	return uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
}

func putLE32(p []byte, v uint32) {
	p[0] = byte(v)
	p[1] = byte(v >> 8)
	p[2] = byte(v >> 16)
	p[3] = byte(v >> 24)
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: mkfs <output image> <skeleton dir>\n")
		os.Exit(1)
	}
	outputImage, skelDir := os.Args[1], os.Args[2]

	b := newBuilder()

	rootInum := b.allocInode(kfs.Directory)
	if rootInum != super.RootIno {
		panic("mkfs: root inode did not land at the reserved root inode number")
	}
	addDirEnt(b, rootInum, rootInum, ".")
	addDirEnt(b, rootInum, rootInum, "..")

	if err := addFiles(b, rootInum, skelDir); err != nil {
		fmt.Fprintf(os.Stderr, "mkfs: %v\n", err)
		os.Exit(1)
	}

	b.finalizeBitmap()

	if err := b.flush(outputImage); err != nil {
		panic(err)
	}
}
