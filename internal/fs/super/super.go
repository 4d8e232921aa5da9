// Package super decodes and encodes the on-disk superblock: the
// single block that tells the kernel where everything else on a
// filesystem image lives. Produced by the host mkfs tool and consumed
// verbatim at mount time.
//
// Grounded on original_source/kernel/src/fs/mod.rs's SuperBlock struct
// and biscuit's fs/super.go (Superblock_t's field-accessor style,
// generalized here to whole-struct Decode/Encode since this kernel's
// superblock is small and fixed-shape rather than a variable-length
// on-disk record).
package super

// Disk layout constants (spec §4.9).
const (
	BlkSize  = 512
	NDirect  = 12
	NIndirect = BlkSize / 4
	DirSize  = 14
	RootDev  = 1
	RootIno  = 1

	// BootBlock and SuperBlockNo are the fixed block numbers of the
	// boot sector and the superblock itself.
	BootBlock    = 0
	SuperBlockNo = 1
)

// Superblock is the in-memory decoding of the on-disk superblock
// block: filesystem size, inode count, and the starting block number
// of each region (log, inodes, free bitmap).
type Superblock struct {
	Size       uint32 // total blocks in the filesystem image
	NBlocks    uint32 // data blocks
	NInodes    uint32 // total inode slots
	NLog       uint32 // blocks reserved for the log
	LogStart   uint32 // first log block
	InodeStart uint32 // first inode block
	BmapStart  uint32 // first free-bitmap block
}

const encodedSize = 7 * 4

// Decode reads a Superblock out of a raw BlkSize-byte disk block,
// little-endian, field order matching Superblock's declaration.
func Decode(block []byte) Superblock {
	var sb Superblock
	fields := []*uint32{&sb.Size, &sb.NBlocks, &sb.NInodes, &sb.NLog, &sb.LogStart, &sb.InodeStart, &sb.BmapStart}
	for i, f := range fields {
		*f = le32(block[i*4:])
	}
	return sb
}

// Encode writes sb into the first bytes of block, little-endian.
func Encode(sb Superblock, block []byte) {
	fields := []uint32{sb.Size, sb.NBlocks, sb.NInodes, sb.NLog, sb.LogStart, sb.InodeStart, sb.BmapStart}
	for i, v := range fields {
		putLE32(block[i*4:], v)
	}
}

// InodeBlock returns the block number holding inode inum (spec §4.9:
// n_inodes / (BLK_SIZE/64) blocks of 64-byte on-disk inodes).
func (sb Superblock) InodeBlock(inum uint32) uint32 {
	const inodesPerBlock = BlkSize / 64
	return sb.InodeStart + inum/inodesPerBlock
}

// BitmapBlock returns the block of the free-block bitmap holding the
// bit for data block b.
func (sb Superblock) BitmapBlock(b uint32) uint32 {
	return sb.BmapStart + b/(BlkSize*8)
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

// init checks that the encoded superblock fits in one BlkSize block:
// a layout error, not a runtime condition to recover from, so it
// panics like the rest of the on-disk-layout code.
func init() {
	if encodedSize > BlkSize {
		panic("super: encoded superblock does not fit in one block")
	}
}
