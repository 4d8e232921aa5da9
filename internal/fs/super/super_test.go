package super

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	sb := Superblock{
		Size:       1000,
		NBlocks:    900,
		NInodes:    200,
		NLog:       30,
		LogStart:   2,
		InodeStart: 32,
		BmapStart:  64,
	}
	var block [BlkSize]byte
	Encode(sb, block[:])
	got := Decode(block[:])
	if got != sb {
		t.Fatalf("round trip = %+v, want %+v", got, sb)
	}
}

func TestInodeBlockLayout(t *testing.T) {
	sb := Superblock{InodeStart: 32}
	const inodesPerBlock = BlkSize / 64
	if got := sb.InodeBlock(0); got != 32 {
		t.Fatalf("InodeBlock(0) = %d, want 32", got)
	}
	if got := sb.InodeBlock(inodesPerBlock); got != 33 {
		t.Fatalf("InodeBlock(%d) = %d, want 33", inodesPerBlock, got)
	}
}

func TestBitmapBlockLayout(t *testing.T) {
	sb := Superblock{BmapStart: 64}
	if got := sb.BitmapBlock(0); got != 64 {
		t.Fatalf("BitmapBlock(0) = %d, want 64", got)
	}
	if got := sb.BitmapBlock(BlkSize * 8); got != 65 {
		t.Fatalf("BitmapBlock(%d) = %d, want 65", BlkSize*8, got)
	}
}
