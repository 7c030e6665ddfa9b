package encode

import (
	. "github.com/weberc2/sfs/pkg/types"
)

func EncodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]
	putU32(p, inodeModeStart, inode.Mode)
	putU32(p, inodeLinksCountStart, inode.LinksCount)
	putU32(p, inodeUIDStart, inode.UID)
	putU32(p, inodeGIDStart, inode.GID)
	putU32(p, inodeSizeStart, uint32(inode.Size))
	for i, block := range inode.DirectBlocks {
		putBlock(p, inodeDirectBlocksStart+Byte(i)*BlockPointerSize, block)
	}
	putBlock(p, inodeIndirectStart, inode.IndirectBlock)
}

// DecodeInode populates `inode` from `b`. `inode.Ino` is left untouched
// since it isn't part of the encoded record.
func DecodeInode(inode *Inode, b *[InodeSize]byte) {
	p := b[:]
	inode.Mode = getU32(p, inodeModeStart)
	inode.LinksCount = getU32(p, inodeLinksCountStart)
	inode.UID = getU32(p, inodeUIDStart)
	inode.GID = getU32(p, inodeGIDStart)
	inode.Size = Byte(getU32(p, inodeSizeStart))
	for i := range inode.DirectBlocks {
		inode.DirectBlocks[i] = getBlock(
			p,
			inodeDirectBlocksStart+Byte(i)*BlockPointerSize,
		)
	}
	inode.IndirectBlock = getBlock(p, inodeIndirectStart)
}

// EncodeInodeTable packs `inodes` back to back into `p`, which must hold at
// least `len(inodes) * InodeSize` bytes. Trailing bytes are zeroed.
func EncodeInodeTable(inodes []Inode, p []byte) {
	for i := range inodes {
		EncodeInode(&inodes[i], (*[InodeSize]byte)(p[Byte(i)*InodeSize:]))
	}
	tail := p[Byte(len(inodes))*InodeSize:]
	for i := range tail {
		tail[i] = 0
	}
}

func DecodeInodeTable(inodes []Inode, p []byte) {
	for i := range inodes {
		DecodeInode(&inodes[i], (*[InodeSize]byte)(p[Byte(i)*InodeSize:]))
		inodes[i].Ino = Ino(i)
	}
}

const (
	inodeModeStart         Byte = 0
	inodeLinksCountStart   Byte = inodeModeStart + 4
	inodeUIDStart          Byte = inodeLinksCountStart + 4
	inodeGIDStart          Byte = inodeUIDStart + 4
	inodeSizeStart         Byte = inodeGIDStart + 4
	inodeDirectBlocksStart Byte = inodeSizeStart + 4
	inodeDirectBlocksSize  Byte = DirectBlocksCount * BlockPointerSize
	inodeIndirectStart     Byte = inodeDirectBlocksStart + inodeDirectBlocksSize
	inodeEnd               Byte = inodeIndirectStart + BlockPointerSize
)
