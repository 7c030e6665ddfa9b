package encode

import (
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

func EncodeSuperblock(sb *Superblock, b *[layout.SuperblockSize]byte) {
	p := b[:]
	putU32(p, superblockMagicStart, sb.Magic)
	putU32(p, superblockBlockSizeStart, uint32(sb.BlockSize))
	putBlock(p, superblockTotalBlocksStart, sb.TotalBlocks)
	putBlock(p, superblockInodeTableStart, sb.InodeTableBlocks)
	putU32(p, superblockRootInoStart, uint32(sb.RootIno))
}

// DecodeSuperblock does not validate the magic; see
// `layout.Geometry.CheckSuperblock`.
func DecodeSuperblock(sb *Superblock, b *[layout.SuperblockSize]byte) {
	p := b[:]
	*sb = Superblock{
		Magic:            getU32(p, superblockMagicStart),
		BlockSize:        Byte(getU32(p, superblockBlockSizeStart)),
		TotalBlocks:      getBlock(p, superblockTotalBlocksStart),
		InodeTableBlocks: getBlock(p, superblockInodeTableStart),
		RootIno:          Ino(getU32(p, superblockRootInoStart)),
	}
}

const (
	superblockMagicStart       Byte = 0
	superblockBlockSizeStart   Byte = superblockMagicStart + 4
	superblockTotalBlocksStart Byte = superblockBlockSizeStart + 4
	superblockInodeTableStart  Byte = superblockTotalBlocksStart + 4
	superblockRootInoStart     Byte = superblockInodeTableStart + 4
)
