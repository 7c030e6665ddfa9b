package types

const SuperblockMagic uint32 = 0xACBD0005

type Superblock struct {
	Magic            uint32
	BlockSize        Byte
	TotalBlocks      Block
	InodeTableBlocks Block
	RootIno          Ino
}
