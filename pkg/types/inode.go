package types

type Ino uint32

const (
	// InoRoot is the inode holding the root directory's entries. It is never
	// handed out to a regular file.
	InoRoot Ino = 0

	// InoNil marks an unused directory entry. Sharing the value with InoRoot
	// is safe because no entry ever refers to the root directory itself.
	InoNil Ino = 0

	// InoFirst is the first inode a regular file may occupy.
	InoFirst Ino = 1

	DirectBlocksCount = 12

	// InodeSize is the encoded size of an inode record: five 32-bit fields,
	// the direct pointers and the indirect pointer.
	InodeSize Byte = (5 + DirectBlocksCount + 1) * 4
)

const (
	ModeTypeDir     uint32 = 0x4000
	ModeTypeRegular uint32 = 0x8000

	ModeDir     = ModeTypeDir | 0o755
	ModeRegular = ModeTypeRegular | 0o644
)

type Inode struct {
	// Ino is not encoded; it is the inode's index in the table.
	Ino           Ino
	Mode          uint32
	LinksCount    uint32
	UID           uint32
	GID           uint32
	Size          Byte
	DirectBlocks  [DirectBlocksCount]Block
	IndirectBlock Block
}

func (inode *Inode) IsDir() bool {
	return inode.Mode&ModeTypeDir != 0
}
