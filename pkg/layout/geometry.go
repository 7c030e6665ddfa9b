package layout

import (
	"fmt"
	gomath "math"

	"github.com/weberc2/sfs/pkg/math"
	. "github.com/weberc2/sfs/pkg/types"
)

const (
	SuperblockStart Block = 0
	SuperblockSize  Byte  = 20
	InodeTableStart Block = SuperblockStart + 1

	InvalidGeometryErr ConstError = "invalid geometry"
)

// Geometry fixes the partition of a volume into its four regions. Every
// other quantity is derived from these three numbers.
type Geometry struct {
	BlockSize  Byte  `yaml:"blockSize"`
	DataBlocks Block `yaml:"dataBlocks"`
	Inodes     Ino   `yaml:"inodes"`
}

// DefaultGeometry: 1 KiB blocks, 16 MiB of data, one inode per data block.
var DefaultGeometry = Geometry{
	BlockSize:  1024,
	DataBlocks: 16 * 1024,
	Inodes:     16 * 1024,
}

func (g *Geometry) Validate() error {
	if g.BlockSize < InodeSize || g.BlockSize%BlockPointerSize != 0 {
		return fmt.Errorf(
			"block size `%d` must be a multiple of `%d` and at least `%d`: %w",
			g.BlockSize,
			BlockPointerSize,
			InodeSize,
			InvalidGeometryErr,
		)
	}
	if g.DataBlocks < 1 || uint64(g.DataBlocks) > 1<<31 {
		return fmt.Errorf(
			"data block count `%d` out of range: %w",
			g.DataBlocks,
			InvalidGeometryErr,
		)
	}
	if g.Inodes < 2 {
		return fmt.Errorf(
			"inode count `%d` leaves no room for files: %w",
			g.Inodes,
			InvalidGeometryErr,
		)
	}
	// computed in 64 bits since the `Block` sum itself would wrap
	total := 1 + uint64(g.InodeTableBlocks()) + uint64(g.DataBlocks) +
		uint64(g.BitmapBlocks())
	if total > gomath.MaxUint32 {
		return fmt.Errorf(
			"volume of `%d` blocks exceeds `%d`: %w",
			total,
			uint64(gomath.MaxUint32),
			InvalidGeometryErr,
		)
	}
	return nil
}

// NilBlock is the pointer value stored in unused inode block slots. It is
// one past the last valid data block.
func (g *Geometry) NilBlock() Block { return g.DataBlocks }

func (g *Geometry) InodeTableBlocks() Block {
	return Block(math.DivRoundUp(Byte(g.Inodes)*InodeSize, g.BlockSize))
}

func (g *Geometry) InodeTableSize() Byte {
	return Byte(g.InodeTableBlocks()) * g.BlockSize
}

func (g *Geometry) DataStart() Block {
	return InodeTableStart + g.InodeTableBlocks()
}

func (g *Geometry) BitmapStart() Block {
	return g.DataStart() + g.DataBlocks
}

func (g *Geometry) BitmapBlocks() Block {
	bitsPerBlock := g.BlockSize * BitsPerByte
	return Block(math.DivRoundUp(Byte(g.DataBlocks), bitsPerBlock))
}

func (g *Geometry) BitmapSize() Byte {
	return Byte(g.BitmapBlocks()) * g.BlockSize
}

func (g *Geometry) TotalBlocks() Block {
	return g.BitmapStart() + g.BitmapBlocks()
}

func (g *Geometry) PointersPerBlock() Block {
	return Block(g.BlockSize / BlockPointerSize)
}

func (g *Geometry) MaxFileBlocks() Block {
	return DirectBlocksCount + g.PointersPerBlock()
}

func (g *Geometry) MaxFileSize() Byte {
	return Byte(g.MaxFileBlocks()) * g.BlockSize
}

// DirCapacity is the number of entries the root directory can hold. It is
// bounded both by the root inode's maximum size and by the number of inodes
// available to regular files.
func (g *Geometry) DirCapacity() int {
	return int(math.Min(
		g.MaxFileSize()/DirEntrySize,
		Byte(g.Inodes-InoFirst),
	))
}

// DataBlockAddr maps a data-region relative block to its device index.
func (g *Geometry) DataBlockAddr(b Block) Block { return g.DataStart() + b }

// BlocksFor is the number of data blocks needed to hold `size` bytes.
func (g *Geometry) BlocksFor(size Byte) Block {
	return Block(math.DivRoundUp(size, g.BlockSize))
}

// NewSuperblock returns the superblock describing this geometry.
func (g *Geometry) NewSuperblock() Superblock {
	return Superblock{
		Magic:            SuperblockMagic,
		BlockSize:        g.BlockSize,
		TotalBlocks:      g.TotalBlocks(),
		InodeTableBlocks: g.InodeTableBlocks(),
		RootIno:          InoRoot,
	}
}

// CheckSuperblock verifies that a superblock read from a device describes a
// volume with this geometry.
func (g *Geometry) CheckSuperblock(sb *Superblock) error {
	if sb.Magic != SuperblockMagic {
		return fmt.Errorf("bad magic `%#x`: %w", sb.Magic, ErrInvalidVolume)
	}
	wanted := g.NewSuperblock()
	if *sb != wanted {
		return fmt.Errorf(
			"superblock `%+v` does not match geometry `%+v`: %w",
			*sb,
			wanted,
			ErrInvalidVolume,
		)
	}
	return nil
}
