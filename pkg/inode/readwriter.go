package inode

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/alloc"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/encode"
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

// ReadWriter maps byte ranges of an inode's content onto data blocks,
// allocating and releasing blocks as inodes grow and shrink.
type ReadWriter struct {
	geometry *layout.Geometry
	device   device.Device
	table    *Table
	bitmap   *alloc.FlushableBitmap
	blocks   alloc.BlockAllocator
}

func NewReadWriter(
	geometry *layout.Geometry,
	device device.Device,
	table *Table,
	bitmap *alloc.FlushableBitmap,
) *ReadWriter {
	return &ReadWriter{
		geometry: geometry,
		device:   device,
		table:    table,
		bitmap:   bitmap,
		blocks:   alloc.BlockAllocator{Allocator: bitmap},
	}
}

func (rw *ReadWriter) Table() *Table { return rw.table }

func (rw *ReadWriter) Bitmap() *alloc.FlushableBitmap { return rw.bitmap }

// Blocks lists the data blocks holding the inode's content in address
// order: direct slots first, then the indirect block's slots.
func (rw *ReadWriter) Blocks(inode *Inode) ([]Block, error) {
	count := rw.geometry.BlocksFor(inode.Size)
	if count > rw.geometry.MaxFileBlocks() {
		return nil, fmt.Errorf(
			"inode `%d` has size `%d`: %w",
			inode.Ino,
			inode.Size,
			ErrCorrupt,
		)
	}
	blocks := make([]Block, 0, count)
	for i := Block(0); i < count && i < DirectBlocksCount; i++ {
		blocks = append(blocks, inode.DirectBlocks[i])
	}
	if count <= DirectBlocksCount {
		return blocks, nil
	}
	pointers, err := rw.readIndirect(inode)
	if err != nil {
		return nil, err
	}
	return append(blocks, pointers[:count-DirectBlocksCount]...), nil
}

func (rw *ReadWriter) readIndirect(inode *Inode) ([]Block, error) {
	pointers := make([]Block, rw.geometry.PointersPerBlock())
	if inode.IndirectBlock == rw.geometry.NilBlock() {
		for i := range pointers {
			pointers[i] = rw.geometry.NilBlock()
		}
		return pointers, nil
	}
	buf := make([]byte, rw.geometry.BlockSize)
	if err := rw.readBlock(inode.IndirectBlock, buf); err != nil {
		return nil, fmt.Errorf(
			"reading indirect block of inode `%d`: %w",
			inode.Ino,
			err,
		)
	}
	encode.DecodePointers(pointers, buf)
	return pointers, nil
}

func (rw *ReadWriter) writeIndirect(inode *Inode, pointers []Block) error {
	buf := make([]byte, rw.geometry.BlockSize)
	encode.EncodePointers(pointers, buf)
	if err := rw.writeBlock(inode.IndirectBlock, buf); err != nil {
		return fmt.Errorf(
			"writing indirect block of inode `%d`: %w",
			inode.Ino,
			err,
		)
	}
	return nil
}

// readBlock reads data-region block `b`.
func (rw *ReadWriter) readBlock(b Block, p []byte) error {
	if b >= rw.geometry.DataBlocks {
		return fmt.Errorf("data block `%d`: %w", b, ErrCorrupt)
	}
	return rw.device.ReadBlocks(rw.geometry.DataBlockAddr(b), 1, p)
}

// writeBlock writes data-region block `b`.
func (rw *ReadWriter) writeBlock(b Block, p []byte) error {
	if b >= rw.geometry.DataBlocks {
		return fmt.Errorf("data block `%d`: %w", b, ErrCorrupt)
	}
	return rw.device.WriteBlocks(rw.geometry.DataBlockAddr(b), 1, p)
}

// commit saves the inode and flushes the bitmap.
func (rw *ReadWriter) commit(inode *Inode) error {
	if err := rw.table.Put(inode); err != nil {
		return err
	}
	if err := rw.bitmap.Flush(); err != nil {
		return fmt.Errorf("flushing bitmap: %w", err)
	}
	return nil
}
