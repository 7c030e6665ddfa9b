package inode

import (
	"fmt"

	. "github.com/weberc2/sfs/pkg/types"
)

// Grow extends the inode to `size` bytes, allocating zeroed blocks as
// needed. If the volume runs out of blocks part way through, the blocks
// claimed so far are released and the inode is left as it was.
func (rw *ReadWriter) Grow(inode *Inode, size Byte) error {
	if size <= inode.Size {
		return nil
	}
	if size > rw.geometry.MaxFileSize() {
		return fmt.Errorf(
			"growing inode `%d` to `%d` bytes (max `%d`): %w",
			inode.Ino,
			size,
			rw.geometry.MaxFileSize(),
			ErrFileTooLarge,
		)
	}

	have := rw.geometry.BlocksFor(inode.Size)
	want := rw.geometry.BlocksFor(size)

	if err := rw.zeroTail(inode, have); err != nil {
		return err
	}

	clone := *inode
	var pointers []Block
	if want > DirectBlocksCount {
		var err error
		if pointers, err = rw.readIndirect(&clone); err != nil {
			return err
		}
	}

	var allocated []Block
	rollback := func(err error) error {
		for _, b := range allocated {
			rw.blocks.Free(b)
		}
		return fmt.Errorf(
			"growing inode `%d` to `%d` bytes: %w",
			inode.Ino,
			size,
			err,
		)
	}
	claim := func() (Block, error) {
		b, ok := rw.blocks.Alloc()
		if !ok {
			return 0, ErrExhausted
		}
		allocated = append(allocated, b)
		return b, nil
	}

	zeros := make([]byte, rw.geometry.BlockSize)
	for i := have; i < want; i++ {
		if i >= DirectBlocksCount && clone.IndirectBlock == rw.geometry.NilBlock() {
			b, err := claim()
			if err != nil {
				return rollback(err)
			}
			clone.IndirectBlock = b
		}
		b, err := claim()
		if err != nil {
			return rollback(err)
		}
		if err := rw.writeBlock(b, zeros); err != nil {
			return rollback(err)
		}
		if i < DirectBlocksCount {
			clone.DirectBlocks[i] = b
		} else {
			pointers[i-DirectBlocksCount] = b
		}
	}
	if want > DirectBlocksCount && want > have {
		if err := rw.writeIndirect(&clone, pointers); err != nil {
			return rollback(err)
		}
	}

	clone.Size = size
	*inode = clone
	if err := rw.commit(inode); err != nil {
		return fmt.Errorf("growing inode `%d`: %w", inode.Ino, err)
	}
	return nil
}

// zeroTail clears the bytes between the end of the content and the end of
// its last block so that growing never exposes stale data.
func (rw *ReadWriter) zeroTail(inode *Inode, have Block) error {
	bs := rw.geometry.BlockSize
	if have < 1 || inode.Size%bs == 0 {
		return nil
	}
	blocks, err := rw.Blocks(inode)
	if err != nil {
		return err
	}
	last := blocks[have-1]
	buf := make([]byte, bs)
	if err := rw.readBlock(last, buf); err != nil {
		return fmt.Errorf("reading tail of inode `%d`: %w", inode.Ino, err)
	}
	tail := buf[inode.Size%bs:]
	for i := range tail {
		if tail[i] != 0 {
			for j := i; j < len(tail); j++ {
				tail[j] = 0
			}
			if err := rw.writeBlock(last, buf); err != nil {
				return fmt.Errorf(
					"zeroing tail of inode `%d`: %w",
					inode.Ino,
					err,
				)
			}
			return nil
		}
	}
	return nil
}

// Shrink truncates the inode to `size` bytes, releasing every block past
// the new end, including the indirect block once no indirect slot remains
// in use.
func (rw *ReadWriter) Shrink(inode *Inode, size Byte) error {
	if size < 0 {
		return fmt.Errorf("shrinking inode `%d` to `%d`: %w", inode.Ino, size, ErrInvalidOffset)
	}
	if size >= inode.Size {
		return nil
	}

	have := rw.geometry.BlocksFor(inode.Size)
	keep := rw.geometry.BlocksFor(size)
	nilBlock := rw.geometry.NilBlock()

	clone := *inode
	var pointers []Block
	if have > DirectBlocksCount {
		var err error
		if pointers, err = rw.readIndirect(&clone); err != nil {
			return err
		}
	}

	for i := keep; i < have; i++ {
		if i < DirectBlocksCount {
			rw.blocks.Free(clone.DirectBlocks[i])
			clone.DirectBlocks[i] = nilBlock
		} else {
			rw.blocks.Free(pointers[i-DirectBlocksCount])
			pointers[i-DirectBlocksCount] = nilBlock
		}
	}

	if have > DirectBlocksCount {
		if keep <= DirectBlocksCount {
			rw.blocks.Free(clone.IndirectBlock)
			clone.IndirectBlock = nilBlock
		} else if err := rw.writeIndirect(&clone, pointers); err != nil {
			return err
		}
	}

	clone.Size = size
	*inode = clone
	if err := rw.commit(inode); err != nil {
		return fmt.Errorf("shrinking inode `%d`: %w", inode.Ino, err)
	}
	return nil
}
