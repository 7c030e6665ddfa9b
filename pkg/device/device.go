package device

import (
	"fmt"

	. "github.com/weberc2/sfs/pkg/types"
)

const ErrNotOpen ConstError = "device not open"

// Device is a flat array of fixed-size blocks. Block indices are absolute.
type Device interface {
	// Format creates a fresh, zeroed volume of `blocks` blocks, discarding
	// whatever was there before, and leaves it open.
	Format(blockSize Byte, blocks Block) error

	// Open reopens an existing volume. It fails if the volume doesn't exist
	// or was formatted with a different shape.
	Open(blockSize Byte, blocks Block) error

	// ReadBlocks fills `p` (exactly `count` blocks long) from the blocks
	// starting at `start`.
	ReadBlocks(start, count Block, p []byte) error

	// WriteBlocks writes `p` (exactly `count` blocks long) to the blocks
	// starting at `start`.
	WriteBlocks(start, count Block, p []byte) error

	Close() error
}

// shape is the block size and block count of an open device.
type shape struct {
	blockSize Byte
	blocks    Block
}

func (s *shape) check(start, count Block, p []byte) error {
	if s.blockSize < 1 {
		return ErrNotOpen
	}
	if uint64(start)+uint64(count) > uint64(s.blocks) {
		return fmt.Errorf(
			"blocks `[%d, %d)` of `%d`: %w",
			start,
			uint64(start)+uint64(count),
			s.blocks,
			ErrOutOfRange,
		)
	}
	if Byte(len(p)) != Byte(count)*s.blockSize {
		return fmt.Errorf(
			"`%d` blocks of `%d` bytes into `%d` byte buffer: %w",
			count,
			s.blockSize,
			len(p),
			ErrBadBuffer,
		)
	}
	return nil
}

func (s *shape) matches(blockSize Byte, blocks Block) error {
	if s.blockSize != blockSize || s.blocks != blocks {
		return fmt.Errorf(
			"device has `%d` blocks of `%d` bytes; wanted `%d` of `%d`: %w",
			s.blocks,
			s.blockSize,
			blocks,
			blockSize,
			ErrInvalidVolume,
		)
	}
	return nil
}

func zero(p []byte) {
	for i := range p {
		p[i] = 0
	}
}
