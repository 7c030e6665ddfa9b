package inode

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/math"
	. "github.com/weberc2/sfs/pkg/types"
)

// WriteAt writes `p` into the inode's content at `offset`, growing the
// inode first if the write extends past its end. If growing fails nothing
// is written. Every block touched is read, merged and written back whole.
func (rw *ReadWriter) WriteAt(inode *Inode, offset Byte, p []byte) (Byte, error) {
	if offset < 0 {
		return 0, fmt.Errorf("writing inode `%d` at `%d`: %w", inode.Ino, offset, ErrInvalidOffset)
	}
	if len(p) < 1 {
		return 0, nil
	}
	end := offset + Byte(len(p))
	if offset > rw.geometry.MaxFileSize() || end < offset {
		return 0, fmt.Errorf(
			"writing `%d` bytes to inode `%d` at `%d` (max `%d`): %w",
			len(p),
			inode.Ino,
			offset,
			rw.geometry.MaxFileSize(),
			ErrFileTooLarge,
		)
	}
	if end > inode.Size {
		if err := rw.Grow(inode, end); err != nil {
			return 0, err
		}
	}

	blocks, err := rw.Blocks(inode)
	if err != nil {
		return 0, fmt.Errorf("writing inode `%d`: %w", inode.Ino, err)
	}

	bs := rw.geometry.BlockSize
	buf := make([]byte, bs)
	var chunkBegin Byte

	for chunkBegin < Byte(len(p)) {
		chunkBlock := Block((offset + chunkBegin) / bs)
		chunkOffset := (offset + chunkBegin) % bs
		chunkLength := math.Min(Byte(len(p))-chunkBegin, bs-chunkOffset)
		block := blocks[chunkBlock]

		if err := rw.readBlock(block, buf); err != nil {
			return chunkBegin, fmt.Errorf(
				"writing up to `%d` bytes to inode `%d` at offset `%d`: %w",
				len(p),
				inode.Ino,
				offset,
				err,
			)
		}
		copy(buf[chunkOffset:], p[chunkBegin:chunkBegin+chunkLength])
		if err := rw.writeBlock(block, buf); err != nil {
			return chunkBegin, fmt.Errorf(
				"writing up to `%d` bytes to inode `%d` at offset `%d`: %w",
				len(p),
				inode.Ino,
				offset,
				err,
			)
		}
		chunkBegin += chunkLength
	}

	return chunkBegin, nil
}
