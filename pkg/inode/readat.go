package inode

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/math"
	. "github.com/weberc2/sfs/pkg/types"
)

// ReadAt copies up to `len(p)` bytes of the inode's content starting at
// `offset` into `p`. Reading at or past the end of the content returns 0.
func (rw *ReadWriter) ReadAt(inode *Inode, offset Byte, p []byte) (Byte, error) {
	if offset < 0 {
		return 0, fmt.Errorf("reading inode `%d` at `%d`: %w", inode.Ino, offset, ErrInvalidOffset)
	}
	if offset >= inode.Size {
		return 0, nil
	}

	blocks, err := rw.Blocks(inode)
	if err != nil {
		return 0, fmt.Errorf("reading inode `%d`: %w", inode.Ino, err)
	}

	bs := rw.geometry.BlockSize
	maxLength := math.Min(Byte(len(p)), inode.Size-offset)
	buf := make([]byte, bs)
	var chunkBegin Byte

	for chunkBegin < maxLength {
		chunkBlock := Block((offset + chunkBegin) / bs)
		chunkOffset := (offset + chunkBegin) % bs
		chunkLength := math.Min(maxLength-chunkBegin, bs-chunkOffset)

		if err := rw.readBlock(blocks[chunkBlock], buf); err != nil {
			return chunkBegin, fmt.Errorf(
				"reading up to `%d` bytes from inode `%d` at offset `%d`: %w",
				len(p),
				inode.Ino,
				offset,
				err,
			)
		}
		copy(p[chunkBegin:chunkBegin+chunkLength], buf[chunkOffset:])
		chunkBegin += chunkLength
	}

	return chunkBegin, nil
}
