package encode

import (
	. "github.com/weberc2/sfs/pkg/types"
)

// EncodePointers writes `blocks` as a list of block pointers into `p`.
func EncodePointers(blocks []Block, p []byte) {
	for i, block := range blocks {
		putBlock(p, Byte(i)*BlockPointerSize, block)
	}
}

// DecodePointers fills `blocks` from the pointer list in `p`.
func DecodePointers(blocks []Block, p []byte) {
	for i := range blocks {
		blocks[i] = getBlock(p, Byte(i)*BlockPointerSize)
	}
}
