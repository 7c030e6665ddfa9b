package alloc

import (
	"github.com/weberc2/sfs/pkg/math"
)

const bitsPerByte = 8

// Bitmap tracks `n` slots with one bit each. A set bit means the slot is
// free. Bits are ordered most-significant first within each byte. Padding
// bits past `n` are kept clear so they are never handed out.
type Bitmap struct {
	bytes []byte
	n     uint64
}

// New returns a bitmap of `n` slots, all free.
func New(n uint64) Bitmap {
	bm := Bitmap{make([]byte, math.DivRoundUp(n, bitsPerByte)), n}
	for i := range bm.bytes {
		bm.bytes[i] = 0xff
	}
	bm.clearPadding()
	return bm
}

// FromBytes loads a bitmap of `n` slots from its encoded form. Bytes past
// the bitmap (e.g., the rest of the final block) are ignored.
func FromBytes(n uint64, data []byte) Bitmap {
	bm := Bitmap{make([]byte, math.DivRoundUp(n, bitsPerByte)), n}
	copy(bm.bytes, data)
	bm.clearPadding()
	return bm
}

func (bm Bitmap) clearPadding() {
	for i := bm.n; i < uint64(len(bm.bytes))*bitsPerByte; i++ {
		bm.Reserve(i)
	}
}

// Alloc claims the lowest-indexed free slot.
func (bm Bitmap) Alloc() (uint64, bool) {
	i, bit, ok := bytesFirstSet(bm.bytes)
	if !ok {
		return 0, false
	}
	bm.bytes[i] = byteSetLow(bm.bytes[i], bit)
	return uint64(i*bitsPerByte) + uint64(bit), true
}

func (bm Bitmap) Free(value uint64) {
	b := &bm.bytes[value/bitsPerByte]
	*b = byteSetHigh(*b, uint8(value%bitsPerByte))
}

func (bm Bitmap) Reserve(value uint64) {
	b := &bm.bytes[value/bitsPerByte]
	*b = byteSetLow(*b, uint8(value%bitsPerByte))
}

func (bm Bitmap) IsFree(value uint64) bool {
	return !byteIsLow(bm.bytes[value/bitsPerByte], uint8(value%bitsPerByte))
}

func (bm Bitmap) FreeCount() uint64 {
	var count uint64
	for _, byt := range bm.bytes {
		for bit := uint8(0); bit < bitsPerByte; bit++ {
			if !byteIsLow(byt, bit) {
				count++
			}
		}
	}
	return count
}

func (bm Bitmap) Len() uint64 { return bm.n }

func (bm Bitmap) Bytes() []byte { return bm.bytes }

func bytesFirstSet(bytes []byte) (int, uint8, bool) {
	for i, byt := range bytes {
		if bit := byteFirstSet(byt); bit != 0xff {
			return i, bit, true
		}
	}
	return 0, 0, false
}

func byteIsLow(byt byte, bit uint8) bool {
	return byt&(0b1000_0000>>bit) == 0
}

func byteSetHigh(byt byte, bit uint8) byte {
	return byt | (0b1000_0000 >> bit)
}

func byteSetLow(byt byte, bit uint8) byte {
	return byt & ^(0b1000_0000 >> bit)
}

func byteFirstSet(byt byte) uint8 {
	for bit := uint8(0); bit < bitsPerByte; bit++ {
		if !byteIsLow(byt, bit) {
			return bit
		}
	}
	return 0xFF
}
