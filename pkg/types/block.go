package types

// Block is a block index. Depending on context it is either an absolute
// index on the device or an index relative to the start of the data region;
// inode pointers are always data-region relative.
type Block uint32

// Byte is a byte count or a byte offset.
type Byte int64

const (
	// BlockPointerSize is the encoded size of a block pointer.
	BlockPointerSize Byte = 4
	BitsPerByte      Byte = 8
)
