package alloc

import . "github.com/weberc2/sfs/pkg/types"

// BlockAllocator hands out data-region relative block indices.
type BlockAllocator struct {
	Allocator
}

func (ba BlockAllocator) Alloc() (Block, bool) {
	if b, ok := ba.Allocator.Alloc(); ok {
		return Block(b), true
	}
	return 0, false
}

func (ba BlockAllocator) Free(b Block) {
	ba.Allocator.Free(uint64(b))
}

func (ba BlockAllocator) Reserve(b Block) {
	ba.Allocator.Reserve(uint64(b))
}

func (ba BlockAllocator) IsFree(b Block) bool {
	return ba.Allocator.IsFree(uint64(b))
}
