package alloc

type Allocator interface {
	Alloc() (uint64, bool)
	Reserve(uint64)
	Free(uint64)
	IsFree(uint64) bool
}

var (
	_ Allocator = Bitmap{}
	_ Allocator = (*FlushableBitmap)(nil)
)
