package alloc

import (
	"sync"
)

type BitmapStore interface {
	Put(Bitmap) error
}

// FlushableBitmap is a bitmap which remembers whether it has changed since
// it was last written to its store.
type FlushableBitmap struct {
	bitmap Bitmap
	store  BitmapStore
	mutex  sync.Mutex
	dirty  bool
}

func NewFlushable(bitmap Bitmap, store BitmapStore) *FlushableBitmap {
	return &FlushableBitmap{bitmap: bitmap, store: store}
}

func (bitmap *FlushableBitmap) Alloc() (uint64, bool) {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	value, ok := bitmap.bitmap.Alloc()
	if ok {
		bitmap.dirty = true
	}
	return value, ok
}

func (bitmap *FlushableBitmap) Reserve(value uint64) {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	bitmap.bitmap.Reserve(value)
	bitmap.dirty = true
}

func (bitmap *FlushableBitmap) Free(value uint64) {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	bitmap.bitmap.Free(value)
	bitmap.dirty = true
}

func (bitmap *FlushableBitmap) IsFree(value uint64) bool {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	return bitmap.bitmap.IsFree(value)
}

func (bitmap *FlushableBitmap) FreeCount() uint64 {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	return bitmap.bitmap.FreeCount()
}

func (bitmap *FlushableBitmap) Dirty() bool {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	return bitmap.dirty
}

// Flush writes the whole bitmap to the store if anything changed.
func (bitmap *FlushableBitmap) Flush() error {
	bitmap.mutex.Lock()
	defer bitmap.mutex.Unlock()
	if bitmap.dirty {
		if err := bitmap.store.Put(bitmap.bitmap); err != nil {
			return err
		}
		bitmap.dirty = false
	}
	return nil
}
