package alloc

import (
	"bytes"
	"testing"
)

func TestBitmap_AllocLowestFirst(t *testing.T) {
	bm := New(10)
	for wanted := uint64(0); wanted < 10; wanted++ {
		found, ok := bm.Alloc()
		if !ok {
			t.Fatalf("Alloc(): unexpected exhaustion at `%d`", wanted)
		}
		if found != wanted {
			t.Fatalf("Alloc(): wanted `%d`; found `%d`", wanted, found)
		}
	}
	if _, ok := bm.Alloc(); ok {
		t.Fatal("Alloc(): wanted exhaustion; padding bits must not be handed out")
	}

	bm.Free(7)
	bm.Free(3)
	if found, _ := bm.Alloc(); found != 3 {
		t.Fatalf("Alloc(): wanted `3`; found `%d`", found)
	}
	if found, _ := bm.Alloc(); found != 7 {
		t.Fatalf("Alloc(): wanted `7`; found `%d`", found)
	}
}

func TestBitmap_Encoding(t *testing.T) {
	bm := New(12)
	if wanted := []byte{0xff, 0xf0}; !bytes.Equal(bm.Bytes(), wanted) {
		t.Fatalf("New(): wanted `%#x`; found `%#x`", wanted, bm.Bytes())
	}

	// allocating block 0 clears the most significant bit
	bm.Alloc()
	bm.Reserve(9)
	if wanted := []byte{0x7f, 0xb0}; !bytes.Equal(bm.Bytes(), wanted) {
		t.Fatalf("Bytes(): wanted `%#x`; found `%#x`", wanted, bm.Bytes())
	}
	if found := bm.FreeCount(); found != 10 {
		t.Fatalf("FreeCount(): wanted `10`; found `%d`", found)
	}
	if bm.IsFree(9) || !bm.IsFree(8) {
		t.Fatalf("IsFree(): wrong state for blocks 8 and 9")
	}
}

func TestFromBytes_ClearsPadding(t *testing.T) {
	bm := FromBytes(4, []byte{0xff, 0xff, 0xff})
	if wanted := []byte{0xf0}; !bytes.Equal(bm.Bytes(), wanted) {
		t.Fatalf("FromBytes(): wanted `%#x`; found `%#x`", wanted, bm.Bytes())
	}
	if found := bm.FreeCount(); found != 4 {
		t.Fatalf("FreeCount(): wanted `4`; found `%d`", found)
	}
}

type bitmapStoreFake struct {
	puts int
	last []byte
}

func (store *bitmapStoreFake) Put(bm Bitmap) error {
	store.puts++
	store.last = append([]byte(nil), bm.Bytes()...)
	return nil
}

func TestFlushableBitmap(t *testing.T) {
	var store bitmapStoreFake
	bm := NewFlushable(New(8), &store)

	if err := bm.Flush(); err != nil {
		t.Fatalf("Flush(): unexpected err: %v", err)
	}
	if store.puts != 0 {
		t.Fatalf("Flush(): wanted no write for a clean bitmap; found `%d`", store.puts)
	}

	bm.Alloc()
	bm.Alloc()
	bm.Free(0)
	if !bm.Dirty() {
		t.Fatal("Dirty(): wanted `true`")
	}
	if err := bm.Flush(); err != nil {
		t.Fatalf("Flush(): unexpected err: %v", err)
	}
	if store.puts != 1 {
		t.Fatalf("Flush(): wanted `1` write; found `%d`", store.puts)
	}
	if wanted := []byte{0xbf}; !bytes.Equal(store.last, wanted) {
		t.Fatalf("Flush(): wanted `%#x`; found `%#x`", wanted, store.last)
	}
	if bm.Dirty() {
		t.Fatal("Dirty(): wanted `false` after Flush()")
	}
}
