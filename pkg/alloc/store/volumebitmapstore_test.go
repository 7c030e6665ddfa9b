package store

import (
	"testing"

	"github.com/weberc2/sfs/pkg/alloc"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/layout"
)

func TestVolumeBitmapStore(t *testing.T) {
	geometry := layout.Geometry{BlockSize: 128, DataBlocks: 2000, Inodes: 8}
	dev := device.NewMemory()
	if err := dev.Format(geometry.BlockSize, geometry.TotalBlocks()); err != nil {
		t.Fatalf("Format(): unexpected err: %v", err)
	}

	store := NewVolumeBitmapStore(dev, &geometry)
	bm := alloc.New(uint64(geometry.DataBlocks))
	bm.Reserve(0)
	bm.Reserve(1999)
	if err := store.Put(bm); err != nil {
		t.Fatalf("Put(): unexpected err: %v", err)
	}

	// the bitmap region starts right after the data region
	raw := dev.Bytes()[int64(geometry.BitmapStart())*int64(geometry.BlockSize):]
	if raw[0] != 0x7f {
		t.Fatalf("bitmap byte 0: wanted `0x7f`; found `%#x`", raw[0])
	}

	found, err := store.Get()
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if found.IsFree(0) || found.IsFree(1999) || !found.IsFree(1998) {
		t.Fatal("Get(): reserved blocks not preserved")
	}
	if wanted := uint64(1998); found.FreeCount() != wanted {
		t.Fatalf("FreeCount(): wanted `%d`; found `%d`", wanted, found.FreeCount())
	}
}
