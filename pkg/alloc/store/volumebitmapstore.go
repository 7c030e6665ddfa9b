package store

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/alloc"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/layout"
)

var _ alloc.BitmapStore = VolumeBitmapStore{}

// VolumeBitmapStore persists the free-block bitmap to the bitmap region at
// the end of the volume.
type VolumeBitmapStore struct {
	device   device.Device
	geometry *layout.Geometry
}

func NewVolumeBitmapStore(
	device device.Device,
	geometry *layout.Geometry,
) VolumeBitmapStore {
	return VolumeBitmapStore{device: device, geometry: geometry}
}

func (store VolumeBitmapStore) Put(bitmap alloc.Bitmap) error {
	region := make([]byte, store.geometry.BitmapSize())
	copy(region, bitmap.Bytes())
	if err := store.device.WriteBlocks(
		store.geometry.BitmapStart(),
		store.geometry.BitmapBlocks(),
		region,
	); err != nil {
		return fmt.Errorf("storing bitmap: %w", err)
	}
	return nil
}

// Get loads the bitmap from the volume.
func (store VolumeBitmapStore) Get() (alloc.Bitmap, error) {
	region := make([]byte, store.geometry.BitmapSize())
	if err := store.device.ReadBlocks(
		store.geometry.BitmapStart(),
		store.geometry.BitmapBlocks(),
		region,
	); err != nil {
		return alloc.Bitmap{}, fmt.Errorf("loading bitmap: %w", err)
	}
	return alloc.FromBytes(uint64(store.geometry.DataBlocks), region), nil
}
