package sfs

import (
	"fmt"
	"io"

	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/layout"
	"github.com/weberc2/sfs/pkg/math"
	. "github.com/weberc2/sfs/pkg/types"
)

// imageChunk is the number of blocks copied per device call.
const imageChunk Block = 64

// WriteImage copies the raw volume, block by block, to `w`. Pending
// metadata is flushed first.
func (fs *FileSystem) WriteImage(w io.Writer) (Byte, error) {
	if err := fs.bitmap.Flush(); err != nil {
		return 0, fmt.Errorf("writing image: %w", err)
	}
	total := fs.geometry.TotalBlocks()
	buf := make([]byte, Byte(imageChunk)*fs.geometry.BlockSize)
	var written Byte
	for start := Block(0); start < total; start += imageChunk {
		count := math.Min(imageChunk, total-start)
		p := buf[:Byte(count)*fs.geometry.BlockSize]
		if err := fs.device.ReadBlocks(start, count, p); err != nil {
			return written, fmt.Errorf("writing image: %w", err)
		}
		n, err := w.Write(p)
		written += Byte(n)
		if err != nil {
			return written, fmt.Errorf("writing image: %w", err)
		}
	}
	return written, nil
}

// RestoreImage formats `dev` with the shape of `geometry`, copies an image
// previously produced by `WriteImage` onto it and mounts the result.
func RestoreImage(
	dev device.Device,
	geometry layout.Geometry,
	r io.Reader,
	opts *Options,
) (*FileSystem, error) {
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("restoring image: %w", err)
	}
	total := geometry.TotalBlocks()
	if err := dev.Format(geometry.BlockSize, total); err != nil {
		return nil, fmt.Errorf("restoring image: %w", err)
	}
	buf := make([]byte, Byte(imageChunk)*geometry.BlockSize)
	for start := Block(0); start < total; start += imageChunk {
		count := math.Min(imageChunk, total-start)
		p := buf[:Byte(count)*geometry.BlockSize]
		if _, err := io.ReadFull(r, p); err != nil {
			return nil, fmt.Errorf(
				"restoring image: reading block `%d`: %w",
				start,
				err,
			)
		}
		if err := dev.WriteBlocks(start, count, p); err != nil {
			return nil, fmt.Errorf("restoring image: %w", err)
		}
	}
	if err := dev.Close(); err != nil {
		return nil, fmt.Errorf("restoring image: %w", err)
	}
	return Mount(dev, geometry, opts)
}
