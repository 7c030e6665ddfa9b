package sfs

import (
	"fmt"
	"log/slog"

	"github.com/weberc2/sfs/pkg/alloc"
	"github.com/weberc2/sfs/pkg/alloc/store"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/directory"
	"github.com/weberc2/sfs/pkg/encode"
	"github.com/weberc2/sfs/pkg/inode"
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

type Options struct {
	// Logger receives debug logs for volume-level events. Defaults to
	// `slog.Default()`.
	Logger *slog.Logger

	// MaxOpenFiles bounds the descriptor table. Defaults to the volume's
	// inode count.
	MaxOpenFiles int
}

func (opts *Options) logger() *slog.Logger {
	if opts == nil || opts.Logger == nil {
		return slog.Default()
	}
	return opts.Logger
}

// FileSystem is a mounted volume. It is not safe for concurrent use.
type FileSystem struct {
	geometry    layout.Geometry
	device      device.Device
	table       *inode.Table
	bitmap      *alloc.FlushableBitmap
	bitmapStore store.VolumeBitmapStore
	rw          *inode.ReadWriter
	dir         directory.Directory
	descriptors []descriptor
	logger      *slog.Logger
}

func (opts *Options) maxOpenFiles(geometry *layout.Geometry) int {
	if opts == nil || opts.MaxOpenFiles < 1 {
		return int(geometry.Inodes)
	}
	return opts.MaxOpenFiles
}

func newFileSystem(
	dev device.Device,
	geometry layout.Geometry,
	opts *Options,
) *FileSystem {
	fs := FileSystem{
		geometry:    geometry,
		device:      dev,
		descriptors: make([]descriptor, opts.maxOpenFiles(&geometry)),
		logger:      opts.logger(),
	}
	fs.table = inode.NewTable(dev, &fs.geometry)
	fs.bitmapStore = store.NewVolumeBitmapStore(dev, &fs.geometry)
	return &fs
}

func (fs *FileSystem) init(bitmap alloc.Bitmap) {
	fs.bitmap = alloc.NewFlushable(bitmap, fs.bitmapStore)
	fs.rw = inode.NewReadWriter(&fs.geometry, fs.device, fs.table, fs.bitmap)
	fs.dir = directory.NewDense(fs.rw, fs.geometry.DirCapacity())
}

// Format initialises a fresh volume on `dev` and mounts it. Any previous
// contents of the device are lost.
func Format(
	dev device.Device,
	geometry layout.Geometry,
	opts *Options,
) (*FileSystem, error) {
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}
	fs := newFileSystem(dev, geometry, opts)
	if err := dev.Format(geometry.BlockSize, geometry.TotalBlocks()); err != nil {
		return nil, fmt.Errorf("formatting device: %w", err)
	}

	sb := geometry.NewSuperblock()
	var raw [layout.SuperblockSize]byte
	encode.EncodeSuperblock(&sb, &raw)
	block := make([]byte, geometry.BlockSize)
	copy(block, raw[:])
	if err := dev.WriteBlocks(layout.SuperblockStart, 1, block); err != nil {
		return nil, fmt.Errorf("writing superblock: %w", err)
	}

	if err := fs.table.Format(); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}

	bitmap := alloc.New(uint64(geometry.DataBlocks))
	fs.init(bitmap)
	if err := fs.dir.Persist(); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}
	if err := fs.bitmapStore.Put(bitmap); err != nil {
		return nil, fmt.Errorf("formatting volume: %w", err)
	}

	fs.logger.Debug(
		"formatted volume",
		"blockSize", geometry.BlockSize,
		"totalBlocks", geometry.TotalBlocks(),
		"dataBlocks", geometry.DataBlocks,
		"inodes", geometry.Inodes,
	)
	return fs, nil
}

// Mount opens an existing volume on `dev`. The superblock must carry the
// magic number and describe `geometry`, otherwise `ErrInvalidVolume` is
// returned.
func Mount(
	dev device.Device,
	geometry layout.Geometry,
	opts *Options,
) (*FileSystem, error) {
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}
	fs := newFileSystem(dev, geometry, opts)
	if err := dev.Open(geometry.BlockSize, geometry.TotalBlocks()); err != nil {
		return nil, fmt.Errorf("mounting volume: %w", err)
	}

	if err := fs.load(); err != nil {
		dev.Close()
		return nil, fmt.Errorf("mounting volume: %w", err)
	}

	fs.logger.Debug(
		"mounted volume",
		"files", fs.dir.Len(),
		"freeDataBlocks", fs.bitmap.FreeCount(),
	)
	return fs, nil
}

// load reads the superblock, the inode table, the bitmap and the root
// directory from an open device.
func (fs *FileSystem) load() error {
	block := make([]byte, fs.geometry.BlockSize)
	if err := fs.device.ReadBlocks(layout.SuperblockStart, 1, block); err != nil {
		return fmt.Errorf("reading superblock: %w", err)
	}
	var sb Superblock
	encode.DecodeSuperblock(&sb, (*[layout.SuperblockSize]byte)(block))
	if err := fs.geometry.CheckSuperblock(&sb); err != nil {
		return err
	}

	if err := fs.table.Load(); err != nil {
		return err
	}
	bitmap, err := fs.bitmapStore.Get()
	if err != nil {
		return err
	}
	fs.init(bitmap)
	return fs.dir.Load()
}

// MountOrFormat formats the device when `fresh` is set and mounts it
// otherwise.
func MountOrFormat(
	dev device.Device,
	geometry layout.Geometry,
	fresh bool,
	opts *Options,
) (*FileSystem, error) {
	if fresh {
		return Format(dev, geometry, opts)
	}
	return Mount(dev, geometry, opts)
}

func (fs *FileSystem) Geometry() layout.Geometry { return fs.geometry }

// Unmount flushes outstanding metadata, forgets every descriptor and
// closes the device.
func (fs *FileSystem) Unmount() error {
	for i := range fs.descriptors {
		fs.descriptors[i] = descriptor{}
	}
	if err := fs.bitmap.Flush(); err != nil {
		return fmt.Errorf("unmounting volume: %w", err)
	}
	if err := fs.device.Close(); err != nil {
		return fmt.Errorf("unmounting volume: %w", err)
	}
	fs.logger.Debug("unmounted volume")
	return nil
}
