package sfs

import (
	"fmt"
	"io"

	. "github.com/weberc2/sfs/pkg/types"
)

var _ io.ReadWriteSeeker = (*File)(nil)
var _ io.Closer = (*File)(nil)

// File adapts a handle to the `io` interfaces. Unlike `FileSystem.Read`,
// `File.Read` reports the end of the file with `io.EOF`.
type File struct {
	fs     *FileSystem
	handle Handle
	name   string
}

func (fs *FileSystem) OpenFile(name string) (*File, error) {
	h, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, handle: h, name: name}, nil
}

func (f *File) Name() string { return f.name }

func (f *File) Handle() Handle { return f.handle }

func (f *File) Read(p []byte) (int, error) {
	n, err := f.fs.Read(f.handle, p)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	return f.fs.Write(f.handle, p)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	var base Byte
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		current, err := f.fs.Tell(f.handle)
		if err != nil {
			return 0, err
		}
		base = current
	case io.SeekEnd:
		size, err := f.fs.FileSize(f.name)
		if err != nil {
			return 0, err
		}
		base = size
	default:
		return 0, fmt.Errorf("seeking: whence `%d`: %w", whence, ErrInvalidOffset)
	}
	target := base + Byte(offset)
	if err := f.fs.Seek(f.handle, target); err != nil {
		return 0, err
	}
	return int64(target), nil
}

func (f *File) Close() error {
	return f.fs.Close(f.handle)
}
