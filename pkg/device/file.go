package device

import (
	"fmt"
	"os"

	. "github.com/weberc2/sfs/pkg/types"
)

var _ Device = (*File)(nil)

// File stores the volume in a single host file.
type File struct {
	shape
	Path string
	file *os.File
}

func NewFile(path string) *File { return &File{Path: path} }

func (f *File) Format(blockSize Byte, blocks Block) error {
	if err := f.Close(); err != nil {
		return err
	}
	file, err := os.OpenFile(f.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("formatting volume file: %w", err)
	}
	if err := file.Truncate(int64(Byte(blocks) * blockSize)); err != nil {
		file.Close()
		return fmt.Errorf("sizing volume file `%s`: %w", f.Path, err)
	}
	f.file = file
	f.shape = shape{blockSize: blockSize, blocks: blocks}
	return nil
}

func (f *File) Open(blockSize Byte, blocks Block) error {
	if err := f.Close(); err != nil {
		return err
	}
	file, err := os.OpenFile(f.Path, os.O_RDWR, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("opening `%s`: %w", f.Path, ErrInvalidVolume)
		}
		return fmt.Errorf("opening volume file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("opening volume file: %w", err)
	}
	if size := Byte(blocks) * blockSize; Byte(info.Size()) != size {
		file.Close()
		return fmt.Errorf(
			"volume file `%s` is `%d` bytes; wanted `%d`: %w",
			f.Path,
			info.Size(),
			size,
			ErrInvalidVolume,
		)
	}
	f.file = file
	f.shape = shape{blockSize: blockSize, blocks: blocks}
	return nil
}

func (f *File) ReadBlocks(start, count Block, p []byte) error {
	if f.file == nil {
		return ErrNotOpen
	}
	if err := f.check(start, count, p); err != nil {
		return err
	}
	if _, err := f.file.ReadAt(p, int64(Byte(start)*f.blockSize)); err != nil {
		return fmt.Errorf(
			"reading `%d` blocks at block `%d`: %w",
			count,
			start,
			err,
		)
	}
	return nil
}

func (f *File) WriteBlocks(start, count Block, p []byte) error {
	if f.file == nil {
		return ErrNotOpen
	}
	if err := f.check(start, count, p); err != nil {
		return err
	}
	if _, err := f.file.WriteAt(p, int64(Byte(start)*f.blockSize)); err != nil {
		return fmt.Errorf(
			"writing `%d` blocks at block `%d`: %w",
			count,
			start,
			err,
		)
	}
	return nil
}

func (f *File) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	f.shape = shape{}
	if err != nil {
		return fmt.Errorf("closing volume file `%s`: %w", f.Path, err)
	}
	return nil
}
