package sfs

import (
	"fmt"

	. "github.com/weberc2/sfs/pkg/types"
)

type descriptor struct {
	open   bool
	ino    Ino
	offset Byte
}

func (fs *FileSystem) descriptor(h Handle) (*descriptor, error) {
	if h < 0 || int(h) >= len(fs.descriptors) || !fs.descriptors[h].open {
		return nil, fmt.Errorf("handle `%d`: %w", h, ErrInvalidHandle)
	}
	return &fs.descriptors[h], nil
}

func (fs *FileSystem) isOpen(ino Ino) bool {
	for i := range fs.descriptors {
		if fs.descriptors[i].open && fs.descriptors[i].ino == ino {
			return true
		}
	}
	return false
}

func (fs *FileSystem) freeSlot() (Handle, bool) {
	for i := range fs.descriptors {
		if !fs.descriptors[i].open {
			return Handle(i), true
		}
	}
	return -1, false
}

func (fs *FileSystem) openDescriptors() int {
	var n int
	for i := range fs.descriptors {
		if fs.descriptors[i].open {
			n++
		}
	}
	return n
}

// Open opens `name`, creating an empty file if it doesn't exist. The
// returned handle is positioned at the end of the file. A file may only be
// open through one handle at a time.
func (fs *FileSystem) Open(name string) (Handle, error) {
	result, err := fs.dir.Find(name)
	if err != nil {
		return -1, fmt.Errorf("opening `%s`: %w", name, err)
	}
	if result.Found && fs.isOpen(result.Ino) {
		return -1, fmt.Errorf("opening `%s`: %w", name, ErrAlreadyOpen)
	}
	h, ok := fs.freeSlot()
	if !ok {
		return -1, fmt.Errorf("opening `%s`: %w", name, ErrDescriptorTableFull)
	}

	ino := result.Ino
	if !result.Found {
		if ino, err = fs.dir.Create(name); err != nil {
			return -1, fmt.Errorf("opening `%s`: %w", name, err)
		}
		fs.logger.Debug("created file", "name", name, "ino", ino)
	}

	inode, err := fs.table.Get(ino)
	if err != nil {
		return -1, fmt.Errorf("opening `%s`: %w", name, err)
	}
	fs.descriptors[h] = descriptor{open: true, ino: ino, offset: inode.Size}
	return h, nil
}

func (fs *FileSystem) Close(h Handle) error {
	d, err := fs.descriptor(h)
	if err != nil {
		return fmt.Errorf("closing: %w", err)
	}
	*d = descriptor{}
	return nil
}

// Seek moves the handle's offset. Offsets past the end of the file are
// allowed: reads there return nothing and writes leave a zero-filled gap.
func (fs *FileSystem) Seek(h Handle, offset Byte) error {
	d, err := fs.descriptor(h)
	if err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	if offset < 0 {
		return fmt.Errorf("seeking to `%d`: %w", offset, ErrInvalidOffset)
	}
	d.offset = offset
	return nil
}

func (fs *FileSystem) Tell(h Handle) (Byte, error) {
	d, err := fs.descriptor(h)
	if err != nil {
		return 0, fmt.Errorf("telling: %w", err)
	}
	return d.offset, nil
}
