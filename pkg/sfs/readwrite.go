package sfs

import (
	"fmt"

	. "github.com/weberc2/sfs/pkg/types"
)

// Read reads from the handle's offset and advances it by the number of
// bytes read. At or past the end of the file it returns `(0, nil)`.
func (fs *FileSystem) Read(h Handle, p []byte) (int, error) {
	d, err := fs.descriptor(h)
	if err != nil {
		return 0, fmt.Errorf("reading: %w", err)
	}
	inode, err := fs.table.Get(d.ino)
	if err != nil {
		return 0, fmt.Errorf("reading: %w", err)
	}
	n, err := fs.rw.ReadAt(inode, d.offset, p)
	d.offset += n
	if err != nil {
		return int(n), fmt.Errorf("reading handle `%d`: %w", h, err)
	}
	return int(n), nil
}

// Write writes at the handle's offset, growing the file as needed, and
// advances the offset by the number of bytes written.
func (fs *FileSystem) Write(h Handle, p []byte) (int, error) {
	d, err := fs.descriptor(h)
	if err != nil {
		return 0, fmt.Errorf("writing: %w", err)
	}
	inode, err := fs.table.Get(d.ino)
	if err != nil {
		return 0, fmt.Errorf("writing: %w", err)
	}
	n, err := fs.rw.WriteAt(inode, d.offset, p)
	d.offset += n
	if err != nil {
		return int(n), fmt.Errorf("writing handle `%d`: %w", h, err)
	}
	return int(n), nil
}
