package sfs

import (
	"fmt"

	. "github.com/weberc2/sfs/pkg/types"
)

// NextFileName returns the next name in the directory, or `false` once the
// end of the directory is reached, after which enumeration starts over.
func (fs *FileSystem) NextFileName() (string, bool) {
	return fs.dir.NextName()
}

func (fs *FileSystem) lookup(name string) (*Inode, error) {
	result, err := fs.dir.Find(name)
	if err != nil {
		return nil, err
	}
	if !result.Found {
		return nil, ErrNotFound
	}
	return fs.table.Get(result.Ino)
}

func (fs *FileSystem) FileSize(name string) (Byte, error) {
	inode, err := fs.lookup(name)
	if err != nil {
		return 0, fmt.Errorf("getting size of `%s`: %w", name, err)
	}
	return inode.Size, nil
}

// Remove deletes `name` and releases its inode and blocks. Handles open on
// the file are closed.
func (fs *FileSystem) Remove(name string) error {
	ino, err := fs.dir.Remove(name)
	if err != nil {
		return err
	}
	for i := range fs.descriptors {
		if fs.descriptors[i].open && fs.descriptors[i].ino == ino {
			fs.descriptors[i] = descriptor{}
		}
	}
	fs.logger.Debug("removed file", "name", name, "ino", ino)
	return nil
}

// Files lists every file without disturbing the `NextFileName` cursor.
func (fs *FileSystem) Files() []FileInfo {
	entries := fs.dir.Entries()
	files := make([]FileInfo, len(entries))
	for i, entry := range entries {
		files[i] = FileInfo{Name: entry.Name, Ino: entry.Ino}
		if inode, err := fs.table.Get(entry.Ino); err == nil {
			files[i].Size = inode.Size
		}
	}
	return files
}

func (fs *FileSystem) Stat() Stats {
	free := Block(fs.bitmap.FreeCount())
	return Stats{
		BlockSize:       fs.geometry.BlockSize,
		TotalBlocks:     fs.geometry.TotalBlocks(),
		DataBlocks:      fs.geometry.DataBlocks,
		FreeDataBlocks:  free,
		UsedDataBlocks:  fs.geometry.DataBlocks - free,
		Files:           fs.dir.Len(),
		MaxFiles:        fs.geometry.DirCapacity(),
		MaxFileSize:     fs.geometry.MaxFileSize(),
		MaxNameLen:      MaxNameLen,
		OpenDescriptors: fs.openDescriptors(),
	}
}

// ReadFile returns the whole content of `name` without opening it.
func (fs *FileSystem) ReadFile(name string) ([]byte, error) {
	inode, err := fs.lookup(name)
	if err != nil {
		return nil, fmt.Errorf("reading `%s`: %w", name, err)
	}
	data := make([]byte, inode.Size)
	if _, err := fs.rw.ReadAt(inode, 0, data); err != nil {
		return nil, fmt.Errorf("reading `%s`: %w", name, err)
	}
	return data, nil
}

// WriteFile replaces the content of `name` with `data`, creating the file
// if necessary.
func (fs *FileSystem) WriteFile(name string, data []byte) error {
	h, err := fs.Open(name)
	if err != nil {
		return fmt.Errorf("writing `%s`: %w", name, err)
	}
	defer fs.Close(h)

	inode, err := fs.table.Get(fs.descriptors[h].ino)
	if err != nil {
		return fmt.Errorf("writing `%s`: %w", name, err)
	}
	if err := fs.rw.Shrink(inode, 0); err != nil {
		return fmt.Errorf("truncating `%s`: %w", name, err)
	}
	if err := fs.Seek(h, 0); err != nil {
		return fmt.Errorf("writing `%s`: %w", name, err)
	}
	if _, err := fs.Write(h, data); err != nil {
		return fmt.Errorf("writing `%s`: %w", name, err)
	}
	return nil
}

// AppendFile appends `data` to `name`, creating the file if necessary.
func (fs *FileSystem) AppendFile(name string, data []byte) error {
	h, err := fs.Open(name)
	if err != nil {
		return fmt.Errorf("appending to `%s`: %w", name, err)
	}
	defer fs.Close(h)
	if _, err := fs.Write(h, data); err != nil {
		return fmt.Errorf("appending to `%s`: %w", name, err)
	}
	return nil
}
