package types

const (
	MaxNameLen Byte = 16

	// DirEntrySize is the encoded size of a directory entry: the NUL-padded
	// name followed by a 32-bit ino.
	DirEntrySize Byte = MaxNameLen + 4
)

type DirEntry struct {
	Name string
	Ino  Ino
}

// Used reports whether the entry refers to a file.
func (entry *DirEntry) Used() bool { return entry.Ino != InoNil }
