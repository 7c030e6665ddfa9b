package encode

import (
	"bytes"

	. "github.com/weberc2/sfs/pkg/types"
)

// EncodeDirEntry writes the entry's name NUL-padded to `MaxNameLen` bytes
// followed by its ino. Names longer than `MaxNameLen` are truncated; callers
// validate names before they reach the codec.
func EncodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	name := p[dirEntryNameStart:dirEntryNameEnd]
	n := copy(name, entry.Name)
	for i := n; i < len(name); i++ {
		name[i] = 0
	}
	putU32(p, dirEntryInoStart, uint32(entry.Ino))
}

func DecodeDirEntry(entry *DirEntry, b *[DirEntrySize]byte) {
	p := b[:]
	name := p[dirEntryNameStart:dirEntryNameEnd]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	entry.Name = string(name)
	entry.Ino = Ino(getU32(p, dirEntryInoStart))
}

const (
	dirEntryNameStart Byte = 0
	dirEntryNameEnd   Byte = dirEntryNameStart + MaxNameLen
	dirEntryInoStart  Byte = dirEntryNameEnd
)
