package encode

import (
	"bytes"
	"testing"

	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

func TestInodeLayoutFillsRecord(t *testing.T) {
	if inodeEnd != InodeSize {
		t.Fatalf("inode fields end at `%d`; record is `%d` bytes", inodeEnd, InodeSize)
	}
}

func TestEncodeSuperblock_BitExact(t *testing.T) {
	sb := Superblock{
		Magic:            SuperblockMagic,
		BlockSize:        1024,
		TotalBlocks:      17539,
		InodeTableBlocks: 1152,
		RootIno:          InoRoot,
	}
	var buf [layout.SuperblockSize]byte
	EncodeSuperblock(&sb, &buf)

	wanted := []byte{
		0x05, 0x00, 0xbd, 0xac, // magic
		0x00, 0x04, 0x00, 0x00, // block size
		0x83, 0x44, 0x00, 0x00, // total blocks
		0x80, 0x04, 0x00, 0x00, // inode table blocks
		0x00, 0x00, 0x00, 0x00, // root ino
	}
	if !bytes.Equal(wanted, buf[:]) {
		t.Fatalf("EncodeSuperblock(): wanted `%#x`; found `%#x`", wanted, buf[:])
	}

	var found Superblock
	DecodeSuperblock(&found, &buf)
	if found != sb {
		t.Fatalf("DecodeSuperblock(): wanted `%+v`; found `%+v`", sb, found)
	}
}

func TestEncodeInode(t *testing.T) {
	wanted := Inode{
		Mode:          ModeRegular,
		LinksCount:    1,
		UID:           1000,
		GID:           100,
		Size:          5000,
		DirectBlocks:  [...]Block{0, 1, 2, 3, 4, 9, 9, 9, 9, 9, 9, 9},
		IndirectBlock: 9,
	}
	var buf [InodeSize]byte
	EncodeInode(&wanted, &buf)

	// size lives right after mode, links count, uid and gid
	if size := getU32(buf[:], 16); size != 5000 {
		t.Fatalf("encoded size: wanted `5000`; found `%d`", size)
	}

	var found Inode
	DecodeInode(&found, &buf)
	if found != wanted {
		t.Fatalf("DecodeInode(): wanted `%+v`; found `%+v`", wanted, found)
	}
}

func TestEncodeInodeTable_SetsInos(t *testing.T) {
	inodes := make([]Inode, 3)
	for i := range inodes {
		inodes[i].Size = Byte(i * 10)
	}
	buf := make([]byte, 256)
	for i := range buf {
		buf[i] = 0xff
	}
	EncodeInodeTable(inodes, buf)
	for i, b := range buf[3*InodeSize:] {
		if b != 0 {
			t.Fatalf("tail byte `%d`: wanted `0`; found `%#x`", i, b)
		}
	}

	found := make([]Inode, 3)
	DecodeInodeTable(found, buf)
	for i := range found {
		if found[i].Ino != Ino(i) || found[i].Size != Byte(i*10) {
			t.Fatalf("inode `%d`: found `%+v`", i, found[i])
		}
	}
}

func TestEncodeDirEntry(t *testing.T) {
	for _, testCase := range []struct {
		name  string
		entry DirEntry
	}{
		{name: "short", entry: DirEntry{Name: "a", Ino: 3}},
		{name: "max-length", entry: DirEntry{Name: "0123456789abcdef", Ino: 42}},
		{name: "unused", entry: DirEntry{}},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			var buf [DirEntrySize]byte
			for i := range buf {
				buf[i] = 'x'
			}
			EncodeDirEntry(&testCase.entry, &buf)
			var found DirEntry
			DecodeDirEntry(&found, &buf)
			if found != testCase.entry {
				t.Fatalf(
					"DecodeDirEntry(): wanted `%+v`; found `%+v`",
					testCase.entry,
					found,
				)
			}
		})
	}
}

func TestEncodePointers(t *testing.T) {
	wanted := []Block{7, 0, 1 << 20, 64}
	buf := make([]byte, len(wanted)*int(BlockPointerSize))
	EncodePointers(wanted, buf)
	found := make([]Block, len(wanted))
	DecodePointers(found, buf)
	for i := range wanted {
		if wanted[i] != found[i] {
			t.Fatalf("pointer `%d`: wanted `%d`; found `%d`", i, wanted[i], found[i])
		}
	}
}
