package inode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/weberc2/sfs/pkg/alloc"
	"github.com/weberc2/sfs/pkg/alloc/store"
	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

var smallGeometry = layout.Geometry{BlockSize: 128, DataBlocks: 64, Inodes: 8}

func newReadWriter(t *testing.T, g layout.Geometry) (*ReadWriter, *device.Memory) {
	t.Helper()
	dev := device.NewMemory()
	if err := dev.Format(g.BlockSize, g.TotalBlocks()); err != nil {
		t.Fatalf("Format(): unexpected err: %v", err)
	}
	table := NewTable(dev, &g)
	if err := table.Format(); err != nil {
		t.Fatalf("Table.Format(): unexpected err: %v", err)
	}
	bitmap := alloc.NewFlushable(
		alloc.New(uint64(g.DataBlocks)),
		store.NewVolumeBitmapStore(dev, &g),
	)
	return NewReadWriter(&g, dev, table, bitmap), dev
}

func newFile(t *testing.T, rw *ReadWriter, ino Ino) *Inode {
	t.Helper()
	rw.Table().Reset(ino, ModeRegular)
	inode, err := rw.Table().Get(ino)
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	return inode
}

func readAll(t *testing.T, rw *ReadWriter, inode *Inode) []byte {
	t.Helper()
	p := make([]byte, inode.Size)
	n, err := rw.ReadAt(inode, 0, p)
	if err != nil {
		t.Fatalf("ReadAt(): unexpected err: %v", err)
	}
	if n != inode.Size {
		t.Fatalf("ReadAt(): wanted `%d` bytes; found `%d`", inode.Size, n)
	}
	return p
}

func TestWriteAt_PartialOverwrite(t *testing.T) {
	rw, _ := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 1)

	if _, err := rw.WriteAt(inode, 0, []byte("AAAAAAAAAA")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	n, err := rw.WriteAt(inode, 5, []byte("X"))
	if err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	if n != 1 {
		t.Fatalf("WriteAt(): wanted `1`; found `%d`", n)
	}

	if found := readAll(t, rw, inode); string(found) != "AAAAAXAAAA" {
		t.Fatalf("ReadAt(): wanted `AAAAAXAAAA`; found `%s`", found)
	}
}

func TestWriteAt_IndirectRoundTrip(t *testing.T) {
	rw, _ := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 1)

	// 14 full blocks and a partial one: two blocks spill into the indirect
	// block.
	size := 14*smallGeometry.BlockSize + 10
	wanted := make([]byte, size)
	for i := range wanted {
		wanted[i] = byte(i % 251)
	}

	n, err := rw.WriteAt(inode, 0, wanted)
	if err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	if n != size {
		t.Fatalf("WriteAt(): wanted `%d`; found `%d`", size, n)
	}
	if inode.IndirectBlock == smallGeometry.NilBlock() {
		t.Fatal("WriteAt(): wanted an indirect block")
	}
	if found := readAll(t, rw, inode); !bytes.Equal(found, wanted) {
		t.Fatal("ReadAt(): content mismatch")
	}

	// 15 content blocks + 1 indirect block
	free := uint64(smallGeometry.DataBlocks) - 16
	if found := rw.Bitmap().FreeCount(); found != free {
		t.Fatalf("FreeCount(): wanted `%d`; found `%d`", free, found)
	}

	// a read straddling the direct/indirect boundary
	p := make([]byte, 20)
	offset := 12*smallGeometry.BlockSize - 10
	if _, err := rw.ReadAt(inode, offset, p); err != nil {
		t.Fatalf("ReadAt(): unexpected err: %v", err)
	}
	if !bytes.Equal(p, wanted[offset:offset+20]) {
		t.Fatalf("ReadAt(): wanted `%v`; found `%v`", wanted[offset:offset+20], p)
	}

	if err := rw.Shrink(inode, 0); err != nil {
		t.Fatalf("Shrink(): unexpected err: %v", err)
	}
	if inode.IndirectBlock != smallGeometry.NilBlock() {
		t.Fatal("Shrink(): indirect block not released")
	}
	if found := rw.Bitmap().FreeCount(); found != uint64(smallGeometry.DataBlocks) {
		t.Fatalf(
			"FreeCount(): wanted `%d`; found `%d`",
			smallGeometry.DataBlocks,
			found,
		)
	}
}

func TestWriteAt_GapReadsAsZeros(t *testing.T) {
	rw, _ := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 1)

	if _, err := rw.WriteAt(inode, 0, []byte("ab")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	if _, err := rw.WriteAt(inode, 300, []byte("cd")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	found := readAll(t, rw, inode)
	if len(found) != 302 {
		t.Fatalf("size: wanted `302`; found `%d`", len(found))
	}
	if string(found[:2]) != "ab" || string(found[300:]) != "cd" {
		t.Fatalf("ReadAt(): unexpected content `%q`", found)
	}
	if !bytes.Equal(found[2:300], make([]byte, 298)) {
		t.Fatal("ReadAt(): gap is not zero-filled")
	}
}

func TestShrink_ZeroesTailOnRegrow(t *testing.T) {
	rw, _ := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 1)

	if _, err := rw.WriteAt(inode, 0, []byte("0123456789")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	if err := rw.Shrink(inode, 4); err != nil {
		t.Fatalf("Shrink(): unexpected err: %v", err)
	}
	if err := rw.Grow(inode, 10); err != nil {
		t.Fatalf("Grow(): unexpected err: %v", err)
	}
	if found := readAll(t, rw, inode); string(found) != "0123\x00\x00\x00\x00\x00\x00" {
		t.Fatalf("ReadAt(): found `%q`", found)
	}
}

func TestGrow_Failures(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		geometry layout.Geometry
		size     func(g *layout.Geometry) Byte
		wanted   error
	}{
		{
			name:     "too-large",
			geometry: smallGeometry,
			size: func(g *layout.Geometry) Byte {
				return g.MaxFileSize() + 1
			},
			wanted: ErrFileTooLarge,
		},
		{
			name:     "exhausted",
			geometry: layout.Geometry{BlockSize: 128, DataBlocks: 8, Inodes: 8},
			size: func(g *layout.Geometry) Byte {
				return 20 * g.BlockSize
			},
			wanted: ErrExhausted,
		},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			rw, _ := newReadWriter(t, testCase.geometry)
			inode := newFile(t, rw, 1)
			if _, err := rw.WriteAt(inode, 0, []byte("hello")); err != nil {
				t.Fatalf("WriteAt(): unexpected err: %v", err)
			}
			before := *inode
			free := rw.Bitmap().FreeCount()

			n, err := rw.WriteAt(
				inode,
				testCase.size(&testCase.geometry)-1,
				[]byte("!"),
			)
			if !errors.Is(err, testCase.wanted) {
				t.Fatalf("WriteAt(): wanted `%v`; found `%v`", testCase.wanted, err)
			}
			if n != 0 {
				t.Fatalf("WriteAt(): wanted `0` bytes written; found `%d`", n)
			}
			if *inode != before {
				t.Fatalf("inode: wanted `%+v`; found `%+v`", before, *inode)
			}
			if found := rw.Bitmap().FreeCount(); found != free {
				t.Fatalf("FreeCount(): wanted `%d`; found `%d`", free, found)
			}
			if found := readAll(t, rw, inode); string(found) != "hello" {
				t.Fatalf("ReadAt(): wanted `hello`; found `%s`", found)
			}
		})
	}
}

func TestReadAt_EOF(t *testing.T) {
	rw, _ := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 1)
	if _, err := rw.WriteAt(inode, 0, []byte("hello")); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}
	for _, offset := range []Byte{5, 100} {
		n, err := rw.ReadAt(inode, offset, make([]byte, 4))
		if err != nil || n != 0 {
			t.Fatalf("ReadAt(%d): wanted `(0, nil)`; found `(%d, %v)`", offset, n, err)
		}
	}
	n, err := rw.ReadAt(inode, 3, make([]byte, 4))
	if err != nil || n != 2 {
		t.Fatalf("ReadAt(3): wanted `(2, nil)`; found `(%d, %v)`", n, err)
	}
}

func TestTable_PersistsAcrossLoad(t *testing.T) {
	rw, dev := newReadWriter(t, smallGeometry)
	inode := newFile(t, rw, 5)
	if _, err := rw.WriteAt(inode, 0, bytes.Repeat([]byte("z"), 300)); err != nil {
		t.Fatalf("WriteAt(): unexpected err: %v", err)
	}

	table := NewTable(dev, &smallGeometry)
	if err := table.Load(); err != nil {
		t.Fatalf("Load(): unexpected err: %v", err)
	}
	found, err := table.Get(5)
	if err != nil {
		t.Fatalf("Get(): unexpected err: %v", err)
	}
	if *found != *inode {
		t.Fatalf("Get(): wanted `%+v`; found `%+v`", *inode, *found)
	}

	root, _ := table.Get(InoRoot)
	if !root.IsDir() || root.LinksCount != 1 {
		t.Fatalf("root inode: found `%+v`", *root)
	}
	unused, _ := table.Get(2)
	if unused.Mode != 0 || unused.DirectBlocks[0] != smallGeometry.NilBlock() {
		t.Fatalf("unused inode: found `%+v`", *unused)
	}

	if _, err := table.Get(8); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Get(8): wanted `%v`; found `%v`", ErrOutOfRange, err)
	}
}
