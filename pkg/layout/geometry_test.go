package layout

import (
	"errors"
	"testing"

	. "github.com/weberc2/sfs/pkg/types"
)

func TestDefaultGeometry(t *testing.T) {
	g := DefaultGeometry
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate(): unexpected err: %v", err)
	}

	for _, testCase := range []struct {
		name   string
		found  int64
		wanted int64
	}{
		{"inode table blocks", int64(g.InodeTableBlocks()), 1152},
		{"data start", int64(g.DataStart()), 1153},
		{"bitmap start", int64(g.BitmapStart()), 1153 + 16384},
		{"bitmap blocks", int64(g.BitmapBlocks()), 2},
		{"total blocks", int64(g.TotalBlocks()), 1153 + 16384 + 2},
		{"pointers per block", int64(g.PointersPerBlock()), 256},
		{"max file blocks", int64(g.MaxFileBlocks()), 268},
		{"max file size", int64(g.MaxFileSize()), 268 * 1024},
		{"dir capacity", int64(g.DirCapacity()), 268 * 1024 / 20},
		{"nil block", int64(g.NilBlock()), 16384},
	} {
		if testCase.found != testCase.wanted {
			t.Fatalf(
				"%s: wanted `%d`; found `%d`",
				testCase.name,
				testCase.wanted,
				testCase.found,
			)
		}
	}
}

func TestGeometry_DirCapacityBoundedByInodes(t *testing.T) {
	g := Geometry{BlockSize: 128, DataBlocks: 64, Inodes: 8}
	if found := g.DirCapacity(); found != 7 {
		t.Fatalf("DirCapacity(): wanted `7`; found `%d`", found)
	}
}

func TestGeometry_Validate(t *testing.T) {
	for _, testCase := range []struct {
		name     string
		geometry Geometry
	}{
		{"block-too-small", Geometry{BlockSize: 64, DataBlocks: 8, Inodes: 8}},
		{"block-unaligned", Geometry{BlockSize: 130, DataBlocks: 8, Inodes: 8}},
		{"no-data", Geometry{BlockSize: 128, DataBlocks: 0, Inodes: 8}},
		{"no-inodes", Geometry{BlockSize: 128, DataBlocks: 8, Inodes: 1}},
		{"too-many-blocks", Geometry{
			BlockSize:  72,
			DataBlocks: 1 << 31,
			Inodes:     1 << 31,
		}},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.geometry.Validate()
			if !errors.Is(err, InvalidGeometryErr) {
				t.Fatalf(
					"Validate(): wanted `%v`; found `%v`",
					InvalidGeometryErr,
					err,
				)
			}
		})
	}
}

func TestGeometry_CheckSuperblock(t *testing.T) {
	g := Geometry{BlockSize: 128, DataBlocks: 64, Inodes: 8}
	sb := g.NewSuperblock()
	if err := g.CheckSuperblock(&sb); err != nil {
		t.Fatalf("CheckSuperblock(): unexpected err: %v", err)
	}

	badMagic := sb
	badMagic.Magic = 0xdeadbeef
	if err := g.CheckSuperblock(&badMagic); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("CheckSuperblock(): wanted `%v`; found `%v`", ErrInvalidVolume, err)
	}

	other := Geometry{BlockSize: 128, DataBlocks: 128, Inodes: 8}
	if err := other.CheckSuperblock(&sb); !errors.Is(err, ErrInvalidVolume) {
		t.Fatalf("CheckSuperblock(): wanted `%v`; found `%v`", ErrInvalidVolume, err)
	}
}
