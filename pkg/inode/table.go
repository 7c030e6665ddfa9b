package inode

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/device"
	"github.com/weberc2/sfs/pkg/encode"
	"github.com/weberc2/sfs/pkg/layout"
	. "github.com/weberc2/sfs/pkg/types"
)

// Table is the in-memory copy of the inode table. Changes are made in
// memory and written back with `Save` (one inode) or `Persist` (the whole
// region).
type Table struct {
	geometry *layout.Geometry
	device   device.Device
	inodes   []Inode

	// raw mirrors the on-disk region so that saving a single inode only
	// rewrites the blocks it spans.
	raw []byte
}

func NewTable(device device.Device, geometry *layout.Geometry) *Table {
	return &Table{
		geometry: geometry,
		device:   device,
		inodes:   make([]Inode, geometry.Inodes),
		raw:      make([]byte, geometry.InodeTableSize()),
	}
}

// Format resets every inode to the unused state, makes inode 0 the (empty)
// root directory and persists the table.
func (t *Table) Format() error {
	for i := range t.inodes {
		t.inodes[i] = Inode{Ino: Ino(i)}
		t.clearBlocks(&t.inodes[i])
	}
	t.Reset(InoRoot, ModeDir)
	return t.Persist()
}

// Load reads the whole table from the device.
func (t *Table) Load() error {
	if err := t.device.ReadBlocks(
		layout.InodeTableStart,
		t.geometry.InodeTableBlocks(),
		t.raw,
	); err != nil {
		return fmt.Errorf("loading inode table: %w", err)
	}
	encode.DecodeInodeTable(t.inodes, t.raw)
	return nil
}

// Persist writes the whole table to the device.
func (t *Table) Persist() error {
	encode.EncodeInodeTable(t.inodes, t.raw)
	if err := t.device.WriteBlocks(
		layout.InodeTableStart,
		t.geometry.InodeTableBlocks(),
		t.raw,
	); err != nil {
		return fmt.Errorf("persisting inode table: %w", err)
	}
	return nil
}

// Save writes the table blocks holding inode `ino`.
func (t *Table) Save(ino Ino) error {
	inode, err := t.Get(ino)
	if err != nil {
		return err
	}
	start := Byte(ino) * InodeSize
	encode.EncodeInode(inode, (*[InodeSize]byte)(t.raw[start:]))

	bs := t.geometry.BlockSize
	first := Block(start / bs)
	last := Block((start + InodeSize - 1) / bs)
	if err := t.device.WriteBlocks(
		layout.InodeTableStart+first,
		last-first+1,
		t.raw[Byte(first)*bs:Byte(last+1)*bs],
	); err != nil {
		return fmt.Errorf("saving inode `%d`: %w", ino, err)
	}
	return nil
}

// Put copies `inode` into the table and saves it.
func (t *Table) Put(inode *Inode) error {
	entry, err := t.Get(inode.Ino)
	if err != nil {
		return err
	}
	*entry = *inode
	return t.Save(inode.Ino)
}

// Get returns a pointer into the table. Modifications are visible to
// subsequent calls but are not written until `Save` or `Persist`.
func (t *Table) Get(ino Ino) (*Inode, error) {
	if uint64(ino) >= uint64(len(t.inodes)) {
		return nil, fmt.Errorf(
			"inode `%d` of `%d`: %w",
			ino,
			len(t.inodes),
			ErrOutOfRange,
		)
	}
	return &t.inodes[ino], nil
}

// Reset reinitialises inode `ino` in memory as an empty file of the given
// mode: one link, size zero and no blocks. A zero mode leaves the inode
// unused.
func (t *Table) Reset(ino Ino, mode uint32) {
	inode := &t.inodes[ino]
	*inode = Inode{Ino: ino, Mode: mode}
	if mode != 0 {
		inode.LinksCount = 1
	}
	t.clearBlocks(inode)
}

func (t *Table) clearBlocks(inode *Inode) {
	for i := range inode.DirectBlocks {
		inode.DirectBlocks[i] = t.geometry.NilBlock()
	}
	inode.IndirectBlock = t.geometry.NilBlock()
}

func (t *Table) Len() int { return len(t.inodes) }

// Inodes exposes the table for read-only scans.
func (t *Table) Inodes() []Inode { return t.inodes }
