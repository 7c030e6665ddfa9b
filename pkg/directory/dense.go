package directory

import (
	"fmt"

	"github.com/weberc2/sfs/pkg/encode"
	"github.com/weberc2/sfs/pkg/inode"
	. "github.com/weberc2/sfs/pkg/types"
)

var _ Directory = (*Dense)(nil)

// Dense stores the directory as a packed array of fixed-size entries in the
// root inode's content. Entries `[0, Len())` are in use; removal moves the
// last entry into the hole so the array never has gaps.
type Dense struct {
	rw       *inode.ReadWriter
	capacity int
	entries  []DirEntry
	cursor   int
}

func NewDense(rw *inode.ReadWriter, capacity int) *Dense {
	return &Dense{rw: rw, capacity: capacity}
}

func (d *Dense) root() (*Inode, error) {
	return d.rw.Table().Get(InoRoot)
}

func (d *Dense) Find(name string) (FindResult, error) {
	if err := ValidateName(name); err != nil {
		return FindResult{}, err
	}
	for i := range d.entries {
		if d.entries[i].Name == name {
			return FindResult{Found: true, Index: i, Ino: d.entries[i].Ino}, nil
		}
	}
	if len(d.entries) >= d.capacity {
		return FindResult{Full: true}, nil
	}
	return FindResult{Index: len(d.entries)}, nil
}

func (d *Dense) Create(name string) (Ino, error) {
	result, err := d.Find(name)
	if err != nil {
		return InoNil, fmt.Errorf("creating `%s`: %w", name, err)
	}
	if result.Found {
		return InoNil, fmt.Errorf("creating `%s`: %w", name, ErrAlreadyExists)
	}
	if result.Full {
		return InoNil, fmt.Errorf("creating `%s`: %w", name, ErrDirectoryFull)
	}

	ino, ok := d.lowestUnusedIno()
	if !ok {
		return InoNil, fmt.Errorf("creating `%s`: %w", name, ErrDirectoryFull)
	}

	table := d.rw.Table()
	table.Reset(ino, ModeRegular)
	d.entries = append(d.entries, DirEntry{Name: name, Ino: ino})
	if err := d.writeEntry(result.Index); err != nil {
		d.entries = d.entries[:result.Index]
		table.Reset(ino, 0)
		return InoNil, fmt.Errorf("creating `%s`: %w", name, err)
	}
	if err := table.Save(ino); err != nil {
		return InoNil, fmt.Errorf("creating `%s`: %w", name, err)
	}
	return ino, nil
}

func (d *Dense) lowestUnusedIno() (Ino, bool) {
	used := make([]bool, d.rw.Table().Len())
	used[InoRoot] = true
	for i := range d.entries {
		used[d.entries[i].Ino] = true
	}
	for ino := InoFirst; int(ino) < len(used); ino++ {
		if !used[ino] {
			return ino, true
		}
	}
	return InoNil, false
}

// Remove deletes the entry for `name` and releases its inode and blocks.
// The last entry moves into the freed slot. If that slot was already passed
// by an enumeration in progress, the moved entry is skipped for the rest of
// that pass; no entry is ever returned twice and the next pass includes it.
func (d *Dense) Remove(name string) (Ino, error) {
	result, err := d.Find(name)
	if err != nil {
		return InoNil, fmt.Errorf("removing `%s`: %w", name, err)
	}
	if !result.Found {
		return InoNil, fmt.Errorf("removing `%s`: %w", name, ErrNotFound)
	}

	last := len(d.entries) - 1
	if result.Index != last {
		d.entries[result.Index] = d.entries[last]
	}
	d.entries = d.entries[:last]
	if d.cursor > len(d.entries) {
		d.cursor = len(d.entries)
	}

	if result.Index != last {
		if err := d.writeEntry(result.Index); err != nil {
			return InoNil, fmt.Errorf("removing `%s`: %w", name, err)
		}
	}
	root, err := d.root()
	if err != nil {
		return InoNil, err
	}
	if err := d.rw.Shrink(root, Byte(len(d.entries))*DirEntrySize); err != nil {
		return InoNil, fmt.Errorf("removing `%s`: %w", name, err)
	}

	file, err := d.rw.Table().Get(result.Ino)
	if err != nil {
		return InoNil, fmt.Errorf("removing `%s`: %w", name, err)
	}
	if err := d.rw.Shrink(file, 0); err != nil {
		return InoNil, fmt.Errorf("removing `%s`: releasing blocks: %w", name, err)
	}
	d.rw.Table().Reset(result.Ino, 0)
	if err := d.rw.Table().Save(result.Ino); err != nil {
		return InoNil, fmt.Errorf("removing `%s`: %w", name, err)
	}
	return result.Ino, nil
}

func (d *Dense) NextName() (string, bool) {
	if d.cursor >= len(d.entries) {
		d.cursor = 0
		return "", false
	}
	name := d.entries[d.cursor].Name
	d.cursor++
	return name, true
}

func (d *Dense) Len() int { return len(d.entries) }

func (d *Dense) Entries() []DirEntry {
	return append([]DirEntry(nil), d.entries...)
}

func (d *Dense) Load() error {
	root, err := d.root()
	if err != nil {
		return err
	}
	if root.Size%DirEntrySize != 0 {
		return fmt.Errorf(
			"root directory size `%d` is not a multiple of `%d`: %w",
			root.Size,
			DirEntrySize,
			ErrCorrupt,
		)
	}
	count := int(root.Size / DirEntrySize)
	if count > d.capacity {
		return fmt.Errorf(
			"root directory has `%d` entries (max `%d`): %w",
			count,
			d.capacity,
			ErrCorrupt,
		)
	}

	buf := make([]byte, root.Size)
	if _, err := d.rw.ReadAt(root, 0, buf); err != nil {
		return fmt.Errorf("loading root directory: %w", err)
	}

	entries := make([]DirEntry, count)
	for i := range entries {
		encode.DecodeDirEntry(
			&entries[i],
			(*[DirEntrySize]byte)(buf[Byte(i)*DirEntrySize:]),
		)
		if !entries[i].Used() || int(entries[i].Ino) >= d.rw.Table().Len() {
			return fmt.Errorf(
				"root directory entry `%d` refers to inode `%d`: %w",
				i,
				entries[i].Ino,
				ErrCorrupt,
			)
		}
	}
	d.entries = entries
	d.cursor = 0
	return nil
}

func (d *Dense) Persist() error {
	root, err := d.root()
	if err != nil {
		return err
	}
	size := Byte(len(d.entries)) * DirEntrySize
	if size > 0 {
		buf := make([]byte, size)
		for i := range d.entries {
			encode.EncodeDirEntry(
				&d.entries[i],
				(*[DirEntrySize]byte)(buf[Byte(i)*DirEntrySize:]),
			)
		}
		if _, err := d.rw.WriteAt(root, 0, buf); err != nil {
			return fmt.Errorf("persisting root directory: %w", err)
		}
	}
	if err := d.rw.Shrink(root, size); err != nil {
		return fmt.Errorf("persisting root directory: %w", err)
	}
	return nil
}

func (d *Dense) writeEntry(i int) error {
	root, err := d.root()
	if err != nil {
		return err
	}
	var buf [DirEntrySize]byte
	encode.EncodeDirEntry(&d.entries[i], &buf)
	if _, err := d.rw.WriteAt(root, Byte(i)*DirEntrySize, buf[:]); err != nil {
		return fmt.Errorf("writing directory entry `%d`: %w", i, err)
	}
	return nil
}
