package directory

import (
	"fmt"
	"strings"

	. "github.com/weberc2/sfs/pkg/types"
)

// Directory is the volume's single (root) directory, mapping names to
// inodes.
type Directory interface {
	Find(name string) (FindResult, error)
	Create(name string) (Ino, error)
	Remove(name string) (Ino, error)

	// NextName returns successive names on each call and `false` once
	// every entry has been returned. The following call starts over.
	NextName() (string, bool)

	Len() int
	Entries() []DirEntry

	// Load reads the directory from its inode.
	Load() error

	// Persist writes every entry back to its inode.
	Persist() error
}

// FindResult describes the outcome of a lookup. When `Found` is false,
// `Index` is the slot a new entry would occupy unless `Full` is set.
type FindResult struct {
	Found bool
	Full  bool
	Index int
	Ino   Ino
}

// ValidateName rejects names which cannot be stored in an entry.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("name `%q` contains NUL: %w", name, ErrInvalidName)
	}
	if Byte(len(name)) > MaxNameLen {
		return fmt.Errorf(
			"name `%s` is `%d` bytes (max `%d`): %w",
			name,
			len(name),
			MaxNameLen,
			ErrNameTooLong,
		)
	}
	return nil
}
