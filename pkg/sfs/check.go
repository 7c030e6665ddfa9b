package sfs

import (
	"fmt"
	"strings"

	. "github.com/weberc2/sfs/pkg/types"
)

// Check verifies the volume's metadata: every live inode addresses exactly
// the blocks its size calls for, no block is claimed twice, unused inodes
// hold nothing, the directory size matches its entry count and the bitmap
// marks exactly the claimed blocks as allocated.
func (fs *FileSystem) Check() error {
	var problems []string
	report := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	nilBlock := fs.geometry.NilBlock()
	owners := make(map[Block]Ino)
	claim := func(ino Ino, b Block) {
		if b >= fs.geometry.DataBlocks {
			report("inode `%d` points at block `%d` outside the data region", ino, b)
			return
		}
		if owner, found := owners[b]; found {
			report("block `%d` claimed by inodes `%d` and `%d`", b, owner, ino)
			return
		}
		owners[b] = ino
	}

	checkInode := func(inode *Inode) {
		if inode.Size > fs.geometry.MaxFileSize() {
			report("inode `%d` size `%d` exceeds the maximum", inode.Ino, inode.Size)
			return
		}
		count := fs.geometry.BlocksFor(inode.Size)
		for i := count; i < DirectBlocksCount; i++ {
			if inode.DirectBlocks[i] != nilBlock {
				report("inode `%d` direct slot `%d` set past its size", inode.Ino, i)
			}
		}
		if count <= DirectBlocksCount && inode.IndirectBlock != nilBlock {
			report("inode `%d` has an unneeded indirect block", inode.Ino)
		}
		if count > DirectBlocksCount {
			if inode.IndirectBlock == nilBlock {
				report("inode `%d` is missing its indirect block", inode.Ino)
				return
			}
			claim(inode.Ino, inode.IndirectBlock)
		}
		blocks, err := fs.rw.Blocks(inode)
		if err != nil {
			report("inode `%d`: %v", inode.Ino, err)
			return
		}
		for _, b := range blocks {
			claim(inode.Ino, b)
		}
	}

	root, err := fs.table.Get(InoRoot)
	if err != nil {
		return err
	}
	if !root.IsDir() {
		report("root inode is not a directory")
	}
	if wanted := Byte(fs.dir.Len()) * DirEntrySize; root.Size != wanted {
		report("root size `%d`; wanted `%d` for `%d` entries", root.Size, wanted, fs.dir.Len())
	}
	checkInode(root)

	live := make(map[Ino]string)
	for _, entry := range fs.dir.Entries() {
		if other, found := live[entry.Ino]; found {
			report("entries `%s` and `%s` share inode `%d`", other, entry.Name, entry.Ino)
			continue
		}
		live[entry.Ino] = entry.Name
	}
	for i := range fs.table.Inodes() {
		inode := &fs.table.Inodes()[i]
		if inode.Ino == InoRoot {
			continue
		}
		if _, found := live[inode.Ino]; found {
			if inode.Mode&ModeTypeRegular == 0 {
				report("inode `%d` is not a regular file", inode.Ino)
			}
			checkInode(inode)
			continue
		}
		if inode.Size != 0 || inode.Mode != 0 || inode.IndirectBlock != nilBlock {
			report("unused inode `%d` is not empty", inode.Ino)
			continue
		}
		for _, b := range inode.DirectBlocks {
			if b != nilBlock {
				report("unused inode `%d` holds block `%d`", inode.Ino, b)
				break
			}
		}
	}

	for b := Block(0); b < fs.geometry.DataBlocks; b++ {
		_, claimed := owners[b]
		free := fs.bitmap.IsFree(uint64(b))
		if claimed && free {
			report("block `%d` is in use but marked free", b)
		} else if !claimed && !free {
			report("block `%d` is marked allocated but unused", b)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrCorrupt)
	}
	return nil
}
