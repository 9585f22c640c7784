package fsys

import (
	"errors"
	"fmt"

	"github.com/keks/ldiskfs"
)

// ErrInconsistent is matched by every error Check reports.
var ErrInconsistent = errors.New("inconsistent disk")

func inconsistent(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}

// Check verifies the on-disk structures against each other:
//
//   - the bitmap and descriptor blocks are marked allocated,
//   - a data block is marked allocated iff exactly one live descriptor
//     points to it,
//   - every live slot names a live descriptor, and no name or descriptor
//     appears in two live slots,
//   - every live descriptor except the directory's has a slot.
//
// Buffers of open files that have not been written back are not part of the
// check; their blocks get allocated when they are.
//
// The slots are read through the directory's open file table entry. This
// moves the directory cursor and may write back, and so allocate, the
// directory's buffer.
func (fs *FileSystem) Check() error {
	fs.l.Lock()
	defer fs.l.Unlock()

	used := make([]bool, ldiskfs.NumBlocks)
	for id := ldiskfs.BlockID(0); id < ldiskfs.NumBlocks; id++ {
		set, err := fs.bm.isSet(id)
		if err != nil {
			return err
		}
		used[id] = set

		if id < firstDataBlock && !set {
			return inconsistent("reserved block %d marked free", id)
		}
	}

	owner := make(map[ldiskfs.BlockID]int)
	live := make(map[int]bool)
	for idx := 0; idx < ldiskfs.NumDescriptors; idx++ {
		d, err := fs.descs.read(idx)
		if err != nil {
			return err
		}
		if d.free() {
			if idx == ldiskfs.DirectoryDescriptor {
				return inconsistent("directory descriptor is free")
			}
			continue
		}
		live[idx] = true

		if d.length > ldiskfs.MaxFileSize {
			return inconsistent("descriptor %d has length %d", idx, d.length)
		}

		for _, ptr := range d.ptrs {
			if ptr == ldiskfs.NoBlock {
				continue
			}

			id, ok := ptr.ID()
			if !ok || id < firstDataBlock {
				return inconsistent("descriptor %d points to block %d", idx, ptr)
			}
			if other, dup := owner[id]; dup {
				return inconsistent("block %d used by descriptors %d and %d", id, other, idx)
			}
			if !used[id] {
				return inconsistent("block %d of descriptor %d marked free", id, idx)
			}
			owner[id] = idx
		}
	}

	for id := firstDataBlock; id < ldiskfs.NumBlocks; id++ {
		if _, ok := owner[id]; used[id] && !ok {
			return inconsistent("block %d marked allocated but unused", id)
		}
	}

	var (
		err    error
		names  = make(map[ldiskfs.FileName]int)
		linked = make(map[int]bool)
	)
	serr := fs.eachSlot(func(i int, s slot) bool {
		if !s.live() {
			return true
		}

		desc := int(s.desc)
		switch {
		case !live[desc]:
			err = inconsistent("slot %d names free descriptor %d", i, desc)
		case desc == ldiskfs.DirectoryDescriptor:
			err = inconsistent("slot %d names the directory descriptor", i)
		case linked[desc]:
			err = inconsistent("descriptor %d named by two slots", desc)
		}
		if other, dup := names[s.name]; dup && err == nil {
			err = inconsistent("name %q in slots %d and %d", s.name, other, i)
		}

		names[s.name] = i
		linked[desc] = true
		return err == nil
	})
	if serr != nil {
		return serr
	}
	if err != nil {
		return err
	}

	for idx := range live {
		if idx != ldiskfs.DirectoryDescriptor && !linked[idx] {
			return inconsistent("descriptor %d not in the directory", idx)
		}
	}

	return nil
}
