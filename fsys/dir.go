package fsys

import (
	"strings"

	"github.com/keks/ldiskfs"
)

// slot is a decoded directory entry. The directory file is an array of
// ldiskfs.NumDescriptors slots, read and written through the open file
// table entry of the directory like any other file.
type slot struct {
	name ldiskfs.FileName
	desc int32
}

func (s slot) live() bool {
	return s.desc >= 0
}

func decodeSlot(buf []byte) slot {
	name := strings.TrimFunc(string(buf[:ldiskfs.MaxNameLength]), func(r rune) bool {
		return r <= ' '
	})

	return slot{
		name: ldiskfs.FileName(name),
		desc: ldiskfs.Int32(buf, ldiskfs.MaxNameLength),
	}
}

// encode writes the slot into buf, padding the name with NUL bytes.
func (s slot) encode(buf []byte) {
	name := buf[:ldiskfs.MaxNameLength]
	for i := range name {
		name[i] = 0
	}
	copy(name, s.name)

	ldiskfs.PutInt32(buf, ldiskfs.MaxNameLength, s.desc)
}

// eachSlot calls fn for every slot in directory order until fn returns
// false.
func (fs *FileSystem) eachSlot(fn func(i int, s slot) bool) error {
	dir := &fs.oft[dirEntry]
	if err := fs.seek(dir, 0); err != nil {
		return err
	}

	buf := make([]byte, ldiskfs.SlotLength)
	for i := 0; i < ldiskfs.NumDescriptors; i++ {
		n, err := fs.read(dir, buf)
		if err != nil {
			return err
		}
		if n < ldiskfs.SlotLength {
			return nil
		}

		if !fn(i, decodeSlot(buf)) {
			return nil
		}
	}

	return nil
}

func (fs *FileSystem) writeSlot(i int, s slot) error {
	dir := &fs.oft[dirEntry]
	if err := fs.seek(dir, i*ldiskfs.SlotLength); err != nil {
		return err
	}

	buf := make([]byte, ldiskfs.SlotLength)
	s.encode(buf)

	_, err := fs.write(dir, buf)
	return err
}

// lookup finds the live slot named name.
func (fs *FileSystem) lookup(name ldiskfs.FileName) (desc int, idx int, err error) {
	idx = -1
	err = fs.eachSlot(func(i int, s slot) bool {
		if s.live() && s.name == name {
			desc, idx = int(s.desc), i
			return false
		}
		return true
	})
	if err != nil {
		return 0, 0, err
	}

	if idx < 0 {
		return 0, 0, ldiskfs.ErrNoSuchFile
	}

	return desc, idx, nil
}

// formatDir writes a directory of free slots through the directory entry.
func (fs *FileSystem) formatDir() error {
	free := slot{desc: int32(ldiskfs.NoBlock)}
	for i := 0; i < ldiskfs.NumDescriptors; i++ {
		if err := fs.writeSlot(i, free); err != nil {
			return err
		}
	}

	return nil
}

// create adds an empty file named name.
func (fs *FileSystem) create(name ldiskfs.FileName) error {
	exists, free := false, -1
	err := fs.eachSlot(func(i int, s slot) bool {
		switch {
		case s.live() && s.name == name:
			exists = true
			return false
		case !s.live() && free < 0:
			free = i
		}
		return true
	})
	if err != nil {
		return err
	}
	if exists {
		return ldiskfs.ErrExists
	}

	desc, err := fs.descs.findFree()
	if err != nil {
		return err
	}

	if free < 0 {
		if err := fs.descs.release(desc); err != nil {
			return err
		}
		return ldiskfs.ErrDirFull
	}

	return fs.writeSlot(free, slot{name: name, desc: int32(desc)})
}

// destroy removes the file named name and frees its blocks.
func (fs *FileSystem) destroy(name ldiskfs.FileName) error {
	desc, idx, err := fs.lookup(name)
	if err != nil {
		return err
	}

	if fs.isOpen(desc) {
		return ldiskfs.ErrBusy
	}

	d, err := fs.descs.read(desc)
	if err != nil {
		return err
	}

	for _, ptr := range d.ptrs {
		id, ok := ptr.ID()
		if !ok || id < firstDataBlock {
			continue
		}

		if err := fs.bm.free(id); err != nil {
			return err
		}
	}

	if err := fs.descs.release(desc); err != nil {
		return err
	}

	// the name stays in the slot; only the descriptor index marks it free
	return fs.writeSlot(idx, slot{name: name, desc: int32(ldiskfs.NoBlock)})
}

// list returns the names of all files in directory order.
func (fs *FileSystem) list() ([]string, error) {
	var names []string
	err := fs.eachSlot(func(_ int, s slot) bool {
		if s.live() && s.name != "" {
			names = append(names, string(s.name))
		}
		return true
	})

	return names, err
}
