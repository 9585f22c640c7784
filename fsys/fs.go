// Package fsys implements a flat file system on a logical disk.
//
// Block 0 of the disk is the allocation bitmap and the next blocks hold the
// file descriptors. The directory is the file at descriptor 0 and is always
// open in open file table entry 0. All file content, the directory's
// included, is read and written through an open file table entry, which
// caches one block and allocates data blocks as they are first written back.
package fsys

import (
	"strings"
	"sync"

	"github.com/chzyer/logex"
	"github.com/google/uuid"

	"github.com/keks/ldiskfs"
	"github.com/keks/ldiskfs/ldisk"
)

// FileSystem owns one mounted logical disk and its open file table. Its
// methods may be called from several goroutines; each call runs to
// completion before the next starts.
type FileSystem struct {
	l sync.Mutex

	id    uuid.UUID
	disk  *ldisk.Disk
	bm    bitmap
	descs descTable
	oft   [ldiskfs.MaxOpenFiles]entry
}

// New returns a file system on a freshly initialized disk.
func New() (*FileSystem, error) {
	fs := &FileSystem{}
	if err := fs.Init(); err != nil {
		return nil, err
	}

	return fs, nil
}

// MountID identifies the current disk. It changes on every Init and
// successful Restore.
func (fs *FileSystem) MountID() uuid.UUID {
	fs.l.Lock()
	defer fs.l.Unlock()

	return fs.id
}

// mount makes d the current disk with an empty open file table.
func (fs *FileSystem) mount(d *ldisk.Disk) {
	fs.disk = d
	fs.bm = bitmap{dev: d}
	fs.descs = descTable{dev: d}
	for i := range fs.oft {
		fs.oft[i].reset()
	}
	fs.id = uuid.New()
}

// openDir opens the directory in its entry.
func (fs *FileSystem) openDir() error {
	return fs.bind(&fs.oft[dirEntry], ldiskfs.DirectoryDescriptor)
}

// Init replaces the disk with an empty, formatted one.
func (fs *FileSystem) Init() error {
	fs.l.Lock()
	defer fs.l.Unlock()

	if err := fs.init(); err != nil {
		return err
	}

	logex.Infof("disk initialized, mount %s", fs.id)
	return nil
}

func (fs *FileSystem) init() error {
	fs.mount(ldisk.New())

	if err := fs.bm.reserve(); err != nil {
		return err
	}

	if err := fs.descs.format(); err != nil {
		return err
	}

	if err := fs.descs.write(ldiskfs.DirectoryDescriptor, emptyDescriptor()); err != nil {
		return err
	}

	if err := fs.openDir(); err != nil {
		return err
	}

	if err := fs.formatDir(); err != nil {
		return err
	}

	return fs.flush(&fs.oft[dirEntry])
}

// Create adds an empty file.
func (fs *FileSystem) Create(name ldiskfs.FileName) error {
	if err := name.Validate(); err != nil {
		return err
	}

	fs.l.Lock()
	defer fs.l.Unlock()

	return fs.create(name)
}

// Destroy removes a file that is not open and frees its blocks.
func (fs *FileSystem) Destroy(name ldiskfs.FileName) error {
	if err := name.Validate(); err != nil {
		return err
	}

	fs.l.Lock()
	defer fs.l.Unlock()

	return fs.destroy(name)
}

// Open opens a file and returns its index in the open file table. The
// cursor starts at the beginning of the file.
func (fs *FileSystem) Open(name ldiskfs.FileName) (int, error) {
	if err := name.Validate(); err != nil {
		return -1, err
	}

	fs.l.Lock()
	defer fs.l.Unlock()

	desc, _, err := fs.lookup(name)
	if err != nil {
		return -1, err
	}

	if fs.isOpen(desc) {
		return -1, ldiskfs.ErrBusy
	}

	for i := range fs.oft {
		if fs.oft[i].inUse() {
			continue
		}

		if err := fs.bind(&fs.oft[i], desc); err != nil {
			return -1, err
		}

		return i, nil
	}

	return -1, ldiskfs.ErrTooManyOpen
}

// Close writes back the cached block and length of an open file and frees
// its entry. Closing the directory's entry writes it back and reopens it.
func (fs *FileSystem) Close(idx int) error {
	fs.l.Lock()
	defer fs.l.Unlock()

	e, err := fs.entry(idx)
	if err != nil {
		return err
	}

	err = fs.release(e)
	if idx == dirEntry {
		if oerr := fs.openDir(); err == nil {
			err = oerr
		}
	}

	return err
}

// Read reads up to count bytes from the cursor into dst and returns the
// number of bytes read, which is less than count at the end of the file.
func (fs *FileSystem) Read(idx int, dst []byte, count int) (int, error) {
	if count < 0 {
		return 0, ldiskfs.ErrBadCount
	}
	if len(dst) < count {
		return 0, ldiskfs.ErrShortBuffer
	}

	fs.l.Lock()
	defer fs.l.Unlock()

	e, err := fs.entry(idx)
	if err != nil {
		return 0, err
	}

	return fs.read(e, dst[:count])
}

// Write writes count bytes from src at the cursor and returns the number of
// bytes written. Bytes that would go past the maximum file size are
// dropped without error.
func (fs *FileSystem) Write(idx int, src []byte, count int) (int, error) {
	if count < 0 {
		return 0, ldiskfs.ErrBadCount
	}
	if len(src) < count {
		return 0, ldiskfs.ErrShortBuffer
	}

	fs.l.Lock()
	defer fs.l.Unlock()

	e, err := fs.entry(idx)
	if err != nil {
		return 0, err
	}

	return fs.write(e, src[:count])
}

// Seek moves the cursor of an open file to pos, which may lie anywhere
// between 0 and the maximum file size.
func (fs *FileSystem) Seek(idx int, pos int) error {
	fs.l.Lock()
	defer fs.l.Unlock()

	e, err := fs.entry(idx)
	if err != nil {
		return err
	}

	return fs.seek(e, pos)
}

// List returns the names of all files in directory order.
func (fs *FileSystem) List() ([]string, error) {
	fs.l.Lock()
	defer fs.l.Unlock()

	return fs.list()
}

// Directory returns the names of all files separated by spaces.
func (fs *FileSystem) Directory() (string, error) {
	names, err := fs.List()
	if err != nil {
		return "", err
	}

	return strings.Join(names, " "), nil
}
