// Package ldisk implements the logical disk: a fixed array of equally sized
// blocks that can only be read and written whole.
package ldisk

import (
	"sync"

	"github.com/keks/ldiskfs"
)

// Disk is a zero-filled in-memory disk of ldiskfs.NumBlocks blocks.
type Disk struct {
	l sync.Mutex

	lower ldiskfs.ReadWriterAt
}

var _ ldiskfs.Device = (*Disk)(nil)

// New returns a fresh, zero-filled disk.
func New() *Disk {
	return &Disk{
		lower: newMemStore(ldiskfs.DiskSize),
	}
}

// Get returns a view of block id. Reads and writes through the view are
// relative to the start of the block and end with io.EOF at its end.
func (d *Disk) Get(id ldiskfs.BlockID) (ldiskfs.ReadWriterAt, error) {
	if !id.Valid() {
		return nil, ldiskfs.ErrBadBlock
	}

	return &block{
		off:   int64(id) * ldiskfs.BlockLength,
		size:  ldiskfs.BlockLength,
		lower: d.lower,
	}, nil
}

// ReadBlock copies block id into dst, which must be exactly one block long.
func (d *Disk) ReadBlock(id ldiskfs.BlockID, dst []byte) error {
	if len(dst) != ldiskfs.BlockLength {
		return ldiskfs.ErrBadCount
	}

	d.l.Lock()
	defer d.l.Unlock()

	blk, err := d.Get(id)
	if err != nil {
		return err
	}

	_, err = blk.ReadAt(dst, 0)
	return err
}

// WriteBlock replaces block id with src, which must be exactly one block long.
func (d *Disk) WriteBlock(id ldiskfs.BlockID, src []byte) error {
	if len(src) != ldiskfs.BlockLength {
		return ldiskfs.ErrBadCount
	}

	d.l.Lock()
	defer d.l.Unlock()

	blk, err := d.Get(id)
	if err != nil {
		return err
	}

	_, err = blk.WriteAt(src, 0)
	return err
}
