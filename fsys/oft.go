package fsys

import (
	"github.com/keks/ldiskfs"
)

// dirEntry is the open file table entry permanently held by the directory.
const dirEntry = 0

// entry is one open file table entry. It caches the block the cursor is
// in; the cached block is written back when the cursor moves to another
// block, when the file is closed and when the disk is saved.
type entry struct {
	buf [ldiskfs.BlockLength]byte

	// pos is the cursor as a byte offset into the file.
	pos int
	// desc is the descriptor index of the open file, -1 if unused.
	desc int
	// length is the file length, -1 if unused. It is written back to the
	// descriptor on close.
	length int

	// blk is the index within the file of the block held in buf.
	blk int
	// dirty is set when buf differs from the block on disk.
	dirty bool
}

func (e *entry) inUse() bool {
	return e.desc >= 0
}

func (e *entry) reset() {
	*e = entry{desc: -1, length: -1}
}

// blockOf returns the index within a file of the block holding byte pos.
// The position just past the largest file belongs to the last block.
func blockOf(pos int) int {
	blk := pos / ldiskfs.BlockLength
	if blk >= ldiskfs.MaxBlocksPerFile {
		blk = ldiskfs.MaxBlocksPerFile - 1
	}

	return blk
}

// entry returns the open entry at idx.
func (fs *FileSystem) entry(idx int) (*entry, error) {
	if idx < 0 || idx >= len(fs.oft) {
		return nil, ldiskfs.ErrBadIndex
	}

	e := &fs.oft[idx]
	if !e.inUse() {
		return nil, ldiskfs.ErrNotOpen
	}

	return e, nil
}

// isOpen reports whether descriptor desc is held by any entry.
func (fs *FileSystem) isOpen(desc int) bool {
	for i := range fs.oft {
		if fs.oft[i].desc == desc {
			return true
		}
	}

	return false
}

// bind opens descriptor desc in e, priming the buffer with the first block
// of the file.
func (fs *FileSystem) bind(e *entry, desc int) error {
	d, err := fs.descs.read(desc)
	if err != nil {
		return err
	}
	if d.free() {
		return ldiskfs.ErrNoSuchDescriptor
	}

	e.reset()
	e.desc = desc
	e.length = int(d.length)
	if e.length > ldiskfs.MaxFileSize {
		e.length = ldiskfs.MaxFileSize
	}

	if id, ok := d.ptrs[0].ID(); ok && e.length > 0 {
		if err := fs.disk.ReadBlock(id, e.buf[:]); err != nil {
			e.reset()
			return err
		}
	}

	return nil
}

// flush writes the buffer back to its block, allocating the block first if
// the file does not have it yet.
func (fs *FileSystem) flush(e *entry) error {
	if !e.dirty {
		return nil
	}

	d, err := fs.descs.read(e.desc)
	if err != nil {
		return err
	}

	id, ok := d.ptrs[e.blk].ID()
	if !ok {
		id, err = fs.bm.allocate()
		if err != nil {
			return err
		}

		d.ptrs[e.blk] = ldiskfs.BlockPtr(id)
		if err := fs.descs.write(e.desc, d); err != nil {
			return err
		}
	}

	if err := fs.disk.WriteBlock(id, e.buf[:]); err != nil {
		return err
	}

	e.dirty = false
	return nil
}

// load makes blk the block held in the buffer. Blocks the file does not
// have yet are loaded as zeros.
func (fs *FileSystem) load(e *entry, blk int) error {
	if e.blk == blk {
		return nil
	}

	if err := fs.flush(e); err != nil {
		return err
	}

	d, err := fs.descs.read(e.desc)
	if err != nil {
		return err
	}

	if id, ok := d.ptrs[blk].ID(); ok {
		if err := fs.disk.ReadBlock(id, e.buf[:]); err != nil {
			return err
		}
	} else {
		e.buf = [ldiskfs.BlockLength]byte{}
	}

	e.blk = blk
	return nil
}

// read copies bytes from the cursor into dst until dst is full or the end
// of the file is reached.
func (fs *FileSystem) read(e *entry, dst []byte) (int, error) {
	var n int
	for n < len(dst) && e.pos < e.length {
		if err := fs.load(e, e.pos/ldiskfs.BlockLength); err != nil {
			return n, err
		}

		off := e.pos % ldiskfs.BlockLength
		end := ldiskfs.BlockLength
		if rest := e.length - e.pos + off; rest < end {
			end = rest
		}

		c := copy(dst[n:], e.buf[off:end])
		n += c
		e.pos += c
	}

	return n, nil
}

// write copies src to the cursor until src is exhausted or the file has
// reached its maximum size. The file grows when the cursor passes its end.
func (fs *FileSystem) write(e *entry, src []byte) (int, error) {
	var (
		n   int
		err error
	)
	for n < len(src) && e.pos < ldiskfs.MaxFileSize {
		if err = fs.load(e, e.pos/ldiskfs.BlockLength); err != nil {
			break
		}

		c := copy(e.buf[e.pos%ldiskfs.BlockLength:], src[n:])
		e.dirty = true
		n += c
		e.pos += c
	}

	if e.pos > e.length {
		e.length = e.pos
	}

	return n, err
}

// seek moves the cursor to pos, switching the buffer to the block under
// the new position. Positions past the end of the file are allowed; the
// bytes between the old end and a later write are not zeroed.
//
// Only a written buffer is flushed on the switch, so seeking over blocks
// that were merely read allocates nothing. Flushing a written buffer may
// allocate its block, which makes ErrNoSpace possible here.
func (fs *FileSystem) seek(e *entry, pos int) error {
	if pos < 0 || pos > ldiskfs.MaxFileSize {
		return ldiskfs.ErrBadPosition
	}

	if err := fs.load(e, blockOf(pos)); err != nil {
		return err
	}

	e.pos = pos
	return nil
}

// release writes the buffer and the length of the file back to disk and
// frees the entry. A buffer that was never written is not flushed and gets
// no block. If the buffer cannot be written for lack of space, the recorded
// length stops at the start of the lost block.
func (fs *FileSystem) release(e *entry) error {
	ferr := fs.flush(e)

	length := e.length
	if ferr != nil && length > e.blk*ldiskfs.BlockLength {
		length = e.blk * ldiskfs.BlockLength
	}

	if err := fs.descs.setLength(e.desc, int32(length)); err != nil {
		return err
	}

	e.reset()
	return ferr
}
