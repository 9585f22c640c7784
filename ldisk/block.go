package ldisk

import (
	"io"

	"github.com/keks/ldiskfs"
)

// clip returns how many of n bytes starting at off fit into a region of
// size bytes, and whether the transfer was cut short. Offsets outside the
// region fit nothing.
func clip(size int64, off int64, n int) (int, bool) {
	if off < 0 || off >= size {
		return 0, true
	}

	if rest := size - off; int64(n) > rest {
		return int(rest), true
	}

	return n, false
}

// block is a window of size bytes starting at off in the lower store.
// Offsets passed to ReadAt and WriteAt are relative to the window, and a
// transfer reaching past the window's end stops there with io.EOF.
type block struct {
	off  int64
	size int

	lower ldiskfs.ReadWriterAt
}

func (blk *block) ReadAt(dst []byte, off int64) (int, error) {
	n, short := clip(int64(blk.size), off, len(dst))
	if n == 0 && short {
		return 0, io.EOF
	}

	n, err := blk.lower.ReadAt(dst[:n], blk.off+off)
	if err == nil && short {
		err = io.EOF
	}

	return n, err
}

func (blk *block) WriteAt(data []byte, off int64) (int, error) {
	n, short := clip(int64(blk.size), off, len(data))
	if n == 0 && short {
		return 0, io.EOF
	}

	n, err := blk.lower.WriteAt(data[:n], blk.off+off)
	if err == nil && short {
		err = io.EOF
	}

	return n, err
}
