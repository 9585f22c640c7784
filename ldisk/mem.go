package ldisk

import (
	"io"
)

// memStore backs a Disk with a byte slice of fixed size. It never grows:
// transfers past the end are cut short with io.EOF.
type memStore []byte

func newMemStore(size int) memStore {
	return make(memStore, size)
}

func (m memStore) ReadAt(dst []byte, off int64) (int, error) {
	n, short := clip(int64(len(m)), off, len(dst))
	if n > 0 {
		copy(dst, m[off:off+int64(n)])
	}
	if short {
		return n, io.EOF
	}

	return n, nil
}

func (m memStore) WriteAt(data []byte, off int64) (int, error) {
	n, short := clip(int64(len(m)), off, len(data))
	if n > 0 {
		copy(m[off:], data[:n])
	}
	if short {
		return n, io.EOF
	}

	return n, nil
}
