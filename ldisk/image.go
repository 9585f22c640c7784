package ldisk

import (
	"io"
	"os"

	"github.com/chzyer/logex"

	"github.com/keks/ldiskfs"
)

// An image is the disk's blocks in order with no header: block k occupies
// bytes [k*BlockLength, (k+1)*BlockLength).

var (
	_ io.WriterTo   = (*Disk)(nil)
	_ io.ReaderFrom = (*Disk)(nil)
)

// WriteTo writes the full image of the disk to w.
func (d *Disk) WriteTo(w io.Writer) (int64, error) {
	d.l.Lock()
	defer d.l.Unlock()

	return io.Copy(w, readerFromReaderAt(d.lower, 0))
}

// ReadFrom fills the disk from the image in r, starting at block 0. A short
// image leaves the remaining bytes as they were, and bytes beyond the size
// of the disk are not consumed.
func (d *Disk) ReadFrom(r io.Reader) (int64, error) {
	d.l.Lock()
	defer d.l.Unlock()

	return io.Copy(writerFromWriterAt(d.lower, 0), io.LimitReader(r, ldiskfs.DiskSize))
}

// Load reads the image at path into a fresh disk.
func Load(path string) (*Disk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ldiskfs.IOError{Op: "load", Path: path, Err: logex.Trace(err)}
	}
	defer f.Close()

	d := New()
	if _, err := d.ReadFrom(f); err != nil {
		return nil, &ldiskfs.IOError{Op: "load", Path: path, Err: logex.Trace(err)}
	}

	return d, nil
}

// Save writes the image of d to path, creating or truncating the file.
func Save(d *Disk, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &ldiskfs.IOError{Op: "save", Path: path, Err: logex.Trace(err)}
	}

	_, err = d.WriteTo(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &ldiskfs.IOError{Op: "save", Path: path, Err: logex.Trace(err)}
	}

	return nil
}
