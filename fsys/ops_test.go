package fsys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keks/ldiskfs"
)

type op interface {
	Do(*testing.T, *FileSystem)
}

func requireErr(t *testing.T, exp, err error) {
	if exp == nil {
		require.NoError(t, err)
	} else {
		require.ErrorIs(t, err, exp)
	}
}

type createOp struct {
	name ldiskfs.FileName

	expErr error
}

func (op createOp) Do(t *testing.T, fs *FileSystem) {
	requireErr(t, op.expErr, fs.Create(op.name))
}

type destroyOp struct {
	name ldiskfs.FileName

	expErr error
}

func (op destroyOp) Do(t *testing.T, fs *FileSystem) {
	requireErr(t, op.expErr, fs.Destroy(op.name))
}

type openOp struct {
	name ldiskfs.FileName

	expIdx int
	expErr error
}

func (op openOp) Do(t *testing.T, fs *FileSystem) {
	idx, err := fs.Open(op.name)
	t.Logf("openOp, name: %q, idx: %d, err: %v", op.name, idx, err)

	requireErr(t, op.expErr, err)
	if op.expErr == nil {
		require.Equal(t, op.expIdx, idx)
	} else {
		require.Equal(t, -1, idx)
	}
}

type closeOp struct {
	idx int

	expErr error
}

func (op closeOp) Do(t *testing.T, fs *FileSystem) {
	requireErr(t, op.expErr, fs.Close(op.idx))
}

type writeOp struct {
	idx  int
	data []byte

	expN   int
	expErr error
}

func (op writeOp) Do(t *testing.T, fs *FileSystem) {
	n, err := fs.Write(op.idx, op.data, len(op.data))
	t.Logf("writeOp, n: %d, err: %v", n, err)

	requireErr(t, op.expErr, err)
	require.Equal(t, op.expN, n)
}

type readOp struct {
	idx   int
	count int

	exp    []byte
	expErr error
}

func (op readOp) Do(t *testing.T, fs *FileSystem) {
	buf := make([]byte, op.count)
	n, err := fs.Read(op.idx, buf, op.count)
	t.Logf("readOp, n: %d, err: %v", n, err)

	requireErr(t, op.expErr, err)
	require.Equal(t, len(op.exp), n)
	t.Logf("buffer contents %q", buf[:n])
	require.True(t, bytes.Equal(op.exp, buf[:n]))
}

type seekOp struct {
	idx int
	pos int

	expErr error
}

func (op seekOp) Do(t *testing.T, fs *FileSystem) {
	requireErr(t, op.expErr, fs.Seek(op.idx, op.pos))
}

type dirOp struct {
	exp string
}

func (op dirOp) Do(t *testing.T, fs *FileSystem) {
	dir, err := fs.Directory()
	require.NoError(t, err)
	require.Equal(t, op.exp, dir)
}

type checkOp struct{}

func (op checkOp) Do(t *testing.T, fs *FileSystem) {
	require.NoError(t, fs.Check())
}

type lengthOp struct {
	name ldiskfs.FileName

	exp int
}

// lengthOp looks up the length recorded in the descriptor of a closed file.
func (op lengthOp) Do(t *testing.T, fs *FileSystem) {
	fs.l.Lock()
	defer fs.l.Unlock()

	desc, _, err := fs.lookup(op.name)
	require.NoError(t, err)

	d, err := fs.descs.read(desc)
	require.NoError(t, err)
	require.EqualValues(t, op.exp, d.length)
}
