package ldisk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keks/ldiskfs"
)

type op interface {
	Do(*testing.T, *Disk)
}

type writeBlockOp struct {
	id   ldiskfs.BlockID
	data []byte

	expErr string
}

func (op writeBlockOp) Do(t *testing.T, d *Disk) {
	err := d.WriteBlock(op.id, op.data)
	if op.expErr == "" {
		require.NoError(t, err)
	} else {
		require.EqualError(t, err, op.expErr)
	}
}

type readBlockOp struct {
	id      ldiskfs.BlockID
	readlen int

	exp    []byte
	expErr string
}

func (op readBlockOp) Do(t *testing.T, d *Disk) {
	r := require.New(t)
	if op.readlen == 0 {
		op.readlen = ldiskfs.BlockLength
	}

	buf := make([]byte, op.readlen)
	err := d.ReadBlock(op.id, buf)

	t.Logf("readBlockOp, id: %d, err: %v", op.id, err)

	if op.expErr != "" {
		r.EqualError(err, op.expErr)
		return
	}

	r.NoError(err)
	t.Logf("block contents %q | 0x%x", buf, buf)
	r.True(bytes.Equal(buf, op.exp))
}

type blkWriteOp struct {
	id   ldiskfs.BlockID
	data []byte
	off  int64

	expN   int
	expErr string
}

func (op blkWriteOp) Do(t *testing.T, d *Disk) {
	r := require.New(t)

	blk, err := d.Get(op.id)
	r.NoError(err)

	n, err := blk.WriteAt(op.data, op.off)

	t.Logf("blkWriteOp, n: %d, err: %v", n, err)

	r.Equal(op.expN, n)
	if op.expErr == "" {
		r.NoError(err)
	} else {
		r.EqualError(err, op.expErr)
	}
}

type blkReadOp struct {
	id      ldiskfs.BlockID
	off     int64
	readlen int

	exp    []byte
	expN   int
	expErr string
}

func (op blkReadOp) Do(t *testing.T, d *Disk) {
	r := require.New(t)
	if op.readlen == 0 {
		op.readlen = len(op.exp)
	}

	blk, err := d.Get(op.id)
	r.NoError(err)

	buf := make([]byte, op.readlen)
	n, err := blk.ReadAt(buf, op.off)

	t.Logf("blkReadOp, n: %d, err: %v", n, err)

	if op.expErr == "" {
		r.NoError(err)
	} else {
		r.EqualError(err, op.expErr)
	}
	r.Equal(op.expN, n)
	r.True(bytes.Equal(buf[:op.expN], op.exp))
}

type imageOp struct {
	expLen int64
}

// imageOp writes the image of the disk, loads it into a second disk and
// compares every block of the two.
func (op imageOp) Do(t *testing.T, d *Disk) {
	r := require.New(t)

	var img bytes.Buffer
	n, err := d.WriteTo(&img)
	r.NoError(err)
	r.Equal(op.expLen, n)

	d2 := New()
	n, err = d2.ReadFrom(&img)
	r.NoError(err)
	r.Equal(op.expLen, n)

	var (
		b1 = make([]byte, ldiskfs.BlockLength)
		b2 = make([]byte, ldiskfs.BlockLength)
	)
	for id := ldiskfs.BlockID(0); id < ldiskfs.NumBlocks; id++ {
		r.NoError(d.ReadBlock(id, b1))
		r.NoError(d2.ReadBlock(id, b2))
		r.True(bytes.Equal(b1, b2), "block %d differs", id)
	}
}
