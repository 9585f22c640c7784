package ldisk

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keks/ldiskfs"
)

func TestDisk(t *testing.T) {
	type testcase struct {
		name string
		ops  []op
	}

	mktest := func(tc testcase) func(*testing.T) {
		return func(t *testing.T) {
			// test with the in-memory store
			d := New()
			for _, op := range tc.ops {
				op.Do(t, d)
				t.Logf("ok: %T", op)
			}

			// test with os.File as the store
			f, err := os.CreateTemp(t.TempDir(), "TestDisk-*")
			require.NoError(t, err)
			defer f.Close()
			require.NoError(t, f.Truncate(ldiskfs.DiskSize))

			d = &Disk{lower: f}
			for _, op := range tc.ops {
				op.Do(t, d)
				t.Logf("ok: %T", op)
			}
		}
	}

	var (
		full  = bytes.Repeat([]byte("abcd"), ldiskfs.BlockLength/4)
		zeros = make([]byte, ldiskfs.BlockLength)
	)

	var tcs = []testcase{
		{
			name: "write block then read block",
			ops: []op{
				writeBlockOp{
					id:   5,
					data: full,
				},
				readBlockOp{
					id:  5,
					exp: full,
				},
				readBlockOp{
					id:  4,
					exp: zeros,
				},
			},
		},
		{
			name: "fresh block is zero",
			ops: []op{
				readBlockOp{
					id:  3,
					exp: zeros,
				},
			},
		},
		{
			name: "partial block rejected",
			ops: []op{
				writeBlockOp{
					id:     2,
					data:   []byte("test"),
					expErr: "byte count out of range",
				},
				readBlockOp{
					id:      2,
					readlen: 4,
					expErr:  "byte count out of range",
				},
			},
		},
		{
			name: "block out of range",
			ops: []op{
				writeBlockOp{
					id:     ldiskfs.NumBlocks,
					data:   full,
					expErr: "block index out of range",
				},
				readBlockOp{
					id:     ldiskfs.NumBlocks + 10,
					expErr: "block index out of range",
				},
			},
		},
		{
			name: "write over block end",
			ops: []op{
				blkWriteOp{
					id:     1,
					data:   []byte("test"),
					off:    ldiskfs.BlockLength - 2,
					expN:   2,
					expErr: "EOF",
				},
				blkReadOp{
					id:      1,
					off:     ldiskfs.BlockLength - 2,
					readlen: 4,
					exp:     []byte("te"),
					expN:    2,
					expErr:  "EOF",
				},
				readBlockOp{
					id:  2,
					exp: zeros,
				},
			},
		},
		{
			name: "write after block end",
			ops: []op{
				blkWriteOp{
					id:     1,
					data:   []byte("test"),
					off:    ldiskfs.BlockLength + 2,
					expN:   0,
					expErr: "EOF",
				},
			},
		},
		{
			name: "view and whole block agree",
			ops: []op{
				blkWriteOp{
					id:   7,
					data: []byte("test"),
					off:  8,
					expN: 4,
				},
				readBlockOp{
					id:  7,
					exp: append(append(make([]byte, 8), "test"...), make([]byte, ldiskfs.BlockLength-12)...),
				},
			},
		},
		{
			name: "image of last block",
			ops: []op{
				writeBlockOp{
					id:   ldiskfs.NumBlocks - 1,
					data: full,
				},
				imageOp{
					expLen: ldiskfs.DiskSize,
				},
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, mktest(tc))
	}
}

func TestClip(t *testing.T) {
	type testcase struct {
		off   int64
		n     int
		expN  int
		short bool
	}

	tcs := []testcase{
		{off: 0, n: 64, expN: 64},
		{off: 10, n: 4, expN: 4},
		{off: 62, n: 4, expN: 2, short: true},
		{off: 64, n: 4, short: true},
		{off: -1, n: 4, short: true},
		{off: 0, n: 100, expN: 64, short: true},
		{off: 63, n: 0},
	}

	for _, tc := range tcs {
		n, short := clip(ldiskfs.BlockLength, tc.off, tc.n)
		require.Equal(t, tc.expN, n, "off %d, n %d", tc.off, tc.n)
		require.Equal(t, tc.short, short, "off %d, n %d", tc.off, tc.n)
	}
}

func TestMemStoreEnd(t *testing.T) {
	r := require.New(t)
	m := newMemStore(8)

	n, err := m.WriteAt([]byte("abcdef"), 4)
	r.Equal(4, n)
	r.Equal(io.EOF, err)

	buf := make([]byte, 8)
	n, err = m.ReadAt(buf, 2)
	r.Equal(6, n)
	r.Equal(io.EOF, err)
	r.Equal([]byte("\x00\x00abcd"), buf[:n])

	n, err = m.ReadAt(buf, 8)
	r.Equal(0, n)
	r.Equal(io.EOF, err)
}
