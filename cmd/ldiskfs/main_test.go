package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keks/ldiskfs"
)

func TestRunWithImage(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()
	image := filepath.Join(dir, "disk.img")

	session := func(name string, lines ...string) string {
		in := filepath.Join(dir, name+".in")
		out := filepath.Join(dir, name+".out")
		r.NoError(os.WriteFile(in, []byte(strings.Join(lines, "\n")+"\n"), 0644))

		r.NoError(run(in, out, image))

		data, err := os.ReadFile(out)
		r.NoError(err)
		return string(data)
	}

	// no image yet: the disk starts empty and is saved at exit
	out := session("first", "dr", "cr f", "op f", "wr 1 z 3", "dr")
	r.Equal("\nf created\nf opened 1\n3 bytes written\nf\n", out)

	img, err := os.ReadFile(image)
	r.NoError(err)
	r.Len(img, ldiskfs.DiskSize)

	// the open file was written back by the save
	out = session("second", "dr", "op f", "rd 1 10")
	r.Equal("f\nf opened 1\nzzz\n", out)
}

func TestRunErrors(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	err := run(filepath.Join(dir, "missing.in"), "", "")
	r.Error(err)

	in := filepath.Join(dir, "cmds.in")
	r.NoError(os.WriteFile(in, []byte("in\n"), 0644))

	// an image path that is a directory cannot be restored
	err = run(in, filepath.Join(dir, "out"), dir)
	r.ErrorIs(err, ldiskfs.ErrIO)
}
