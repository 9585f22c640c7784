package main

import (
	"flag"
	"io"
	"os"

	"github.com/chzyer/logex"

	"github.com/keks/ldiskfs/driver"
	"github.com/keks/ldiskfs/fsys"
)

func main() {
	var in, out, image string
	flag.StringVar(&in, "in", "", "the command file, standard input if empty")
	flag.StringVar(&out, "out", "", "the output file, standard output if empty")
	flag.StringVar(&image, "image", "", "a disk image restored at start and saved at exit")

	// Parse the flags from the commandline
	flag.Parse()

	if err := run(in, out, image); err != nil {
		logex.Error(err)
		os.Exit(1)
	}
}

func run(in, out, image string) error {
	var (
		r io.Reader = os.Stdin
		w io.Writer = os.Stdout
	)

	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return logex.Trace(err)
		}
		defer f.Close()
		r = f
	}

	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return logex.Trace(err)
		}
		defer f.Close()
		w = f
	}

	fs, err := fsys.New()
	if err != nil {
		return err
	}

	if image != "" {
		if _, err := fs.Restore(image); err != nil {
			return err
		}
	}

	if err := driver.New(fs).Run(r, w); err != nil {
		return err
	}

	if image != "" {
		return fs.Save(image)
	}

	return nil
}
