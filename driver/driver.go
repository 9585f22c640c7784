// Package driver runs text commands against a file system, one command per
// line, producing one line of output per command.
//
//	cr <name>                  create a file
//	de <name>                  destroy a file
//	op <name>                  open a file
//	cl <index>                 close an open file
//	rd <index> <count>         read count bytes
//	wr <index> <char> <count>  write char count times
//	sk <index> <pos>           move the cursor
//	dr                         list the directory
//	in [<path>]                initialize, or restore from path
//	sv <path>                  save the disk to path
//
// Any command that fails, or does not parse, prints "error".
package driver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/logex"

	"github.com/keks/ldiskfs"
	"github.com/keks/ldiskfs/fsys"
)

// ErrorOutput is printed for every command that fails.
const ErrorOutput = "error"

// maxArgs is the largest number of tokens on a line, the command included.
const maxArgs = 4

// Driver executes commands on a file system.
type Driver struct {
	fs *fsys.FileSystem
}

// New returns a driver for fs.
func New(fs *fsys.FileSystem) *Driver {
	return &Driver{fs: fs}
}

// Run executes every line of r and writes the outputs to w, one per line. A
// blank input line produces a blank output line.
func (d *Driver) Run(r io.Reader, w io.Writer) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(bw, d.Exec(scanner.Text())); err != nil {
			return logex.Trace(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return logex.Trace(err)
	}

	if err := bw.Flush(); err != nil {
		return logex.Trace(err)
	}

	return nil
}

// Exec executes one command line and returns its output.
func (d *Driver) Exec(line string) string {
	args := strings.Fields(line)
	if len(args) == 0 {
		return ""
	}

	out, err := d.exec(args)
	if err != nil {
		logex.Debugf("%q: %v", line, err)
		return ErrorOutput
	}

	return out
}

var errUsage = fmt.Errorf("%w: bad command", ldiskfs.ErrValidation)

func (d *Driver) exec(args []string) (string, error) {
	if len(args) > maxArgs {
		return "", errUsage
	}

	cmd, args := args[0], args[1:]
	switch {
	case cmd == "cr" && len(args) == 1:
		if err := d.fs.Create(ldiskfs.FileName(args[0])); err != nil {
			return "", err
		}
		return args[0] + " created", nil

	case cmd == "de" && len(args) == 1:
		if err := d.fs.Destroy(ldiskfs.FileName(args[0])); err != nil {
			return "", err
		}
		return args[0] + " destroyed", nil

	case cmd == "op" && len(args) == 1:
		idx, err := d.fs.Open(ldiskfs.FileName(args[0]))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s opened %d", args[0], idx), nil

	case cmd == "cl" && len(args) == 1:
		ints, err := parseInts(args)
		if err != nil {
			return "", err
		}
		if err := d.fs.Close(ints[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("%d closed", ints[0]), nil

	case cmd == "rd" && len(args) == 2:
		ints, err := parseInts(args)
		if err != nil {
			return "", err
		}
		count, err := capCount(ints[1])
		if err != nil {
			return "", err
		}
		buf := make([]byte, count)
		n, err := d.fs.Read(ints[0], buf, count)
		if err != nil {
			return "", err
		}
		return string(buf[:n]), nil

	case cmd == "wr" && len(args) == 3:
		ints, err := parseInts([]string{args[0], args[2]})
		if err != nil {
			return "", err
		}
		count, err := capCount(ints[1])
		if err != nil {
			return "", err
		}
		data := []byte(strings.Repeat(args[1][:1], count))
		n, err := d.fs.Write(ints[0], data, count)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d bytes written", n), nil

	case cmd == "sk" && len(args) == 2:
		ints, err := parseInts(args)
		if err != nil {
			return "", err
		}
		if err := d.fs.Seek(ints[0], ints[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("position is %d", ints[1]), nil

	case cmd == "dr" && len(args) == 0:
		return d.fs.Directory()

	case cmd == "in" && len(args) == 0:
		if err := d.fs.Init(); err != nil {
			return "", err
		}
		return "disk initialized", nil

	case cmd == "in" && len(args) == 1:
		st, err := d.fs.Restore(args[0])
		if err != nil {
			return "", err
		}
		return "disk " + st.String(), nil

	case cmd == "sv" && len(args) == 1:
		if err := d.fs.Save(args[0]); err != nil {
			return "", err
		}
		return "disk saved", nil
	}

	return "", errUsage
}

func parseInts(args []string) ([]int, error) {
	ints := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ldiskfs.ErrValidation, err)
		}
		ints[i] = v
	}

	return ints, nil
}

// capCount bounds the buffer for a read or write. No transfer moves more
// than a whole file.
func capCount(count int) (int, error) {
	switch {
	case count < 0:
		return 0, ldiskfs.ErrBadCount
	case count > ldiskfs.MaxFileSize:
		return ldiskfs.MaxFileSize, nil
	}

	return count, nil
}
