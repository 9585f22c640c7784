package ldiskfs

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the file system matches exactly
// one of these with errors.Is.
var (
	ErrValidation = errors.New("invalid argument")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrExhausted  = errors.New("resource exhausted")
	ErrIO         = errors.New("i/o error")
)

var (
	ErrEmptyName   = newError("empty file name", ErrValidation)
	ErrNameTooLong = newError("file name too long", ErrValidation)
	ErrBadName     = newError("file name contains invalid characters", ErrValidation)
	ErrBadIndex    = newError("open file index out of range", ErrValidation)
	ErrBadCount    = newError("byte count out of range", ErrValidation)
	ErrShortBuffer = newError("buffer smaller than byte count", ErrValidation)
	ErrBadPosition = newError("position outside file bounds", ErrValidation)
	ErrBadBlock    = newError("block index out of range", ErrValidation)
	ErrNotOpen     = newError("open file table entry not in use", ErrValidation)

	ErrNoSuchFile       = newError("no such file", ErrNotFound)
	ErrNoSuchDescriptor = newError("no such file descriptor", ErrNotFound)

	ErrExists = newError("file exists", ErrConflict)
	ErrBusy   = newError("file is open", ErrConflict)

	ErrNoDescriptor = newError("no free file descriptor", ErrExhausted)
	ErrDirFull      = newError("directory full", ErrExhausted)
	ErrTooManyOpen  = newError("open file table full", ErrExhausted)
	ErrNoSpace      = newError("no free data block", ErrExhausted)
)

type fsError struct {
	msg  string
	kind error
}

func newError(msg string, kind error) error {
	return &fsError{msg: msg, kind: kind}
}

func (err *fsError) Error() string {
	return err.msg
}

func (err *fsError) Is(target error) bool {
	return target == err.kind
}

// IOError records a failure of the file holding a disk image.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (err *IOError) Error() string {
	if err.Path == "" {
		return fmt.Sprintf("%s: %v", err.Op, err.Err)
	}

	return fmt.Sprintf("%s %s: %v", err.Op, err.Path, err.Err)
}

func (err *IOError) Unwrap() error {
	return err.Err
}

func (err *IOError) Is(target error) bool {
	return target == ErrIO
}
