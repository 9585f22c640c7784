package ldiskfs // import "github.com/keks/ldiskfs"

import (
	"io"
)

// Basic Types

// ReadWriterAt is both a ReaderAt and a WriterAt.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Disk Geometry

const (
	// NumBlocks is the number of blocks on the logical disk.
	NumBlocks = 64
	// BlockLength is the size of one block in bytes.
	BlockLength = 64
	// DiskSize is the size of a disk image in bytes.
	DiskSize = NumBlocks * BlockLength

	// NumDescriptors is the number of file descriptors, and also the number
	// of directory slots.
	NumDescriptors = 24
	// DescriptorLength is the size of one descriptor in bytes: the length
	// followed by MaxBlocksPerFile block pointers.
	DescriptorLength = 16
	// DescriptorsPerBlock is the number of descriptors stored in one block.
	DescriptorsPerBlock = BlockLength / DescriptorLength
	// NumDescriptorBlocks is the number of blocks holding descriptors. They
	// directly follow the bitmap block.
	NumDescriptorBlocks = NumDescriptors / DescriptorsPerBlock

	// MaxBlocksPerFile is the number of direct block pointers per file.
	MaxBlocksPerFile = 3
	// MaxFileSize is the largest possible file, in bytes.
	MaxFileSize = MaxBlocksPerFile * BlockLength

	// MaxOpenFiles is the capacity of the open file table, including the
	// entry permanently held by the directory.
	MaxOpenFiles = 4
	// MaxNameLength is the number of significant bytes in a file name.
	MaxNameLength = 4
	// SlotLength is the size of one directory slot: the name followed by
	// the descriptor index.
	SlotLength = MaxNameLength + 4

	// DirectoryDescriptor is the descriptor index of the directory.
	DirectoryDescriptor = 0
)

// Block Layer

// BlockID identifies blocks by their index on the disk.
type BlockID uint32

// Valid reports whether the id addresses a block on the disk.
func (id BlockID) Valid() bool {
	return id < NumBlocks
}

// Device gives whole-block access to a disk.
type Device interface {
	ReadBlock(id BlockID, dst []byte) error
	WriteBlock(id BlockID, src []byte) error
}

// BlockPtr is a block pointer as stored on disk. NoBlock marks a pointer
// that has not been allocated yet.
type BlockPtr int32

// NoBlock is the on-disk encoding of an unset pointer, length or index.
const NoBlock BlockPtr = -1

// ID returns the block the pointer refers to, and false if it is unset or
// points off the disk.
func (p BlockPtr) ID() (BlockID, bool) {
	if p < 0 || p >= NumBlocks {
		return 0, false
	}

	return BlockID(p), true
}

// File Layer

// FileName is the name of a file in the directory.
type FileName string

// Validate checks that the name fits into a directory slot.
func (name FileName) Validate() error {
	if len(name) == 0 {
		return ErrEmptyName
	}

	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}

	for i := 0; i < len(name); i++ {
		if name[i] <= ' ' || name[i] > '~' {
			return ErrBadName
		}
	}

	return nil
}
