package fsys

import (
	"github.com/keks/ldiskfs"
)

// descriptor is the decoded form of one descriptor record: the file length
// followed by the direct block pointers. A negative length marks the
// descriptor as free; its pointers are then meaningless.
type descriptor struct {
	length int32
	ptrs   [ldiskfs.MaxBlocksPerFile]ldiskfs.BlockPtr
}

func (d descriptor) free() bool {
	return d.length < 0
}

// emptyDescriptor is a reserved descriptor of a file without data.
func emptyDescriptor() descriptor {
	d := descriptor{}
	for i := range d.ptrs {
		d.ptrs[i] = ldiskfs.NoBlock
	}

	return d
}

// descTable interprets the blocks following the bitmap as an array of
// descriptors.
type descTable struct {
	dev ldiskfs.Device
}

// locate maps a descriptor index to its block and byte offset.
func locate(idx int) (ldiskfs.BlockID, int, error) {
	if idx < 0 || idx >= ldiskfs.NumDescriptors {
		return 0, 0, ldiskfs.ErrNoSuchDescriptor
	}

	blk := ldiskfs.BlockID(idx/ldiskfs.DescriptorsPerBlock) + bitmapBlock + 1
	return blk, (idx % ldiskfs.DescriptorsPerBlock) * ldiskfs.DescriptorLength, nil
}

func decodeDescriptor(buf []byte, off int) descriptor {
	d := descriptor{length: ldiskfs.Int32(buf, off)}
	for i := range d.ptrs {
		d.ptrs[i] = ldiskfs.BlockPtr(ldiskfs.Int32(buf, off+(i+1)*ldiskfs.FieldLength))
	}

	return d
}

func (d descriptor) encode(buf []byte, off int) {
	ldiskfs.PutInt32(buf, off, d.length)
	for i, ptr := range d.ptrs {
		ldiskfs.PutInt32(buf, off+(i+1)*ldiskfs.FieldLength, int32(ptr))
	}
}

func (dt descTable) read(idx int) (descriptor, error) {
	blk, off, err := locate(idx)
	if err != nil {
		return descriptor{}, err
	}

	buf := make([]byte, ldiskfs.BlockLength)
	if err := dt.dev.ReadBlock(blk, buf); err != nil {
		return descriptor{}, err
	}

	return decodeDescriptor(buf, off), nil
}

func (dt descTable) write(idx int, d descriptor) error {
	blk, off, err := locate(idx)
	if err != nil {
		return err
	}

	buf := make([]byte, ldiskfs.BlockLength)
	if err := dt.dev.ReadBlock(blk, buf); err != nil {
		return err
	}

	d.encode(buf, off)
	return dt.dev.WriteBlock(blk, buf)
}

// setLength updates only the length field of descriptor idx.
func (dt descTable) setLength(idx int, length int32) error {
	d, err := dt.read(idx)
	if err != nil {
		return err
	}

	d.length = length
	return dt.write(idx, d)
}

// format marks every descriptor free, with all fields set to -1.
func (dt descTable) format() error {
	buf := make([]byte, ldiskfs.BlockLength)
	for off := 0; off < len(buf); off += ldiskfs.FieldLength {
		ldiskfs.PutInt32(buf, off, int32(ldiskfs.NoBlock))
	}

	for i := 0; i < ldiskfs.NumDescriptorBlocks; i++ {
		if err := dt.dev.WriteBlock(bitmapBlock+1+ldiskfs.BlockID(i), buf); err != nil {
			return err
		}
	}

	return nil
}

// findFree reserves the first free descriptor and returns its index. The
// reserved descriptor has length 0 and no blocks.
func (dt descTable) findFree() (int, error) {
	buf := make([]byte, ldiskfs.BlockLength)
	for i := 0; i < ldiskfs.NumDescriptorBlocks; i++ {
		blk := bitmapBlock + 1 + ldiskfs.BlockID(i)
		if err := dt.dev.ReadBlock(blk, buf); err != nil {
			return 0, err
		}

		for j := 0; j < ldiskfs.DescriptorsPerBlock; j++ {
			off := j * ldiskfs.DescriptorLength
			if !decodeDescriptor(buf, off).free() {
				continue
			}

			emptyDescriptor().encode(buf, off)
			if err := dt.dev.WriteBlock(blk, buf); err != nil {
				return 0, err
			}

			return i*ldiskfs.DescriptorsPerBlock + j, nil
		}
	}

	return 0, ldiskfs.ErrNoDescriptor
}

// release marks descriptor idx free. The pointers stay on disk as they were.
func (dt descTable) release(idx int) error {
	return dt.setLength(idx, -1)
}
