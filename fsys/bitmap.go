package fsys

import (
	"github.com/chzyer/logex"

	"github.com/keks/ldiskfs"
)

// bitmapBlock holds one allocation bit per block, 32 blocks per word. The
// bit for block i is the most significant bit of word i/32 shifted right by
// i%32, so block 0 is the top bit of the first byte.
const bitmapBlock ldiskfs.BlockID = 0

// firstDataBlock is the first block after the bitmap and the descriptors.
const firstDataBlock ldiskfs.BlockID = 1 + ldiskfs.NumDescriptorBlocks

type bitmap struct {
	dev ldiskfs.Device
}

func bitPos(id ldiskfs.BlockID) (off int, mask uint32) {
	return int(id/32) * ldiskfs.FieldLength, 1 << (31 - id%32)
}

func (bm bitmap) load() ([]byte, error) {
	buf := make([]byte, ldiskfs.BlockLength)
	return buf, bm.dev.ReadBlock(bitmapBlock, buf)
}

// isSet reports whether block id is marked allocated.
func (bm bitmap) isSet(id ldiskfs.BlockID) (bool, error) {
	if !id.Valid() {
		return false, ldiskfs.ErrBadBlock
	}

	buf, err := bm.load()
	if err != nil {
		return false, err
	}

	off, mask := bitPos(id)
	return ldiskfs.Uint32(buf, off)&mask != 0, nil
}

func (bm bitmap) setTo(id ldiskfs.BlockID, used bool) error {
	if !id.Valid() {
		return ldiskfs.ErrBadBlock
	}

	buf, err := bm.load()
	if err != nil {
		return err
	}

	off, mask := bitPos(id)
	word := ldiskfs.Uint32(buf, off)
	if used {
		word |= mask
	} else {
		word &^= mask
	}
	ldiskfs.PutUint32(buf, off, word)

	return bm.dev.WriteBlock(bitmapBlock, buf)
}

// reserve marks the bitmap and descriptor blocks as permanently allocated.
func (bm bitmap) reserve() error {
	for id := bitmapBlock; id < firstDataBlock; id++ {
		if err := bm.setTo(id, true); err != nil {
			return err
		}
	}

	return nil
}

// allocate marks the lowest free block as used and returns it.
func (bm bitmap) allocate() (ldiskfs.BlockID, error) {
	buf, err := bm.load()
	if err != nil {
		return 0, err
	}

	for id := ldiskfs.BlockID(0); id < ldiskfs.NumBlocks; id++ {
		off, mask := bitPos(id)
		word := ldiskfs.Uint32(buf, off)
		if word&mask != 0 {
			continue
		}

		ldiskfs.PutUint32(buf, off, word|mask)
		if err := bm.dev.WriteBlock(bitmapBlock, buf); err != nil {
			return 0, err
		}

		logex.Debugf("allocated block %d", id)
		return id, nil
	}

	logex.Warn("no free data block left")
	return 0, ldiskfs.ErrNoSpace
}

// free clears the bit of block id. Callers only free blocks they held
// through a descriptor pointer.
func (bm bitmap) free(id ldiskfs.BlockID) error {
	if err := bm.setTo(id, false); err != nil {
		return err
	}

	logex.Debugf("freed block %d", id)
	return nil
}
