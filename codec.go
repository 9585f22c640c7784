package ldiskfs

import (
	"encoding/binary"
)

// Every 4-byte field on disk (bitmap words, descriptor lengths and pointers,
// slot descriptor indices) is big-endian.

// FieldLength is the size in bytes of one encoded integer field.
const FieldLength = 4

// Int32 decodes the integer field starting at off.
func Int32(buf []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(buf[off : off+FieldLength]))
}

// PutInt32 encodes v into the integer field starting at off.
func PutInt32(buf []byte, off int, v int32) {
	binary.BigEndian.PutUint32(buf[off:off+FieldLength], uint32(v))
}

// Uint32 decodes the field at off without sign interpretation. The bitmap
// words are read this way.
func Uint32(buf []byte, off int) uint32 {
	return binary.BigEndian.Uint32(buf[off : off+FieldLength])
}

// PutUint32 is the unsigned counterpart of PutInt32.
func PutUint32(buf []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(buf[off:off+FieldLength], v)
}
