// Package buf contains low-level helpers used by the allocator's heap
// image code: bounds-checked slicing, overflow-safe arithmetic, and
// little-endian word accessors.
//
// The heap image is addressed in 4-byte words. Word w lives at byte
// offset 4*w; all multi-byte values are little-endian.
//
// Implementation: Uses encoding/binary.LittleEndian. The compiler inlines
// and optimizes these calls well, so no unsafe variants are provided.
package buf

import "encoding/binary"

// WordSize is the number of bytes per heap word.
const WordSize = 4

// PutU32 writes a uint32 to the buffer at the specified byte offset in
// little-endian format.
func PutU32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

// ReadU32 reads a uint32 from the buffer at the specified byte offset in
// little-endian format.
func ReadU32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// Word reads the heap word at word index w.
func Word(b []byte, w int) uint32 {
	return ReadU32(b, w*WordSize)
}

// SetWord writes v to the heap word at word index w.
func SetWord(b []byte, w int, v uint32) {
	PutU32(b, w*WordSize, v)
}
