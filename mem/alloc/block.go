package alloc

import "github.com/arlabs/memnet/internal/buf"

// Block accessors. A block is identified by the word index of its header
// within the heap image. The helpers are small pure functions on
// (image, word) pairs so the compiler can inline them.

const (
	smallBins = 8 // exact bins in 8-byte quanta
	medBins   = 2 // bins in 64-byte quanta
	bigBins   = 8 // bins in 3072-byte quanta

	// listZone is the word index of the last bin sentinel. It must stay
	// even so the first payload lands on an 8-byte boundary.
	listZone = smallBins + medBins + bigBins

	// firstByte is the byte offset of the first block header; firstWord is
	// the same position as a word index.
	firstByte = listZone*4 + 4
	firstWord = firstByte / 4

	chunkSize = 400 // minimum heap extension, amortizes Extend calls
	minAlloc  = 8   // minimum payload
	hdrSize   = 8   // header word + footer word
	alignment = 8
)

// blockSize returns the size of the block in bytes, including header and
// footer.
func blockSize(img []byte, b int) uint32 {
	return buf.Word(img, b) &^ 7
}

// blockIsFree reports whether the block's header carries the free flag.
func blockIsFree(img []byte, b int) bool {
	return buf.Word(img, b)&1 == 1
}

// blockMark rewrites only the flag bit of the header word.
func blockMark(img []byte, b int, free bool) {
	w := buf.Word(img, b) &^ 1
	if free {
		w |= 1
	}
	buf.SetWord(img, b, w)
}

// blockPack writes a size/flag word. Used for headers and footers alike;
// the flag stored in a footer is never read back.
func blockPack(img []byte, b int, size uint32, free bool) {
	w := size
	if free {
		w |= 1
	}
	buf.SetWord(img, b, w)
}

// blockMem returns the payload reference for a block header.
func blockMem(b int) Ref {
	return Ref((b + 1) * 4)
}

// blockPrev returns the header of the physically previous block, located
// through its footer word.
func blockPrev(img []byte, b int) int {
	return b - int(blockSize(img, b-1)/4)
}

// blockNext returns the header of the physically next block.
func blockNext(img []byte, b int) int {
	return b + int(blockSize(img, b)/4)
}

// blockLeft and blockRight read the free-list neighbour links of a free
// block. Links are word offsets from the heap base, so a 32-bit field
// addresses the whole image.
func blockLeft(img []byte, b int) int {
	return int(buf.Word(img, b+1))
}

func blockRight(img []byte, b int) int {
	return int(buf.Word(img, b+2))
}

func setLeft(img []byte, b, left int) {
	buf.SetWord(img, b+1, uint32(left))
}

func setRight(img []byte, b, right int) {
	buf.SetWord(img, b+2, uint32(right))
}
