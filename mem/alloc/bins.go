package alloc

import "github.com/arlabs/memnet/internal/buf"

// Bin directory. Sentinels live in prologue words 0..listZone; a sentinel
// stores the word offset of the first list element, and the first
// element's left link points back at the sentinel's word index. An empty
// bin is the fixed point word[b] == b.

const (
	smallZoneEnd = 16 + smallBins*8               // exclusive upper bound of the exact bins
	medZoneEnd   = smallZoneEnd + medBins*64      // exclusive upper bound of the 64-byte bins
	bigZoneEnd   = medZoneEnd + bigBins*3072      // exclusive upper bound of the 3072-byte bins
	bestFitScan  = 6                              // bounded best-fit window per bin
)

// binIndex maps a padded block size to its bin. Sizes past the last big
// bin all share the overflow bin at listZone.
func binIndex(size uint32) int {
	switch {
	case size < smallZoneEnd:
		return int(size/8 - 2)
	case size < medZoneEnd:
		return int((size-smallZoneEnd)/64) + smallBins
	case size < bigZoneEnd:
		return int((size-medZoneEnd)/3072) + smallBins + medBins
	default:
		return listZone
	}
}

// listInsert links the free block at b into the bin selected by its size,
// at the front of the list.
func (a *Allocator) listInsert(img []byte, b int) {
	bin := binIndex(blockSize(img, b))
	first := int(buf.Word(img, bin))

	buf.SetWord(img, bin, uint32(b))
	setLeft(img, b, bin)
	if first == bin {
		// empty list: block points back at the sentinel both ways
		setRight(img, b, bin)
	} else {
		setRight(img, b, first)
		setLeft(img, first, b)
	}
}

// listDelete unlinks the free block at b from its list. The left
// neighbour may be the sentinel, whose single word is the forward link.
func (a *Allocator) listDelete(img []byte, b int) {
	left := blockLeft(img, b)
	right := blockRight(img, b)

	if left <= listZone {
		buf.SetWord(img, left, uint32(right))
	} else {
		setRight(img, left, right)
	}
	if right > listZone {
		setLeft(img, right, left)
	}
}

// place satisfies a request of size bytes from the free block at b,
// splitting off the tail as a new free block when at least a minimum
// block remains. Returns the payload reference.
func (a *Allocator) place(img []byte, b int, size uint32) Ref {
	a.listDelete(img, b)
	bsize := blockSize(img, b)

	if bsize >= size+minAlloc+hdrSize {
		blockPack(img, b, size, false)
		tail := b + int(size/4)
		blockPack(img, tail-1, size, false)

		bsize -= size
		blockPack(img, tail, bsize, true)
		blockPack(img, tail+int(bsize/4)-1, bsize, true)
		a.listInsert(img, tail)
		a.stats.SplitCount++
	} else {
		blockMark(img, b, false)
	}

	return blockMem(b)
}

// listAllocExact serves a request from an exact bin. All blocks in such a
// bin share one size, so only the first element matters.
func (a *Allocator) listAllocExact(img []byte, bin int, size uint32) Ref {
	cur := int(buf.Word(img, bin))
	if cur != bin {
		return a.place(img, cur, size)
	}
	return 0
}

// listAllocBest serves a request from a ranged bin with a bounded
// best-fit: only the first bestFitScan elements are examined, trading
// placement quality for deterministic latency.
func (a *Allocator) listAllocBest(img []byte, bin int, size uint32) Ref {
	cur := int(buf.Word(img, bin))
	best := uint32(0xFFFFFFFF)
	bestAt := -1

	for ctr := 0; cur != bin && ctr < bestFitScan; ctr++ {
		if sz := blockSize(img, cur); sz >= size && sz <= best {
			best = sz
			bestAt = cur
		}
		cur = blockRight(img, cur)
	}

	if bestAt >= 0 {
		return a.place(img, bestAt, size)
	}
	return 0
}
