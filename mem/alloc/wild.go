package alloc

import "fmt"

// Wilderness management. The wilderness is the designated free block at
// the high end of the heap. It never appears in a bin and must always
// retain room for a minimum block after a carve, so a later split cannot
// leave it undersized.

// wildExpand grows the heap by at least chunkSize bytes and returns the
// number of bytes actually added.
func (a *Allocator) wildExpand(size uint32) (uint32, error) {
	if size < chunkSize {
		size = chunkSize
	}
	if _, err := a.ar.Extend(int(size)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoMem, err)
	}
	return size, nil
}

// wildAlloc carves size bytes off the low end of the wilderness, growing
// the heap first when the remainder would drop below a minimum block.
func (a *Allocator) wildAlloc(size uint32) (Ref, error) {
	img := a.ar.Bytes()
	wpsize := blockSize(img, a.wild)

	if wpsize < size+minAlloc+hdrSize {
		inc, err := a.wildExpand(size - wpsize + minAlloc + hdrSize)
		if err != nil {
			return 0, err
		}
		wpsize += inc
		img = a.ar.Bytes() // growth may relocate the image
	}

	head := a.wild
	a.wild += int(size / 4)
	wpsize -= size

	blockPack(img, head, size, false)
	blockPack(img, a.wild-1, size, false)

	blockPack(img, a.wild, wpsize, true)
	blockPack(img, a.wild+int(wpsize/4)-1, wpsize, true)

	a.stats.WildernessAllocs++
	return blockMem(head), nil
}
