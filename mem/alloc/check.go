package alloc

import (
	"fmt"
	"os"

	"github.com/arlabs/memnet/internal/buf"
)

// Heap validator. Check walks the whole image twice, once by physical
// adjacency and once by bin membership, and cross-checks the two views.
// It is the debugging backstop behind debugCheck and is also exported so
// callers can audit a heap they suspect was corrupted through Bytes.

// Check validates every heap invariant and returns the first violation
// found. With verbose set, each block visited is printed to stderr.
func (a *Allocator) Check(verbose bool) error {
	img := a.ar.Bytes()
	size := a.ar.Size()

	if listZone%2 != 0 {
		return fmt.Errorf("bin directory ends at odd word %d", listZone)
	}
	if a.wild < firstWord || a.wild*4 >= size {
		return fmt.Errorf("wilderness header %d outside heap of %d bytes", a.wild, size)
	}
	if !blockIsFree(img, a.wild) {
		return fmt.Errorf("wilderness block at word %d not marked free", a.wild)
	}
	// The image carries 4 bytes of slack past the wilderness footer so
	// payloads stay 8-aligned from a 76-byte prologue.
	wsize := blockSize(img, a.wild)
	if a.wild*4+int(wsize)+4 != size {
		return fmt.Errorf("wilderness at word %d size %d does not reach heap end %d", a.wild, wsize, size)
	}

	heapFree := 0
	prevFree := false
	for b := firstWord; b < a.wild; b = blockNext(img, b) {
		bsize := blockSize(img, b)
		if verbose {
			fmt.Fprintf(os.Stderr, "[check] word %d size %d free %v\n", b, bsize, blockIsFree(img, b))
		}
		if bsize%alignment != 0 {
			return fmt.Errorf("block at word %d has unaligned size %d", b, bsize)
		}
		if bsize < minAlloc+hdrSize {
			return fmt.Errorf("block at word %d undersized at %d bytes", b, bsize)
		}
		if int(blockMem(b))%alignment != 0 {
			return fmt.Errorf("payload of block at word %d not %d-aligned", b, alignment)
		}
		if blockSize(img, b+int(bsize/4)-1) != bsize {
			return fmt.Errorf("block at word %d: footer size disagrees with header %d", b, bsize)
		}
		next := blockNext(img, b)
		if next > a.wild {
			return fmt.Errorf("block at word %d overruns wilderness at %d", b, a.wild)
		}
		if blockIsFree(img, b) {
			if prevFree {
				return fmt.Errorf("adjacent free blocks ending at word %d escaped coalescing", b)
			}
			heapFree++
		}
		prevFree = blockIsFree(img, b)
	}
	if prevFree {
		return fmt.Errorf("free block adjacent to the wilderness escaped absorption")
	}

	listFree := 0
	for bin := 0; bin <= listZone; bin++ {
		prev := bin
		for cur := int(buf.Word(img, bin)); cur != bin; cur = blockRight(img, cur) {
			if cur <= listZone || cur*4 >= size {
				return fmt.Errorf("bin %d links to word %d outside the heap", bin, cur)
			}
			if !blockIsFree(img, cur) {
				return fmt.Errorf("bin %d holds allocated block at word %d", bin, cur)
			}
			if cur == a.wild {
				return fmt.Errorf("wilderness at word %d appears in bin %d", cur, bin)
			}
			if got := binIndex(blockSize(img, cur)); got != bin {
				return fmt.Errorf("block at word %d of size %d filed in bin %d, belongs in %d", cur, blockSize(img, cur), bin, got)
			}
			if blockLeft(img, cur) != prev {
				return fmt.Errorf("block at word %d has left link %d, expected %d", cur, blockLeft(img, cur), prev)
			}
			listFree++
			if listFree > size/(minAlloc+hdrSize) {
				return fmt.Errorf("bin %d forms a cycle", bin)
			}
			prev = cur
		}
	}

	if heapFree != listFree {
		return fmt.Errorf("heap walk found %d free blocks, bin walk found %d", heapFree, listFree)
	}
	return nil
}
