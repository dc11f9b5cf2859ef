package alloc

import (
	"fmt"
	"math"
	"os"

	"github.com/arlabs/memnet/internal/buf"
	"github.com/arlabs/memnet/mem"
)

// debugCheck wires the full heap validator into every public operation
// (compile-time toggle; the release build skips it entirely).
const debugCheck = false

// Runtime trace flag for allocation logging, controlled by the
// MEMNET_LOG_ALLOC env var.
var logAlloc = os.Getenv("MEMNET_LOG_ALLOC") != ""

// Ref is a payload reference: the byte offset of a payload within the
// heap image. The zero Ref is the nil reference; no valid payload can
// start inside the prologue.
type Ref = uint32

// Stats holds internal allocator counters.
type Stats struct {
	AllocCalls       int // total Malloc calls
	FreeCalls        int // total Free calls
	ReallocCalls     int // total Realloc calls
	BinHits          int // allocations served from a bin list
	WildernessAllocs int // allocations carved from the wilderness
	SplitCount       int // number of block splits
	CoalesceForward  int // merges with the next block
	CoalesceBackward int // merges with the previous block
	WildAbsorbs      int // frees absorbed into the wilderness
}

// Allocator is the segregated-fit allocator context. It is not safe for
// concurrent use; callers needing shared access must serialize.
type Allocator struct {
	ar    *mem.Arena
	wild  int // word index of the wilderness header
	stats Stats
}

// New initializes the heap: it extends the arena far enough for the bin
// directory plus a minimal wilderness, writes the empty sentinels, and
// establishes the wilderness block.
func New(ar *mem.Arena) (*Allocator, error) {
	a := &Allocator{ar: ar}

	size, err := a.wildExpand(4 + firstByte + hdrSize + minAlloc)
	if err != nil {
		return nil, err
	}

	img := ar.Bytes()
	for b := 0; b <= listZone; b++ {
		buf.SetWord(img, b, uint32(b))
	}

	freeSize := size - (4 + firstByte)
	a.wild = firstWord
	blockPack(img, a.wild, freeSize, true)
	blockPack(img, a.wild+int(freeSize/4)-1, freeSize, true)

	a.assertValid()
	return a, nil
}

// Malloc allocates at least n usable bytes and returns the payload
// reference. A zero n returns the nil reference. The only failure is
// ErrNoMem, surfaced when the arena refuses to grow.
func (a *Allocator) Malloc(n int) (Ref, error) {
	a.assertValid()
	a.stats.AllocCalls++

	if n <= 0 {
		return 0, nil
	}
	// The padded block plus the minimum block the wilderness keeps must
	// fit a 32-bit size word; a larger request can never be served.
	if n > math.MaxUint32-2*(hdrSize+alignment) {
		return 0, fmt.Errorf("%w: request of %d bytes exceeds the 32-bit heap", ErrNoMem, n)
	}

	var padded uint32
	if n <= minAlloc {
		padded = minAlloc + hdrSize
	} else {
		padded = uint32((n + hdrSize + alignment - 1) / alignment * alignment)
	}

	if logAlloc {
		fmt.Fprintf(os.Stderr, "[alloc] request %d -> padded %d (bin %d)\n", n, padded, binIndex(padded))
	}

	img := a.ar.Bytes()
	for b := binIndex(padded); b <= listZone; b++ {
		if int(buf.Word(img, b)) == b {
			continue // empty bin
		}
		var ref Ref
		if b < smallBins {
			ref = a.listAllocExact(img, b, padded)
		} else {
			ref = a.listAllocBest(img, b, padded)
		}
		if ref != 0 {
			a.stats.BinHits++
			a.assertValid()
			return ref, nil
		}
	}

	ref, err := a.wildAlloc(padded)
	if err != nil {
		return 0, err
	}
	a.assertValid()
	return ref, nil
}

// Free releases the payload at ref and coalesces with its physical
// neighbours. Free of the nil reference is a no-op. The coalescing order
// matters: previous block first, then wilderness absorption or next-block
// merge, and only a block that did not join the wilderness is binned.
func (a *Allocator) Free(ref Ref) {
	if ref == 0 {
		return
	}
	a.stats.FreeCalls++

	img := a.ar.Bytes()
	b := int(ref)/4 - 1
	blockMark(img, b, true)

	if b != firstWord && blockIsFree(img, blockPrev(img, b)) {
		prev := blockPrev(img, b)
		a.listDelete(img, prev)
		merged := blockSize(img, prev) + blockSize(img, b)
		b = prev
		blockPack(img, b, merged, true)
		blockPack(img, b+int(merged/4)-1, merged, true)
		a.stats.CoalesceBackward++
	}

	if blockNext(img, b) == a.wild {
		merged := blockSize(img, a.wild) + blockSize(img, b)
		a.wild = b
		blockPack(img, a.wild, merged, true)
		blockPack(img, a.wild+int(merged/4)-1, merged, true)
		a.stats.WildAbsorbs++
	} else {
		if next := blockNext(img, b); blockIsFree(img, next) {
			a.listDelete(img, next)
			merged := blockSize(img, b) + blockSize(img, next)
			blockPack(img, b, merged, true)
			blockPack(img, b+int(merged/4)-1, merged, true)
			a.stats.CoalesceForward++
		}
		a.listInsert(img, b)
	}

	a.assertValid()
}

// Realloc resizes the payload at ref to n bytes. A nil ref behaves like
// Malloc; n == 0 behaves like Free and returns the nil reference. When
// the existing block already satisfies the request, ref is returned
// unchanged; there is no shrink-in-place split.
func (a *Allocator) Realloc(ref Ref, n int) (Ref, error) {
	a.stats.ReallocCalls++

	if n <= 0 {
		a.Free(ref)
		return 0, nil
	}
	if ref == 0 {
		return a.Malloc(n)
	}

	img := a.ar.Bytes()
	b := int(ref)/4 - 1
	if int(blockSize(img, b)) >= n+hdrSize {
		return ref, nil
	}

	newRef, err := a.Malloc(n)
	if err != nil {
		return 0, err // the original block is left untouched
	}

	img = a.ar.Bytes()
	oldSize := int(blockSize(img, b)) - hdrSize
	if n < oldSize {
		oldSize = n
	}
	copy(img[newRef:int(newRef)+oldSize], img[ref:int(ref)+oldSize])

	a.Free(ref)
	return newRef, nil
}

// Calloc allocates count*size bytes and zeroes them. The product is
// overflow checked before allocation.
func (a *Allocator) Calloc(count, size int) (Ref, error) {
	n, ok := buf.MulOverflowSafe(count, size)
	if !ok {
		return 0, fmt.Errorf("%w: %d * %d overflows", ErrBadSize, count, size)
	}

	ref, err := a.Malloc(n)
	if err != nil || ref == 0 {
		return ref, err
	}

	img := a.ar.Bytes()
	clear(img[ref : int(ref)+n])
	return ref, nil
}

// Bytes returns the usable payload region behind a live reference. The
// slice is invalidated by any subsequent allocator operation that grows
// the heap.
func (a *Allocator) Bytes(ref Ref) ([]byte, error) {
	img := a.ar.Bytes()
	if ref == 0 || int(ref) < firstByte+4 || int(ref)%alignment != 0 {
		return nil, ErrBadRef
	}
	b := int(ref)/4 - 1
	if b*4 >= len(img) || blockIsFree(img, b) {
		return nil, ErrBadRef
	}
	payload, ok := buf.Slice(img, int(ref), int(blockSize(img, b))-hdrSize)
	if !ok {
		return nil, ErrBadRef
	}
	return payload, nil
}

// Stats returns a copy of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// assertValid panics on the first broken invariant when debugCheck is on.
func (a *Allocator) assertValid() {
	if debugCheck {
		if err := a.Check(true); err != nil {
			panic(err)
		}
	}
}
