// Package mem models the raw heap that the allocator carves blocks from.
//
// An Arena is a single owned byte buffer that only ever grows, mirroring
// the sbrk-style break model: Extend appends zeroed bytes and returns the
// old break, Lo and Hi bound the valid byte range. Higher layers address
// the image by offsets into Bytes(), never by raw pointers, so the heap
// image is position independent.
package mem

import (
	"errors"
	"fmt"
)

// ErrHeapLimit indicates that an Extend call would push the arena past its
// configured maximum size.
var ErrHeapLimit = errors.New("mem: heap limit exceeded")

// DefaultMaxSize is the largest heap an Arena will grow to when no limit
// is configured. Offsets are stored in 32-bit words, so every byte offset
// of the image must fit in 32 bits.
const DefaultMaxSize = 1 << 32

// GrowStats counts Extend activity for instrumentation.
type GrowStats struct {
	GrowCalls int   // number of successful Extend calls
	GrowBytes int64 // total bytes added via Extend
}

// ArenaConfig controls arena sizing. A nil config selects the defaults.
type ArenaConfig struct {
	// MaxSize caps the total image size in bytes. Zero means DefaultMaxSize.
	MaxSize int

	// Reserve pre-allocates capacity (not length) so early Extend calls do
	// not reallocate. Zero means no reservation.
	Reserve int
}

// Arena is the growable heap image.
type Arena struct {
	image []byte
	max   int
	stats GrowStats
}

// NewArena creates an empty arena. The break starts at zero; the first
// Extend establishes the initial heap.
func NewArena(config *ArenaConfig) *Arena {
	max := DefaultMaxSize
	reserve := 0
	if config != nil {
		if config.MaxSize > 0 {
			max = config.MaxSize
		}
		if config.Reserve > 0 {
			reserve = config.Reserve
		}
	}
	return &Arena{
		image: make([]byte, 0, reserve),
		max:   max,
	}
}

// Extend grows the image by n zeroed bytes and returns the byte offset of
// the old break. It fails when n is negative or the configured maximum
// would be exceeded; the image is unchanged on failure.
func (a *Arena) Extend(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("mem: negative extend %d", n)
	}
	old := len(a.image)
	if old+n > a.max {
		return 0, fmt.Errorf("%w: %d + %d > %d", ErrHeapLimit, old, n, a.max)
	}
	a.image = append(a.image, make([]byte, n)...)
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(n)
	return old, nil
}

// Lo returns the byte offset of the first valid heap byte.
func (a *Arena) Lo() int { return 0 }

// Hi returns the byte offset of the last valid heap byte, or -1 when the
// arena is empty.
func (a *Arena) Hi() int { return len(a.image) - 1 }

// Size returns the current image size in bytes.
func (a *Arena) Size() int { return len(a.image) }

// Bytes returns the whole heap image. The slice is invalidated by the
// next Extend call.
func (a *Arena) Bytes() []byte { return a.image }

// Stats returns a copy of the growth counters.
func (a *Arena) Stats() GrowStats { return a.stats }
