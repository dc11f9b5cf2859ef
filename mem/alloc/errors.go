package alloc

import "errors"

var (
	// ErrNoMem indicates that no free block was large enough and extending
	// the heap failed.
	ErrNoMem = errors.New("alloc: out of memory")

	// ErrBadRef indicates an invalid or out-of-bounds payload reference.
	ErrBadRef = errors.New("alloc: bad payload reference")

	// ErrBadSize indicates a Calloc count*size product that overflows int.
	ErrBadSize = errors.New("alloc: invalid allocation size")
)
