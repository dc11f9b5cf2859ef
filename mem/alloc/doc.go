// Package alloc implements a segregated-fit allocator over a mem.Arena.
//
// The heap image is addressed in 4-byte words. Every block carries a
// header word at byte offset 8n+4 packing the block size (a multiple of
// 8, at least 16) with a free flag in bit 0, and a footer word
// ending at byte offset 8m storing the size only; the free flag in the
// footer is not authoritative. Free blocks additionally carry two link
// words right after the header, each a word offset from the heap base,
// forming circular doubly linked lists anchored in the prologue.
//
// The prologue holds one sentinel word per bin: 8 exact bins in 8-byte
// quanta, 2 bins of 64-byte quanta, 8 bins of 3072-byte quanta, and one
// overflow bin. A sentinel whose word equals its own index marks an
// empty list.
//
// One free block at the high end of the heap, the wilderness, is never
// linked into a bin. It is the physically last block, always free, and
// grows via the arena's Extend primitive when no bin can satisfy a
// request.
//
// The allocator is single threaded. Check walks the whole image and
// every bin list to confirm the structural invariants; it is wired into
// every public operation when the debugCheck build constant is on.
package alloc
