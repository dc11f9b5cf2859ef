package cache

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// rwGate is a readers-preferred readers/writers gate built from two
// binary semaphores and a reader count. Readers overlap freely; a writer
// waits until the last reader leaves, and a steady stream of readers can
// hold a writer off indefinitely. The cache accepts that bias: lookups
// dominate and inserts are rare.
type rwGate struct {
	readMu  *semaphore.Weighted
	writeMu *semaphore.Weighted
	readers int
}

func newRWGate() *rwGate {
	return &rwGate{
		readMu:  semaphore.NewWeighted(1),
		writeMu: semaphore.NewWeighted(1),
	}
}

// Acquire with a background context blocks until the slot frees and
// cannot return an error.

func (g *rwGate) rlock() {
	_ = g.readMu.Acquire(context.Background(), 1)
	g.readers++
	if g.readers == 1 {
		_ = g.writeMu.Acquire(context.Background(), 1)
	}
	g.readMu.Release(1)
}

func (g *rwGate) runlock() {
	_ = g.readMu.Acquire(context.Background(), 1)
	g.readers--
	if g.readers == 0 {
		g.writeMu.Release(1)
	}
	g.readMu.Release(1)
}

func (g *rwGate) lock() {
	_ = g.writeMu.Acquire(context.Background(), 1)
}

func (g *rwGate) unlock() {
	g.writeMu.Release(1)
}
