package cache

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprintMatching(t *testing.T) {
	a := NewFingerprint("example.com", "index.html", 80)
	require.True(t, a.matches(NewFingerprint("example.com", "index.html", 80)))

	require.False(t, a.matches(NewFingerprint("Example.com", "index.html", 80)))
	require.False(t, a.matches(NewFingerprint("example.com", "index.htm", 80)))
	require.False(t, a.matches(NewFingerprint("example.com", "index.html", 8080)))
	// Field boundaries must not shift into each other.
	require.False(t, NewFingerprint("ab", "c", 80).matches(NewFingerprint("a", "bc", 80)))
}

func TestLookupMissAndHit(t *testing.T) {
	c := New(nil)
	fp := NewFingerprint("example.com", "a", 80)

	_, ok := c.Lookup(fp)
	require.False(t, ok)

	require.True(t, c.Insert(fp, []byte("payload")))
	got, ok := c.Lookup(fp)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), got)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 7, c.Size())
}

func TestInsertRejectsOversizeObject(t *testing.T) {
	c := New(&Config{MaxCacheSize: 1000, MaxObjectSize: 100})
	fp := NewFingerprint("example.com", "big", 80)

	require.False(t, c.Insert(fp, make([]byte, 101)))
	require.Zero(t, c.Len())

	require.True(t, c.Insert(fp, make([]byte, 100)))
	require.Equal(t, 100, c.Size())
}

func TestInsertEvictsLeastRecentlyUsed(t *testing.T) {
	c := New(&Config{MaxCacheSize: 100, MaxObjectSize: 50})
	fpA := NewFingerprint("a", "/", 80)
	fpB := NewFingerprint("b", "/", 80)
	fpC := NewFingerprint("c", "/", 80)

	require.True(t, c.Insert(fpA, make([]byte, 50)))
	require.True(t, c.Insert(fpB, make([]byte, 50)))

	// Touch A so B becomes the eviction candidate.
	_, ok := c.Lookup(fpA)
	require.True(t, ok)

	require.True(t, c.Insert(fpC, make([]byte, 50)))
	require.Equal(t, 2, c.Len())
	require.Equal(t, 100, c.Size())

	_, ok = c.Lookup(fpB)
	require.False(t, ok)
	_, ok = c.Lookup(fpA)
	require.True(t, ok)
	_, ok = c.Lookup(fpC)
	require.True(t, ok)
}

func TestEvictionRunsUntilBudgetHolds(t *testing.T) {
	c := New(&Config{MaxCacheSize: 100, MaxObjectSize: 90})
	for i, host := range []string{"a", "b", "c", "d"} {
		require.True(t, c.Insert(NewFingerprint(host, "/", 80), make([]byte, 25)))
		require.Equal(t, i+1, c.Len())
	}

	// One large insert must push out several small entries.
	require.True(t, c.Insert(NewFingerprint("e", "/", 80), make([]byte, 90)))
	require.LessOrEqual(t, c.Size(), 100)
	_, ok := c.Lookup(NewFingerprint("e", "/", 80))
	require.True(t, ok)
}

func TestFlushDropsEverything(t *testing.T) {
	c := New(nil)
	for _, host := range []string{"a", "b", "c"} {
		require.True(t, c.Insert(NewFingerprint(host, "/", 80), []byte("x")))
	}

	c.Flush()
	require.Zero(t, c.Len())
	require.Zero(t, c.Size())
	_, ok := c.Lookup(NewFingerprint("a", "/", 80))
	require.False(t, ok)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	c := New(nil)
	fp := NewFingerprint("example.com", "/", 80)
	want := bytes.Repeat([]byte{0x5A}, 4096)
	require.True(t, c.Insert(fp, want))

	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if g%4 == 0 {
					c.Insert(NewFingerprint("filler", "/", 8000+g), []byte("f"))
				}
				got, ok := c.Lookup(fp)
				if ok && !bytes.Equal(got, want) {
					t.Errorf("goroutine %d read torn object", g)
					return
				}
			}
		}(g)
	}
	wg.Wait()

	got, ok := c.Lookup(fp)
	require.True(t, ok)
	require.Equal(t, want, got)
}
