package mem

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtendReturnsOldBreak(t *testing.T) {
	a := NewArena(nil)

	off, err := a.Extend(400)
	require.NoError(t, err)
	require.Equal(t, 0, off)
	require.Equal(t, 400, a.Size())
	require.Equal(t, 399, a.Hi())

	off, err = a.Extend(100)
	require.NoError(t, err)
	require.Equal(t, 400, off)
	require.Equal(t, 500, a.Size())
}

func TestExtendZeroesNewBytes(t *testing.T) {
	a := NewArena(nil)

	_, err := a.Extend(64)
	require.NoError(t, err)

	img := a.Bytes()
	img[10] = 0xFF

	_, err = a.Extend(64)
	require.NoError(t, err)

	img = a.Bytes()
	require.Equal(t, byte(0xFF), img[10], "existing bytes survive growth")
	for i := 64; i < 128; i++ {
		require.Zero(t, img[i], "new bytes must be zeroed")
	}
}

func TestExtendHonorsMaxSize(t *testing.T) {
	a := NewArena(&ArenaConfig{MaxSize: 256})

	_, err := a.Extend(200)
	require.NoError(t, err)

	_, err = a.Extend(100)
	require.ErrorIs(t, err, ErrHeapLimit)
	require.Equal(t, 200, a.Size(), "failed extend must not change the image")

	_, err = a.Extend(56)
	require.NoError(t, err)
}

func TestExtendRejectsNegative(t *testing.T) {
	a := NewArena(nil)
	_, err := a.Extend(-1)
	require.Error(t, err)
}

func TestGrowStats(t *testing.T) {
	a := NewArena(&ArenaConfig{Reserve: 1024})

	_, err := a.Extend(400)
	require.NoError(t, err)
	_, err = a.Extend(112)
	require.NoError(t, err)

	st := a.Stats()
	require.Equal(t, 2, st.GrowCalls)
	require.Equal(t, int64(512), st.GrowBytes)
}
