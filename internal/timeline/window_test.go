package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	w := Window{Start: 1_000_000, End: 2_000_000}
	require.True(t, w.Contains(1_500_000))
	require.True(t, w.Contains(1_000_000))
	require.True(t, w.Contains(2_000_000))
	require.False(t, w.Contains(500_000))
	require.False(t, w.Contains(2_000_001))

	require.True(t, w.Overlaps(900_000, 1_100_000))
	require.True(t, w.Overlaps(1_900_000, 2_100_000))
	require.False(t, w.Overlaps(100, 200))
	require.False(t, w.Overlaps(900_000, 2_100_000))
}

func TestWindowUnbounded(t *testing.T) {
	var w Window
	require.True(t, w.Unbounded())
	for _, ts := range []int64{0, 1, 1 << 40} {
		require.True(t, w.Contains(ts))
	}

	require.True(t, NewWindow(5_000_000, 0).Unbounded())
	require.Equal(t, Window{Start: 1_000_000, End: 3_000_000}, NewWindow(1_000_000, 2_000_000))
}
