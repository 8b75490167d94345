package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferBeforeWrap(t *testing.T) {
	b := New[int](4)
	b.Push(1)
	b.Push(2)
	require.Equal(t, 2, b.Len())
	require.Equal(t, []int{1, 2}, b.Snapshot())
}

func TestBufferWraps(t *testing.T) {
	b := New[string](3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		b.Push(s)
	}
	require.Equal(t, 3, b.Len())
	require.Equal(t, []string{"c", "d", "e"}, b.Snapshot())
}

func TestZeroCapacity(t *testing.T) {
	b := New[int](0)
	b.Push(1)
	require.Zero(t, b.Len())
	require.Empty(t, b.Snapshot())

	var nilBuf *Buffer[int]
	nilBuf.Push(1)
	require.Nil(t, nilBuf.Snapshot())
}
