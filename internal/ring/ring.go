// Package ring provides a fixed-capacity circular buffer.
package ring

// Buffer keeps the last N values pushed into it.
type Buffer[T any] struct {
	items    []T
	capacity int
	head     int  // next write position
	full     bool // has wrapped around
}

// New creates a Buffer with the given capacity. A capacity of zero or less
// yields a buffer that stores nothing.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer[T]{
		items:    make([]T, capacity),
		capacity: capacity,
	}
}

// Push stores v, overwriting the oldest value when the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if b == nil || b.capacity == 0 {
		return
	}
	b.items[b.head] = v
	b.head = (b.head + 1) % b.capacity
	if b.head == 0 {
		b.full = true
	}
}

// Len returns the number of stored values.
func (b *Buffer[T]) Len() int {
	if b == nil {
		return 0
	}
	if b.full {
		return b.capacity
	}
	return b.head
}

// Snapshot returns a copy of all stored values, oldest first.
func (b *Buffer[T]) Snapshot() []T {
	if b == nil {
		return nil
	}
	if !b.full {
		result := make([]T, b.head)
		copy(result, b.items[:b.head])
		return result
	}

	// Wrapped - return [head:capacity] + [0:head]
	result := make([]T, b.capacity)
	copy(result, b.items[b.head:])
	copy(result[b.capacity-b.head:], b.items[:b.head])
	return result
}
