// Package deque provides a growable double-ended queue backed by a ring buffer.
package deque

import "errors"

// ErrEmpty is returned by read operations on an empty deque.
var ErrEmpty = errors.New("deque is empty")

// Deque is a double-ended queue over a power-of-two ring buffer.
//
// All read operations on an empty deque return the element zero value
// together with ErrEmpty; none of them panic. A Deque is not safe for
// concurrent use and must be wrapped by callers that share it.
type Deque[T any] struct {
	buf  []T
	head int // index of the front element
	size int // logical length, 0 <= size <= len(buf)
}

// New creates a Deque with at least the given initial capacity.
// The capacity is rounded up to the next power of two; values below
// one are treated as one. The zero value of Deque is also ready to use.
func New[T any](capacity int) *Deque[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Deque[T]{buf: make([]T, nextPowerOfTwo(capacity))}
}

// PushBack appends v after the back element. Amortized O(1).
func (d *Deque[T]) PushBack(v T) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.buf[(d.head+d.size)&(len(d.buf)-1)] = v
	d.size++
}

// PushFront inserts v before the front element. Amortized O(1).
func (d *Deque[T]) PushFront(v T) {
	if d.size == len(d.buf) {
		d.grow()
	}
	d.head = (d.head - 1) & (len(d.buf) - 1)
	d.buf[d.head] = v
	d.size++
}

// PopFront removes and returns the front element.
func (d *Deque[T]) PopFront() (T, error) {
	var zero T
	if d.size == 0 {
		return zero, ErrEmpty
	}
	v := d.buf[d.head]
	d.buf[d.head] = zero // drop the reference for GC
	d.head = (d.head + 1) & (len(d.buf) - 1)
	d.size--
	return v, nil
}

// PopBack removes and returns the back element.
func (d *Deque[T]) PopBack() (T, error) {
	var zero T
	if d.size == 0 {
		return zero, ErrEmpty
	}
	i := (d.head + d.size - 1) & (len(d.buf) - 1)
	v := d.buf[i]
	d.buf[i] = zero
	d.size--
	return v, nil
}

// Front returns the front element without removing it.
func (d *Deque[T]) Front() (T, error) {
	var zero T
	if d.size == 0 {
		return zero, ErrEmpty
	}
	return d.buf[d.head], nil
}

// Back returns the back element without removing it.
func (d *Deque[T]) Back() (T, error) {
	var zero T
	if d.size == 0 {
		return zero, ErrEmpty
	}
	return d.buf[(d.head+d.size-1)&(len(d.buf)-1)], nil
}

// ToSlice returns the elements in logical order, front to back.
// The result is independent of the internal wrap offset. O(n).
func (d *Deque[T]) ToSlice() []T {
	out := make([]T, d.size)
	for i := 0; i < d.size; i++ {
		out[i] = d.buf[(d.head+i)&(len(d.buf)-1)]
	}
	return out
}

// Len returns the number of elements.
func (d *Deque[T]) Len() int {
	return d.size
}

// Cap returns the current buffer capacity.
func (d *Deque[T]) Cap() int {
	return len(d.buf)
}

// IsEmpty reports whether the deque holds no elements.
func (d *Deque[T]) IsEmpty() bool {
	return d.size == 0
}

// Clear removes all elements, keeping the current buffer.
func (d *Deque[T]) Clear() {
	var zero T
	for i := 0; i < d.size; i++ {
		d.buf[(d.head+i)&(len(d.buf)-1)] = zero
	}
	d.head = 0
	d.size = 0
}

// grow doubles the buffer and relocates elements to a zero offset.
func (d *Deque[T]) grow() {
	newCap := len(d.buf) * 2
	if newCap == 0 {
		newCap = 1
	}
	newBuf := make([]T, newCap)
	for i := 0; i < d.size; i++ {
		newBuf[i] = d.buf[(d.head+i)&(len(d.buf)-1)]
	}
	d.buf = newBuf
	d.head = 0
}

// nextPowerOfTwo returns the next power of 2 >= n.
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	power := 1
	for power < n {
		power *= 2
	}
	return power
}
