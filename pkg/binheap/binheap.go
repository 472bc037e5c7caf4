// Package binheap provides binary min-heap operations over plain slices,
// ordered by a caller-supplied less function, plus a small Heap wrapper
// that pairs a slice with its ordering.
package binheap

import "errors"

// ErrEmpty is returned when Pop or Peek is called on an empty heap.
var ErrEmpty = errors.New("heap is empty")

// Init establishes the heap property on h in O(n).
// The other functions expect h to already be a valid heap.
func Init[T any](h []T, less func(a, b T) bool) {
	for i := len(h)/2 - 1; i >= 0; i-- {
		siftDown(h, i, less)
	}
}

// Push appends v and restores the heap property. O(log n).
func Push[T any](h *[]T, v T, less func(a, b T) bool) {
	*h = append(*h, v)
	siftUp(*h, len(*h)-1, less)
}

// Pop removes and returns the root element, the minimum under less.
// O(log n).
func Pop[T any](h *[]T, less func(a, b T) bool) (T, error) {
	var zero T
	s := *h
	if len(s) == 0 {
		return zero, ErrEmpty
	}
	n := len(s) - 1
	s[0], s[n] = s[n], s[0]
	top := s[n]
	s[n] = zero // drop the reference for GC
	*h = s[:n]
	if n > 0 {
		siftDown(*h, 0, less)
	}
	return top, nil
}

// Peek returns the root element without removing it.
func Peek[T any](h []T) (T, error) {
	var zero T
	if len(h) == 0 {
		return zero, ErrEmpty
	}
	return h[0], nil
}

// Fix restores the heap property after the element at index i changed
// value. Out-of-range indices are ignored. O(log n).
func Fix[T any](h []T, i int, less func(a, b T) bool) {
	if i < 0 || i >= len(h) {
		return
	}
	if !siftDown(h, i, less) {
		siftUp(h, i, less)
	}
}

// siftDown moves h[i] down until both children are not less than it.
// Reports whether the element moved.
func siftDown[T any](h []T, i int, less func(a, b T) bool) bool {
	root := i
	n := len(h)
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && less(h[right], h[child]) {
			child = right
		}
		if !less(h[child], h[i]) {
			break
		}
		h[i], h[child] = h[child], h[i]
		i = child
	}
	return i > root
}

// siftUp moves h[i] up until its parent is not greater than it.
func siftUp[T any](h []T, i int, less func(a, b T) bool) {
	for i > 0 {
		parent := (i - 1) / 2
		if !less(h[i], h[parent]) {
			break
		}
		h[i], h[parent] = h[parent], h[i]
		i = parent
	}
}

// Heap pairs a slice with its ordering so call sites do not have to
// thread the less function through every operation.
type Heap[T any] struct {
	items []T
	less  func(a, b T) bool
}

// NewHeap creates an empty Heap ordered by less.
func NewHeap[T any](less func(a, b T) bool) *Heap[T] {
	return &Heap[T]{less: less}
}

// NewHeapFrom creates a Heap that takes ownership of items and
// heapifies them in O(n).
func NewHeapFrom[T any](items []T, less func(a, b T) bool) *Heap[T] {
	Init(items, less)
	return &Heap[T]{items: items, less: less}
}

// Push inserts v.
func (h *Heap[T]) Push(v T) {
	Push(&h.items, v, h.less)
}

// Pop removes and returns the minimum element.
func (h *Heap[T]) Pop() (T, error) {
	return Pop(&h.items, h.less)
}

// Peek returns the minimum element without removing it.
func (h *Heap[T]) Peek() (T, error) {
	return Peek(h.items)
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int {
	return len(h.items)
}

// IsEmpty reports whether the heap holds no elements.
func (h *Heap[T]) IsEmpty() bool {
	return len(h.items) == 0
}
