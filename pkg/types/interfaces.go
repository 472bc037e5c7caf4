// Package types defines core interfaces shared across gopool packages
package types

// Deque is the double-ended queue contract consumed by the pool's task
// queue, so dispatch logic stays independent of the buffer growth
// strategy. Only the FIFO subset is required.
type Deque[T any] interface {
	// PushBack appends v after the back element
	PushBack(v T)

	// PopFront removes and returns the front element; the error is the
	// implementing package's empty sentinel when the deque is empty
	PopFront() (T, error)

	// Len returns the number of elements
	Len() int

	// IsEmpty reports whether the deque holds no elements
	IsEmpty() bool
}

// ErrorHandler defines an error handling function. The pool invokes it
// on the dispatcher goroutine for every failed task and for worker
// replacement failures; the task's future settles regardless of the
// handler's return value.
type ErrorHandler func(error) error
