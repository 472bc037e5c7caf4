package pool

import (
	"context"
	"sync"
)

// Future is the pending-result handle returned by Call. It settles
// exactly once, with either a value or an error, and can be observed
// by any number of goroutines.
type Future struct {
	done chan struct{}
	once sync.Once

	// written once before done closes, read only after
	value any
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// settle fulfills the future. Reports whether this call was the one
// that settled it.
func (f *Future) settle(value any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
		settled = true
	})
	return settled
}

// Get blocks until the future settles or ctx is done, whichever comes
// first. A context error does not settle the future; the result can
// still be collected by a later Get.
func (f *Future) Get(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done returns a channel that is closed when the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the future has settled, without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
