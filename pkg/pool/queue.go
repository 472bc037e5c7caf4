package pool

import (
	"github.com/jzx17/gopool/pkg/deque"
	"github.com/jzx17/gopool/pkg/types"
)

// task is one pending call: the export name, the arguments, and the
// future the caller observes. A task is dispatched to at most one
// worker and its future settles exactly once.
type task struct {
	fn     string
	args   []any
	future *Future
}

// taskQueue restricts a deque of pending tasks to FIFO use, keeping
// dispatch order independent of the buffer growth strategy underneath.
type taskQueue struct {
	d types.Deque[*task]
}

func newTaskQueue(capacity int) *taskQueue {
	return &taskQueue{d: deque.New[*task](capacity)}
}

// enqueue appends t at the back.
func (q *taskQueue) enqueue(t *task) {
	q.d.PushBack(t)
}

// dequeueNext removes and returns the oldest task, reporting false
// when the queue is empty.
func (q *taskQueue) dequeueNext() (*task, bool) {
	t, err := q.d.PopFront()
	if err != nil {
		return nil, false
	}
	return t, true
}

func (q *taskQueue) len() int {
	return q.d.Len()
}

func (q *taskQueue) isEmpty() bool {
	return q.d.IsEmpty()
}
