package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue(4)

	names := []string{"a", "b", "c", "d", "e", "f"}
	for _, name := range names {
		q.enqueue(&task{fn: name, future: newFuture()})
	}
	assert.Equal(t, len(names), q.len())

	for _, want := range names {
		got, ok := q.dequeueNext()
		require.True(t, ok)
		assert.Equal(t, want, got.fn)
	}
	assert.True(t, q.isEmpty())
}

func TestTaskQueue_DequeueEmpty(t *testing.T) {
	q := newTaskQueue(1)

	got, ok := q.dequeueNext()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestTaskQueue_GrowsPastCapacityHint(t *testing.T) {
	q := newTaskQueue(2)

	for i := 0; i < 100; i++ {
		q.enqueue(&task{fn: "x", future: newFuture()})
	}
	assert.Equal(t, 100, q.len())

	seen := 0
	for {
		if _, ok := q.dequeueNext(); !ok {
			break
		}
		seen++
	}
	assert.Equal(t, 100, seen)
}
