package binheap

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLess(a, b int) bool { return a < b }

// drain pops until empty and returns the elements in pop order.
func drain(t *testing.T, h *[]int) []int {
	t.Helper()
	var out []int
	for len(*h) > 0 {
		v, err := Pop(h, intLess)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func TestInit(t *testing.T) {
	tests := []struct {
		name  string
		items []int
	}{
		{"empty", nil},
		{"single", []int{1}},
		{"sorted", []int{1, 2, 3, 4, 5}},
		{"reversed", []int{5, 4, 3, 2, 1}},
		{"duplicates", []int{3, 1, 3, 1, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := append([]int(nil), tt.items...)
			want := append([]int(nil), tt.items...)
			sort.Ints(want)
			if len(want) == 0 {
				want = nil
			}

			Init(h, intLess)

			assert.Equal(t, want, drain(t, &h))
		})
	}
}

func TestPushPopOrdering(t *testing.T) {
	var h []int
	for _, v := range []int{9, 2, 7, 2, 5, 1} {
		Push(&h, v, intLess)
	}

	assert.Equal(t, []int{1, 2, 2, 5, 7, 9}, drain(t, &h))
}

func TestPop_Empty(t *testing.T) {
	var h []int
	v, err := Pop(&h, intLess)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, 0, v)
}

func TestPeek(t *testing.T) {
	var h []int

	_, err := Peek(h)
	assert.ErrorIs(t, err, ErrEmpty)

	Push(&h, 4, intLess)
	Push(&h, 1, intLess)

	v, err := Peek(h)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, len(h), "peek must not remove")
}

func TestFix(t *testing.T) {
	h := []int{1, 5, 3, 8, 6}
	Init(h, intLess)

	// raise the root and fix it back down
	h[0] = 100
	Fix(h, 0, intLess)
	v, err := Peek(h)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	// lower a leaf and fix it up
	h[len(h)-1] = 0
	Fix(h, len(h)-1, intLess)
	v, err = Peek(h)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	// out of range is a no-op
	Fix(h, -1, intLess)
	Fix(h, len(h), intLess)
}

func TestRandomAgainstSort(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(200)
		var h []int
		want := make([]int, 0, n)
		for i := 0; i < n; i++ {
			v := rng.Intn(1000)
			Push(&h, v, intLess)
			want = append(want, v)
		}
		sort.Ints(want)
		if len(want) == 0 {
			want = nil
		}

		assert.Equal(t, want, drain(t, &h))
	}
}

func TestMaxHeapViaLess(t *testing.T) {
	greater := func(a, b int) bool { return a > b }

	var h []int
	for _, v := range []int{3, 1, 4, 1, 5} {
		Push(&h, v, greater)
	}

	v, err := Pop(&h, greater)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestHeap_Wrapper(t *testing.T) {
	h := NewHeap(intLess)

	assert.True(t, h.IsEmpty())
	_, err := h.Pop()
	assert.ErrorIs(t, err, ErrEmpty)

	h.Push(3)
	h.Push(1)
	h.Push(2)

	assert.Equal(t, 3, h.Len())

	v, err := h.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	got := make([]int, 0, 3)
	for !h.IsEmpty() {
		v, err := h.Pop()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestNewHeapFrom(t *testing.T) {
	h := NewHeapFrom([]int{5, 2, 8, 1}, intLess)

	assert.Equal(t, 4, h.Len())
	v, err := h.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

// Bounded top-K selection, the way a caller tracks the K largest
// values with a min-heap.
func TestHeap_TopK(t *testing.T) {
	const k = 3
	h := NewHeap(intLess)

	for _, v := range []int{4, 9, 1, 7, 3, 8, 2} {
		h.Push(v)
		if h.Len() > k {
			_, err := h.Pop()
			require.NoError(t, err)
		}
	}

	got := make([]int, 0, k)
	for !h.IsEmpty() {
		v, err := h.Pop()
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{7, 8, 9}, got)
}
