package pool

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gopool/pkg/types"
)

type node struct {
	Value int
	Next  *node
}

func TestValidateArgs_Transferable(t *testing.T) {
	cyclic := &node{Value: 1}
	cyclic.Next = &node{Value: 2, Next: cyclic}

	tests := []struct {
		name string
		args []any
	}{
		{"no args", nil},
		{"scalars", []any{1, "two", 3.0, true}},
		{"nil arg", []any{nil}},
		{"slices and maps", []any{[]int{1, 2}, map[string]int{"a": 1}}},
		{"struct", []any{node{Value: 7}}},
		{"pointer cycle", []any{cyclic}},
		{"bytes", []any{[]byte("payload")}},
		{"nested containers", []any{map[string][]int{"xs": {1, 2, 3}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, validateArgs(tt.args))
		})
	}
}

func TestValidateArgs_NonTransferable(t *testing.T) {
	type withChan struct {
		C chan int
	}
	type withFunc struct {
		F func()
	}

	tests := []struct {
		name  string
		args  []any
		index int
		kind  reflect.Kind
	}{
		{"channel", []any{make(chan int)}, 0, reflect.Chan},
		{"function", []any{func() {}}, 0, reflect.Func},
		{"unsafe pointer", []any{unsafe.Pointer(new(int))}, 0, reflect.UnsafePointer},
		{"chan inside struct", []any{withChan{C: make(chan int)}}, 0, reflect.Chan},
		{"func inside struct pointer", []any{&withFunc{F: func() {}}}, 0, reflect.Func},
		{"func as map value", []any{map[string]func(){"f": func() {}}}, 0, reflect.Func},
		{"chan in slice", []any{[]chan int{make(chan int)}}, 0, reflect.Chan},
		{"second argument offends", []any{"fine", make(chan int)}, 1, reflect.Chan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArgs(tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrNonTransferable)

			var argErr *types.NonTransferableArgError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.index, argErr.Index)
			assert.Equal(t, tt.kind, argErr.Kind)
		})
	}
}

func TestValidateArgs_SharedVisitedStateIsReset(t *testing.T) {
	v := &node{Value: 1}

	// the same pointer must be walkable again on later calls even
	// though visited sets are pooled
	for i := 0; i < 3; i++ {
		assert.NoError(t, validateArgs([]any{v, v}))
	}
}
