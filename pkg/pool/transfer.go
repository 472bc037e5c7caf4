package pool

import (
	"reflect"
	"sync"

	"github.com/jzx17/gopool/pkg/types"
)

// visitedPool recycles the cycle-detection sets used by the argument
// walk so steady-state calls do not allocate one per validation.
var visitedPool = sync.Pool{
	New: func() any {
		return make(map[uintptr]struct{}, 8)
	},
}

// validateArgs checks, best effort, that every argument can cross the
// worker boundary. Channels, functions, and unsafe pointers anywhere
// in an argument's value graph make it non-transferable.
func validateArgs(args []any) error {
	for i, arg := range args {
		if arg == nil {
			continue
		}
		visited := visitedPool.Get().(map[uintptr]struct{})
		kind, ok := transferable(reflect.ValueOf(arg), visited)
		clear(visited)
		visitedPool.Put(visited)
		if !ok {
			return types.NewNonTransferableArgError(i, kind)
		}
	}
	return nil
}

// transferable walks v and returns the offending kind when it finds a
// non-transferable value. Pointer-like values are tracked in visited
// so cyclic graphs terminate.
func transferable(v reflect.Value, visited map[uintptr]struct{}) (reflect.Kind, bool) {
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return v.Kind(), false

	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Invalid, true
		}
		if _, seen := visited[v.Pointer()]; seen {
			return reflect.Invalid, true
		}
		visited[v.Pointer()] = struct{}{}
		return transferable(v.Elem(), visited)

	case reflect.Interface:
		if v.IsNil() {
			return reflect.Invalid, true
		}
		return transferable(v.Elem(), visited)

	case reflect.Map:
		if v.IsNil() {
			return reflect.Invalid, true
		}
		if _, seen := visited[v.Pointer()]; seen {
			return reflect.Invalid, true
		}
		visited[v.Pointer()] = struct{}{}
		iter := v.MapRange()
		for iter.Next() {
			if kind, ok := transferable(iter.Key(), visited); !ok {
				return kind, false
			}
			if kind, ok := transferable(iter.Value(), visited); !ok {
				return kind, false
			}
		}
		return reflect.Invalid, true

	case reflect.Slice:
		if v.IsNil() {
			return reflect.Invalid, true
		}
		if _, seen := visited[v.Pointer()]; seen {
			return reflect.Invalid, true
		}
		visited[v.Pointer()] = struct{}{}
		for i := 0; i < v.Len(); i++ {
			if kind, ok := transferable(v.Index(i), visited); !ok {
				return kind, false
			}
		}
		return reflect.Invalid, true

	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if kind, ok := transferable(v.Index(i), visited); !ok {
				return kind, false
			}
		}
		return reflect.Invalid, true

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if kind, ok := transferable(v.Field(i), visited); !ok {
				return kind, false
			}
		}
		return reflect.Invalid, true

	default:
		return reflect.Invalid, true
	}
}
