package pool

import (
	"context"
	"fmt"
	"sort"

	"github.com/jzx17/gopool/pkg/types"
)

// Function is a callable a module exports. Arguments arrive exactly as
// passed to Call; the context is the pool's and is cancelled when the
// pool is destroyed.
type Function func(ctx context.Context, args ...any) (any, error)

// Exports maps export names to their functions.
type Exports map[string]Function

// Loader produces one module instance. The pool invokes it once per
// worker, so each worker operates on its own copy of any state the
// loader builds; the loader must return the same export names on
// every invocation.
type Loader func() (Exports, error)

// StaticModule adapts a fixed export map into a Loader. Every worker
// shares the same function values, so the functions must be safe for
// concurrent use.
func StaticModule(exports Exports) Loader {
	return func() (Exports, error) {
		return exports, nil
	}
}

// safeLoad invokes the loader, converting a panic into an error.
func safeLoad(loader Loader) (exports Exports, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("loader panic: %v", r)
		}
	}()
	return loader()
}

// probeExports loads the module once on the constructing goroutine to
// discover its export names. The probe's function values are
// discarded; workers execute against their own module copies.
func probeExports(loader Loader) (map[string]struct{}, []string, error) {
	exports, err := safeLoad(loader)
	if err != nil {
		return nil, nil, types.NewModuleLoadError(-1, err)
	}
	if len(exports) == 0 {
		return nil, nil, types.ErrNoExports
	}

	set := make(map[string]struct{}, len(exports))
	names := make([]string, 0, len(exports))
	for name, fn := range exports {
		if fn == nil {
			return nil, nil, types.NewModuleLoadError(-1, fmt.Errorf("export %q is nil", name))
		}
		set[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return set, names, nil
}
