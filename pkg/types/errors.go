// Package types defines error types
package types

import (
	"errors"
	"fmt"
	"reflect"
)

// Predefined errors
var (
	// ErrModuleLoad indicates the module loader failed
	ErrModuleLoad = errors.New("module load failed")

	// ErrNoExports indicates the module exports no callable functions
	ErrNoExports = errors.New("module has no exported functions")

	// ErrUnknownFunction indicates a call to an export the module does not have
	ErrUnknownFunction = errors.New("unknown exported function")

	// ErrNonTransferable indicates an argument cannot cross the worker boundary
	ErrNonTransferable = errors.New("argument is not transferable")

	// ErrInvalidState indicates an operation was attempted in the wrong state
	ErrInvalidState = errors.New("invalid state")

	// ErrWorkerCrashed indicates the worker executing the task died
	ErrWorkerCrashed = errors.New("worker crashed")

	// ErrWorkerTerminated indicates the worker was shut down mid-task
	ErrWorkerTerminated = errors.New("worker terminated")

	// ErrPoolDestroyed indicates the pool was destroyed
	ErrPoolDestroyed = errors.New("pool is destroyed")

	// ErrDestroyTimeout indicates destruction gave up waiting for workers
	ErrDestroyTimeout = errors.New("destroy timeout")
)

// ModuleLoadError reports a loader failure, either during pool
// construction or while starting a replacement worker.
type ModuleLoadError struct {
	// Slot is the worker slot that failed to load, or -1 for the
	// construction-time introspection probe
	Slot int

	// Cause is the underlying loader error
	Cause error
}

// Error implements the error interface
func (e *ModuleLoadError) Error() string {
	if e.Slot < 0 {
		return fmt.Sprintf("module load failed: %v", e.Cause)
	}
	return fmt.Sprintf("module load failed in worker %d: %v", e.Slot, e.Cause)
}

// Unwrap returns the underlying error
func (e *ModuleLoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether the error matches ErrModuleLoad
func (e *ModuleLoadError) Is(target error) bool {
	return target == ErrModuleLoad
}

// NewModuleLoadError creates a ModuleLoadError
func NewModuleLoadError(slot int, cause error) *ModuleLoadError {
	return &ModuleLoadError{Slot: slot, Cause: cause}
}

// WorkerCrashError reports an uncaught fault inside a worker. The
// affected task settles with this error; the pool replaces the worker.
type WorkerCrashError struct {
	// Slot is the pool slot of the crashed worker
	Slot int

	// Value is the recovered panic value
	Value any

	// Stack is the goroutine stack captured at recovery time
	Stack string
}

// Error implements the error interface
func (e *WorkerCrashError) Error() string {
	return fmt.Sprintf("worker %d crashed: %v", e.Slot, e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *WorkerCrashError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Is reports whether the error matches ErrWorkerCrashed
func (e *WorkerCrashError) Is(target error) bool {
	return target == ErrWorkerCrashed
}

// NewWorkerCrashError creates a WorkerCrashError
func NewWorkerCrashError(slot int, value any, stack string) *WorkerCrashError {
	return &WorkerCrashError{Slot: slot, Value: value, Stack: stack}
}

// NonTransferableArgError reports an argument that cannot be sent
// across the worker boundary, detected before dispatch.
type NonTransferableArgError struct {
	// Index is the zero-based position of the offending argument
	Index int

	// Kind is the reflected kind that made the value non-transferable
	Kind reflect.Kind
}

// Error implements the error interface
func (e *NonTransferableArgError) Error() string {
	return fmt.Sprintf("argument %d is not transferable: contains %s", e.Index, e.Kind)
}

// Is reports whether the error matches ErrNonTransferable
func (e *NonTransferableArgError) Is(target error) bool {
	return target == ErrNonTransferable
}

// NewNonTransferableArgError creates a NonTransferableArgError
func NewNonTransferableArgError(index int, kind reflect.Kind) *NonTransferableArgError {
	return &NonTransferableArgError{Index: index, Kind: kind}
}

// InvalidStateError reports an operation attempted in a state that
// does not allow it. Inside the pool this is a programming error,
// never an expected runtime condition.
type InvalidStateError struct {
	// Op is the operation that was attempted
	Op string

	// State is the state the target was in
	State string
}

// Error implements the error interface
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s: invalid in state %s", e.Op, e.State)
}

// Is reports whether the error matches ErrInvalidState
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NewInvalidStateError creates an InvalidStateError
func NewInvalidStateError(op, state string) *InvalidStateError {
	return &InvalidStateError{Op: op, State: state}
}
