package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jzx17/gopool/internal/cpuaffinity"
	"github.com/jzx17/gopool/pkg/types"
)

// handleState defines the state of a workerHandle
type handleState int32

const (
	// handleStarting means the worker is loading its module copy
	handleStarting handleState = iota
	// handleIdle means the worker is ready with no task
	handleIdle
	// handleBusy means the worker is executing one task
	handleBusy
	// handleTerminating means teardown was requested
	handleTerminating
	// handleTerminated means the worker goroutine has exited
	handleTerminated
)

// String returns the string representation of handleState
func (s handleState) String() string {
	switch s {
	case handleStarting:
		return "starting"
	case handleIdle:
		return "idle"
	case handleBusy:
		return "busy"
	case handleTerminating:
		return "terminating"
	case handleTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// eventKind discriminates workerEvent
type eventKind int

const (
	// eventReady reports the outcome of a worker's module load
	eventReady eventKind = iota
	// eventCompleted reports a finished task
	eventCompleted
	// eventCrashed reports an uncaught fault; the worker goroutine is gone
	eventCrashed
)

// workerEvent is the message a worker sends its pool. The pool is the
// sole receiver, so pool state mutations stay on one goroutine.
type workerEvent struct {
	kind eventKind
	slot int

	task   *task // in-flight task for completed and crashed
	result any   // function result for completed
	err    error // function error for completed, load error for ready

	value any    // recovered panic value for crashed
	stack string // goroutine stack captured at recovery
}

// workerHandle wraps one persistent worker goroutine. The pool owns
// the handle; the goroutine owns the module copy it loaded.
type workerHandle struct {
	slot   int
	state  int32 // atomic handleState
	loader Loader

	taskC  chan *task
	quitC  chan struct{}
	doneC  chan struct{}
	eventC chan<- workerEvent

	// time operations
	clock types.Clock
	pin   bool

	// statistics
	processed int64
	failed    int64
	lastTask  int64 // Unix nanosecond timestamp

	current *task // worker goroutine only
}

// newWorkerHandle creates a handle for the given pool slot. The worker
// goroutine starts separately via run.
func newWorkerHandle(slot int, loader Loader, eventC chan<- workerEvent, clock types.Clock, pin bool) *workerHandle {
	return &workerHandle{
		slot:   slot,
		state:  int32(handleStarting),
		loader: loader,
		taskC:  make(chan *task, 1),
		quitC:  make(chan struct{}),
		doneC:  make(chan struct{}),
		eventC: eventC,
		clock:  clock,
		pin:    pin,
	}
}

// stateNow returns the current handle state
func (h *workerHandle) stateNow() handleState {
	return handleState(atomic.LoadInt32(&h.state))
}

// dispatch hands t to the worker goroutine. The handle must be idle;
// any other state is a pool bug, surfaced as InvalidStateError.
func (h *workerHandle) dispatch(t *task) error {
	if !atomic.CompareAndSwapInt32(&h.state, int32(handleIdle), int32(handleBusy)) {
		return types.NewInvalidStateError("dispatch", h.stateNow().String())
	}
	// an idle worker always has a free buffer slot, so this never blocks
	h.taskC <- t
	return nil
}

// terminate requests shutdown. It does not wait for the goroutine to
// exit; the pool waits on its own WaitGroup.
func (h *workerHandle) terminate() {
	for {
		s := atomic.LoadInt32(&h.state)
		if handleState(s) == handleTerminating || handleState(s) == handleTerminated {
			break
		}
		if atomic.CompareAndSwapInt32(&h.state, s, int32(handleTerminating)) {
			break
		}
	}

	select {
	case <-h.quitC:
		// already requested
	default:
		close(h.quitC)
	}
}

// run is the worker goroutine body: load the module copy, announce
// readiness, then execute tasks until terminated. An uncaught panic
// ends the goroutine and reports a crash event, modeling the death of
// the underlying worker thread.
func (h *workerHandle) run(ctx context.Context) {
	defer close(h.doneC)
	defer func() {
		if r := recover(); r != nil {
			var buf [8192]byte
			n := runtime.Stack(buf[:], false)
			t := h.current
			h.current = nil
			atomic.AddInt64(&h.failed, 1)
			atomic.StoreInt32(&h.state, int32(handleTerminated))
			h.eventC <- workerEvent{
				kind:  eventCrashed,
				slot:  h.slot,
				task:  t,
				value: r,
				stack: string(buf[:n]),
			}
		}
	}()

	if h.pin {
		unpin, _ := cpuaffinity.Pin(h.slot)
		defer unpin()
	}

	exports, err := safeLoad(h.loader)
	if err == nil && len(exports) == 0 {
		err = types.ErrNoExports
	}
	if err != nil {
		atomic.StoreInt32(&h.state, int32(handleTerminated))
		h.eventC <- workerEvent{kind: eventReady, slot: h.slot, err: err}
		return
	}

	if !atomic.CompareAndSwapInt32(&h.state, int32(handleStarting), int32(handleIdle)) {
		// terminated while loading
		atomic.StoreInt32(&h.state, int32(handleTerminated))
		return
	}
	h.eventC <- workerEvent{kind: eventReady, slot: h.slot}

	for {
		select {
		case <-h.quitC:
			atomic.StoreInt32(&h.state, int32(handleTerminated))
			return
		case t := <-h.taskC:
			h.execute(ctx, t, exports)
		}
	}
}

// execute runs a single task against this worker's module copy
func (h *workerHandle) execute(ctx context.Context, t *task, exports Exports) {
	h.current = t
	atomic.StoreInt64(&h.lastTask, h.clock.Now().UnixNano())

	result, err := h.invoke(ctx, t, exports)

	h.current = nil
	if err != nil {
		atomic.AddInt64(&h.failed, 1)
	} else {
		atomic.AddInt64(&h.processed, 1)
	}

	// terminate may have overwritten busy; keep that state in place
	atomic.CompareAndSwapInt32(&h.state, int32(handleBusy), int32(handleIdle))

	h.eventC <- workerEvent{
		kind:   eventCompleted,
		slot:   h.slot,
		task:   t,
		result: result,
		err:    err,
	}
}

// invoke resolves the export and calls it. A panic inside the function
// escapes to run's recovery and becomes a crash.
func (h *workerHandle) invoke(ctx context.Context, t *task, exports Exports) (any, error) {
	fn, ok := exports[t.fn]
	if !ok {
		// the construction probe saw this name; a loader that returns a
		// different export set per worker violates the module contract
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFunction, t.fn)
	}
	return fn(ctx, t.args...)
}

// snapshot returns this worker's statistics
func (h *workerHandle) snapshot() WorkerStat {
	return WorkerStat{
		Slot:      h.slot,
		State:     h.stateNow().String(),
		Processed: atomic.LoadInt64(&h.processed),
		Failed:    atomic.LoadInt64(&h.failed),
		LastTask:  time.Unix(0, atomic.LoadInt64(&h.lastTask)),
	}
}

// WorkerStat describes one worker slot at a point in time.
type WorkerStat struct {
	Slot      int
	State     string
	Processed int64
	Failed    int64
	LastTask  time.Time
}
