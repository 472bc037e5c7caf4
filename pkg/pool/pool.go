// Package pool implements a worker pool that parallelizes calls to the
// exported functions of a loaded module. Each worker goroutine loads
// its own copy of the module; callers reach the exports through
// proxies that return a Future per call. Tasks that cannot dispatch
// immediately wait in an unbounded FIFO ring; a crashed worker settles
// its task with a crash error and is replaced in the same slot.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/jzx17/gopool/pkg/bitset"
	"github.com/jzx17/gopool/pkg/types"
)

// PoolState defines the state of a Pool
type PoolState int32

const (
	// StateInitializing means workers are still coming up
	StateInitializing PoolState = iota
	// StateReady means the pool accepts calls
	StateReady
	// StateDestroying means teardown is in progress
	StateDestroying
	// StateDestroyed means teardown finished
	StateDestroyed
)

// String returns the string representation of PoolState
func (s PoolState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDestroying:
		return "destroying"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// replaceBackoff is the pause before retrying a failed worker
// replacement load.
const replaceBackoff = 100 * time.Millisecond

// Pool owns a fixed-size collection of worker handles and one FIFO
// queue of pending tasks. All queue and idle-set mutations happen on
// the dispatcher goroutine; callers and workers communicate with it
// through channels only.
type Pool struct {
	config *Config
	loader Loader

	// export names discovered by the construction probe
	exports map[string]struct{}
	names   []string

	// state management
	state       int32 // atomic PoolState
	destroyOnce sync.Once

	// dispatcher-owned
	queue    *taskQueue
	idle     *bitset.Bitset
	inflight []*task
	handles  []*workerHandle
	handleMu sync.RWMutex // guards handles slot replacement vs stats readers

	// dispatch pacing
	limiter   *rate.Limiter
	rateRes   *rate.Reservation
	rateTimer types.Timer
	rateGrant bool

	// worker replacement backoff
	replTimer types.Timer
	replSlots []int

	// channels
	submitC  chan *task
	eventC   chan workerEvent
	stopC    chan struct{}
	drainedC chan struct{}

	// intake gate: closed before stopC so no submit can race teardown
	intakeMu     sync.RWMutex
	intakeClosed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	clock        types.Clock
	errorHandler types.ErrorHandler

	// statistics
	submitted int64
	completed int64
	failed    int64
	crashed   int64
	replaced  int64
	queueLen  int64 // gauge
	idleCount int64 // gauge
}

// New creates a pool whose workers each load their own copy of the
// module produced by loader. It blocks until every worker is idle; if
// any worker fails to load, the others are torn down and construction
// fails with no partial pool.
func New(loader Loader, config *Config) (*Pool, error) {
	if loader == nil {
		return nil, errors.New("loader must not be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}

	exports, names, err := probeExports(loader)
	if err != nil {
		return nil, err
	}

	n := config.Workers
	p := &Pool{
		config:       config,
		loader:       loader,
		exports:      exports,
		names:        names,
		state:        int32(StateInitializing),
		queue:        newTaskQueue(config.QueueCapacity),
		idle:         bitset.New(n),
		inflight:     make([]*task, n),
		handles:      make([]*workerHandle, n),
		limiter:      config.limiter(),
		submitC:      make(chan *task, config.QueueCapacity),
		eventC:       make(chan workerEvent, n),
		stopC:        make(chan struct{}),
		drainedC:     make(chan struct{}),
		clock:        config.Clock,
		errorHandler: config.ErrorHandler,
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())

	for i := 0; i < n; i++ {
		p.spawnWorker(i)
	}

	// suspend until all workers report their module load outcome
	ready := 0
	for ready < n {
		ev := <-p.eventC
		if ev.kind != eventReady {
			continue
		}
		if ev.err != nil {
			p.abortConstruction()
			if errors.Is(ev.err, types.ErrNoExports) {
				return nil, types.ErrNoExports
			}
			return nil, types.NewModuleLoadError(ev.slot, ev.err)
		}
		p.idle.Set(ev.slot)
		ready++
	}

	atomic.StoreInt64(&p.idleCount, int64(n))
	atomic.StoreInt32(&p.state, int32(StateReady))
	go p.run()
	return p, nil
}

// spawnWorker creates and starts the handle for a slot
func (p *Pool) spawnWorker(slot int) {
	h := newWorkerHandle(slot, p.loader, p.eventC, p.clock, p.config.PinWorkers)
	p.handleMu.Lock()
	p.handles[slot] = h
	p.handleMu.Unlock()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		h.run(p.ctx)
	}()
}

// abortConstruction tears down a partially started pool after a
// worker failed to load.
func (p *Pool) abortConstruction() {
	atomic.StoreInt32(&p.state, int32(StateDestroyed))
	p.cancel()
	for _, h := range p.handles {
		if h != nil {
			h.terminate()
		}
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	for {
		select {
		case <-p.eventC:
		case <-done:
			return
		}
	}
}

// State returns the current pool state
func (p *Pool) State() PoolState {
	return PoolState(atomic.LoadInt32(&p.state))
}

// Size returns the number of worker slots
func (p *Pool) Size() int {
	return p.config.Workers
}

// Functions returns the module's export names in sorted order.
func (p *Pool) Functions() []string {
	return append([]string(nil), p.names...)
}

// Call invokes the named export with args on some worker. It never
// blocks on the work itself: the returned Future is already settled
// when the call is rejected (pool not ready, unknown export,
// non-transferable argument) and settles later otherwise.
func (p *Pool) Call(name string, args ...any) *Future {
	f := newFuture()
	atomic.AddInt64(&p.submitted, 1)

	if p.State() != StateReady {
		p.reject(f, types.ErrPoolDestroyed)
		return f
	}
	if _, ok := p.exports[name]; !ok {
		p.reject(f, fmt.Errorf("%w: %q", types.ErrUnknownFunction, name))
		return f
	}
	if err := validateArgs(args); err != nil {
		p.reject(f, err)
		return f
	}

	p.submit(&task{fn: name, args: args, future: f})
	return f
}

// reject settles a future that never became a dispatchable task
func (p *Pool) reject(f *Future, err error) {
	atomic.AddInt64(&p.failed, 1)
	f.settle(nil, err)
}

// submit hands a task to the dispatcher. The intake gate guarantees
// the dispatcher is still draining submitC whenever a send is in
// flight, so the send always completes.
func (p *Pool) submit(t *task) {
	p.intakeMu.RLock()
	defer p.intakeMu.RUnlock()
	if p.intakeClosed {
		p.reject(t.future, types.ErrPoolDestroyed)
		return
	}
	p.submitC <- t
}

// Proxy returns a callable bound to one export, the per-function
// surface of the pool.
func (p *Pool) Proxy(name string) (func(args ...any) *Future, error) {
	if _, ok := p.exports[name]; !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownFunction, name)
	}
	return func(args ...any) *Future {
		return p.Call(name, args...)
	}, nil
}

// Proxies returns one proxy per export.
func (p *Pool) Proxies() map[string]func(args ...any) *Future {
	proxies := make(map[string]func(args ...any) *Future, len(p.names))
	for _, name := range p.names {
		proxy, _ := p.Proxy(name)
		proxies[name] = proxy
	}
	return proxies
}

// run is the dispatcher goroutine: the single coordinating context
// that owns the queue, the idle set, and the handle slots.
func (p *Pool) run() {
	for {
		select {
		case t := <-p.submitC:
			p.queue.enqueue(t)
		case ev := <-p.eventC:
			p.handleEvent(ev)
		case <-p.rateTimerC():
			p.rateTimer = nil
			p.rateRes = nil
			p.rateGrant = true
		case <-p.replTimerC():
			p.replTimer = nil
			slots := p.replSlots
			p.replSlots = nil
			for _, slot := range slots {
				p.spawnWorker(slot)
			}
		case <-p.stopC:
			p.shutdown()
			return
		}
		p.dispatchReady()
		p.syncGauges()
	}
}

func (p *Pool) rateTimerC() <-chan time.Time {
	if p.rateTimer == nil {
		return nil
	}
	return p.rateTimer.C()
}

func (p *Pool) replTimerC() <-chan time.Time {
	if p.replTimer == nil {
		return nil
	}
	return p.replTimer.C()
}

// handleEvent processes one worker message
func (p *Pool) handleEvent(ev workerEvent) {
	switch ev.kind {
	case eventReady:
		p.workerReady(ev)
	case eventCompleted:
		p.inflight[ev.slot] = nil
		p.settleTask(ev.task, ev.result, ev.err)
		p.idle.Set(ev.slot)
	case eventCrashed:
		p.workerCrashed(ev)
	}
}

// workerReady handles a replacement worker's load outcome; readiness
// of the original workers is consumed by New before run starts.
func (p *Pool) workerReady(ev workerEvent) {
	if ev.err != nil {
		p.report(types.NewModuleLoadError(ev.slot, ev.err))
		p.replSlots = append(p.replSlots, ev.slot)
		if p.replTimer == nil {
			p.replTimer = p.clock.NewTimer(replaceBackoff)
		}
		return
	}
	atomic.AddInt64(&p.replaced, 1)
	p.idle.Set(ev.slot)
}

// workerCrashed settles the dead worker's task and starts a
// replacement in the same slot, preserving pool capacity.
func (p *Pool) workerCrashed(ev workerEvent) {
	atomic.AddInt64(&p.crashed, 1)
	p.idle.Clear(ev.slot)
	p.inflight[ev.slot] = nil
	if ev.task != nil {
		p.settleTask(ev.task, nil, types.NewWorkerCrashError(ev.slot, ev.value, ev.stack))
	}
	p.spawnWorker(ev.slot)
}

// dispatchReady moves queued tasks onto idle workers in FIFO order,
// lowest slot first, honoring the dispatch rate limit.
func (p *Pool) dispatchReady() {
	for !p.queue.isEmpty() && p.idle.Any() {
		if !p.allowDispatch() {
			return // pacing timer armed, resume when it fires
		}
		t, _ := p.queue.dequeueNext()
		slot, _ := p.idle.NextSet(0)
		p.dispatchTo(slot, t)
	}
}

// allowDispatch consumes one dispatch slot from the rate limiter,
// arming the pacing timer when the limiter requires a wait.
func (p *Pool) allowDispatch() bool {
	if p.limiter == nil {
		return true
	}
	if p.rateGrant {
		p.rateGrant = false
		return true
	}
	if p.rateTimer != nil {
		return false
	}
	now := p.clock.Now()
	res := p.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false
	}
	delay := res.DelayFrom(now)
	if delay <= 0 {
		return true
	}
	p.rateRes = res
	p.rateTimer = p.clock.NewTimer(delay)
	return false
}

// dispatchTo hands a task to an idle slot
func (p *Pool) dispatchTo(slot int, t *task) {
	p.idle.Clear(slot)
	p.inflight[slot] = t
	if err := p.handles[slot].dispatch(t); err != nil {
		// the idle set said this slot was free; a refusal here is a
		// pool invariant violation, not a runtime condition
		panic(err)
	}
}

// settleTask settles a task's future once and updates statistics;
// repeat settles of an already settled task are no-ops.
func (p *Pool) settleTask(t *task, result any, err error) {
	if !t.future.settle(result, err) {
		return
	}
	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		p.report(err)
	} else {
		atomic.AddInt64(&p.completed, 1)
	}
}

// report passes a failure to the configured error handler
func (p *Pool) report(err error) {
	if p.errorHandler != nil {
		_ = p.errorHandler(err)
	}
}

func (p *Pool) syncGauges() {
	atomic.StoreInt64(&p.queueLen, int64(p.queue.len()))
	atomic.StoreInt64(&p.idleCount, int64(p.idle.Count()))
}

// Destroy terminates every worker, settles queued tasks with
// ErrPoolDestroyed and in-flight tasks with ErrWorkerTerminated, and
// waits for worker exit up to DestroyTimeout. It is idempotent: the
// second and later calls return nil without side effects.
func (p *Pool) Destroy() error {
	first := false
	var err error
	p.destroyOnce.Do(func() {
		first = true
		err = p.teardown()
	})
	if !first {
		return nil
	}
	return err
}

func (p *Pool) teardown() error {
	atomic.StoreInt32(&p.state, int32(StateDestroying))

	// close the intake gate; after this no new task reaches submitC
	p.intakeMu.Lock()
	p.intakeClosed = true
	p.intakeMu.Unlock()

	close(p.stopC)
	p.cancel()

	var timerC <-chan time.Time
	if p.config.DestroyTimeout > 0 {
		timer := p.clock.NewTimer(p.config.DestroyTimeout)
		defer timer.Stop()
		timerC = timer.C()
	}

	select {
	case <-p.drainedC:
		atomic.StoreInt32(&p.state, int32(StateDestroyed))
		return nil
	case <-timerC:
		// the dispatcher keeps draining in the background until the
		// remaining workers finish their current functions
		atomic.StoreInt32(&p.state, int32(StateDestroyed))
		return types.ErrDestroyTimeout
	}
}

// shutdown is the dispatcher's teardown path: settle everything that
// will never run, then drain worker events until all goroutines exit.
func (p *Pool) shutdown() {
	defer close(p.drainedC)

	for _, h := range p.handles {
		h.terminate()
	}
	if p.rateTimer != nil {
		p.rateTimer.Stop()
		p.rateTimer = nil
	}
	if p.rateRes != nil {
		p.rateRes.CancelAt(p.clock.Now())
		p.rateRes = nil
	}
	if p.replTimer != nil {
		p.replTimer.Stop()
		p.replTimer = nil
	}

	// completions already delivered win over termination errors
	p.flushEvents()

	// queued tasks were never dispatched
	for {
		t, ok := p.queue.dequeueNext()
		if !ok {
			break
		}
		p.settleTask(t, nil, types.ErrPoolDestroyed)
	}

	// dispatched tasks are interrupted mid-flight
	for slot, t := range p.inflight {
		if t != nil {
			p.inflight[slot] = nil
			p.settleTask(t, nil, types.ErrWorkerTerminated)
		}
	}
	p.syncGauges()

	workersDone := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(workersDone)
	}()
	for {
		select {
		case ev := <-p.eventC:
			p.shutdownEvent(ev)
		case t := <-p.submitC:
			p.settleTask(t, nil, types.ErrPoolDestroyed)
		case <-workersDone:
			p.flushEvents()
			p.flushSubmits()
			return
		}
	}
}

// shutdownEvent settles outcomes that arrive during teardown; settled
// futures make these no-ops.
func (p *Pool) shutdownEvent(ev workerEvent) {
	switch ev.kind {
	case eventCompleted:
		p.settleTask(ev.task, ev.result, ev.err)
	case eventCrashed:
		if ev.task != nil {
			p.settleTask(ev.task, nil, types.NewWorkerCrashError(ev.slot, ev.value, ev.stack))
		}
	}
}

func (p *Pool) flushEvents() {
	for {
		select {
		case ev := <-p.eventC:
			p.shutdownEvent(ev)
		default:
			return
		}
	}
}

func (p *Pool) flushSubmits() {
	for {
		select {
		case t := <-p.submitC:
			p.settleTask(t, nil, types.ErrPoolDestroyed)
		default:
			return
		}
	}
}

// PoolStats defines pool statistics
type PoolStats struct {
	State     PoolState
	Workers   int
	Submitted int64
	Completed int64
	Failed    int64
	Crashed   int64
	Replaced  int64
	Queued    int64
	Idle      int64
}

// Stats returns a snapshot of pool statistics
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		State:     p.State(),
		Workers:   p.config.Workers,
		Submitted: atomic.LoadInt64(&p.submitted),
		Completed: atomic.LoadInt64(&p.completed),
		Failed:    atomic.LoadInt64(&p.failed),
		Crashed:   atomic.LoadInt64(&p.crashed),
		Replaced:  atomic.LoadInt64(&p.replaced),
		Queued:    atomic.LoadInt64(&p.queueLen),
		Idle:      atomic.LoadInt64(&p.idleCount),
	}
}

// WorkerStats returns a per-slot snapshot of worker statistics
func (p *Pool) WorkerStats() []WorkerStat {
	p.handleMu.RLock()
	defer p.handleMu.RUnlock()
	stats := make([]WorkerStat, len(p.handles))
	for i, h := range p.handles {
		stats[i] = h.snapshot()
	}
	return stats
}
