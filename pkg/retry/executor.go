// Package retry provides retry executor implementation
package retry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jzx17/gopool/pkg/pool"
	"github.com/jzx17/gopool/pkg/types"
)

// RetryExecutor resubmits failed pool calls according to a policy.
// The pool itself never re-runs a call; each attempt is a fresh
// submission with its own future.
type RetryExecutor struct {
	pool   *pool.Pool
	policy RetryPolicy
	clock  types.Clock

	attempts  int64
	retries   int64
	successes int64
	failures  int64
}

// Result carries the outcome of an asynchronous retried call
type Result struct {
	Value    any
	Err      error
	Attempts int
	Duration time.Duration
}

// RetryStats contains retry statistics
type RetryStats struct {
	TotalAttempts  int64
	TotalRetries   int64
	TotalSuccesses int64
	TotalFailures  int64
}

// NewRetryExecutor creates a retry executor bound to a pool
func NewRetryExecutor(p *pool.Pool, policy RetryPolicy, opts ...ExecutorOption) *RetryExecutor {
	executor := &RetryExecutor{
		pool:   p,
		policy: policy,
		clock:  types.NewRealClock(),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Do calls the named export, resubmitting on failures the policy
// accepts. It returns the last attempt's error once the policy gives
// up; the error of a retried-then-exhausted call is annotated with
// the attempt count.
func (r *RetryExecutor) Do(ctx context.Context, name string, args ...any) (any, error) {
	value, _, err := r.do(ctx, name, args)
	return value, err
}

func (r *RetryExecutor) do(ctx context.Context, name string, args []any) (any, int, error) {
	attempt := 0
	r.policy.Reset()

	for {
		attempt++
		atomic.AddInt64(&r.attempts, 1)

		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		default:
		}

		result, err := r.pool.Call(name, args...).Get(ctx)
		if err == nil {
			atomic.AddInt64(&r.successes, 1)
			if attempt > 1 {
				atomic.AddInt64(&r.retries, 1)
			}
			return result, attempt, nil
		}

		if !r.policy.ShouldRetry(err, attempt) {
			atomic.AddInt64(&r.failures, 1)
			if attempt > 1 {
				atomic.AddInt64(&r.retries, 1)
				return nil, attempt, fmt.Errorf("after %d attempts: %w", attempt, err)
			}
			return nil, attempt, err
		}

		delay := r.policy.NextDelay(attempt)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return nil, attempt, ctx.Err()
			case <-r.clock.After(delay):
			}
		}
	}
}

// DoAsync runs Do on its own goroutine and delivers the outcome on
// the returned channel.
func (r *RetryExecutor) DoAsync(ctx context.Context, name string, args ...any) <-chan Result {
	resultChan := make(chan Result, 1)

	go func() {
		defer close(resultChan)

		start := r.clock.Now()
		value, attempts, err := r.do(ctx, name, args)

		resultChan <- Result{
			Value:    value,
			Err:      err,
			Attempts: attempts,
			Duration: r.clock.Since(start),
		}
	}()

	return resultChan
}

// GetStats gets retry statistics
func (r *RetryExecutor) GetStats() RetryStats {
	return RetryStats{
		TotalAttempts:  atomic.LoadInt64(&r.attempts),
		TotalRetries:   atomic.LoadInt64(&r.retries),
		TotalSuccesses: atomic.LoadInt64(&r.successes),
		TotalFailures:  atomic.LoadInt64(&r.failures),
	}
}

// ResetStats resets statistics
func (r *RetryExecutor) ResetStats() {
	atomic.StoreInt64(&r.attempts, 0)
	atomic.StoreInt64(&r.retries, 0)
	atomic.StoreInt64(&r.successes, 0)
	atomic.StoreInt64(&r.failures, 0)
}

// ExecutorOption is a configuration option for retry executor
type ExecutorOption func(*RetryExecutor)

// WithClock sets the clock for time operations
func WithClock(clock types.Clock) ExecutorOption {
	return func(r *RetryExecutor) {
		r.clock = clock
	}
}
