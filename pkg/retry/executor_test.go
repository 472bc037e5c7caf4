package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gopool/pkg/pool"
	"github.com/jzx17/gopool/pkg/types"
)

var errBoom = errors.New("boom")

// newTestPool builds a two-worker pool around a single export.
func newTestPool(t *testing.T, fn pool.Function) *pool.Pool {
	t.Helper()
	loader := pool.StaticModule(pool.Exports{"op": fn})
	p, err := pool.New(loader, &pool.Config{Workers: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Destroy() })
	return p
}

func TestRetryExecutor_SucceedsAfterRetries(t *testing.T) {
	var calls int32
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			return nil, errBoom
		}
		return "done", nil
	})

	policy := NewFixedDelayRetry(5, time.Millisecond, WithRetryCondition(AnyFailure))
	executor := NewRetryExecutor(p, policy)

	result, err := executor.Do(context.Background(), "op")
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	stats := executor.GetStats()
	assert.Equal(t, int64(3), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.TotalRetries)
	assert.Equal(t, int64(1), stats.TotalSuccesses)
	assert.Equal(t, int64(0), stats.TotalFailures)
}

func TestRetryExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		return nil, errBoom
	})

	policy := NewFixedDelayRetry(3, time.Millisecond, WithRetryCondition(AnyFailure))
	executor := NewRetryExecutor(p, policy)

	_, err := executor.Do(context.Background(), "op")
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "after 3 attempts")

	stats := executor.GetStats()
	assert.Equal(t, int64(3), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.TotalFailures)
}

func TestRetryExecutor_DefaultConditionIsCrashOnly(t *testing.T) {
	var calls int32
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errBoom
	})

	executor := NewRetryExecutor(p, NewFixedDelayRetry(5, time.Millisecond))

	_, err := executor.Do(context.Background(), "op")
	require.Error(t, err)
	assert.Equal(t, errBoom, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "ordinary failures are not resubmitted")
}

func TestRetryExecutor_ResubmitsCrashedCalls(t *testing.T) {
	var calls int32
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("worker dies")
		}
		return "recovered", nil
	})

	executor := NewRetryExecutor(p, NewFixedDelayRetry(3, time.Millisecond))

	result, err := executor.Do(context.Background(), "op")
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)

	stats := executor.GetStats()
	assert.Equal(t, int64(2), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.TotalSuccesses)
}

func TestRetryExecutor_DoAsync(t *testing.T) {
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		return len(args), nil
	})

	executor := NewRetryExecutor(p, NewFixedDelayRetry(3, time.Millisecond))

	select {
	case res := <-executor.DoAsync(context.Background(), "op", 1, 2, 3):
		require.NoError(t, res.Err)
		assert.Equal(t, 3, res.Value)
		assert.Equal(t, 1, res.Attempts)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for async result")
	}
}

func TestRetryExecutor_ContextCancelDuringBackoff(t *testing.T) {
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		return nil, errBoom
	})

	policy := NewFixedDelayRetry(5, time.Hour, WithRetryCondition(AnyFailure))
	executor := NewRetryExecutor(p, policy)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := executor.Do(ctx, "op")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRetryExecutor_UnknownFunctionNotRetried(t *testing.T) {
	p := newTestPool(t, func(ctx context.Context, args ...any) (any, error) {
		return nil, nil
	})

	policy := NewFixedDelayRetry(5, time.Millisecond, WithRetryCondition(AnyFailure))
	executor := NewRetryExecutor(p, policy)

	_, err := executor.Do(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnknownFunction)

	stats := executor.GetStats()
	assert.Equal(t, int64(1), stats.TotalAttempts)
}
