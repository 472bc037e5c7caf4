// Package retry provides opt-in resubmission of failed pool calls with support for multiple retry policies.
//
// A crashed worker settles its call with a crash error and is replaced;
// the pool never re-runs the call on its own. This package layers that
// decision on top: an executor resubmits calls the policy accepts.
//
// Key Features:
//
// 1. Multiple retry policies:
//   - FixedDelayRetry: Fixed delay retry
//   - ExponentialBackoffRetry: Exponential backoff retry
//   - CustomRetry: Custom retry policy
//
// 2. Retry conditions:
//   - CrashOnly: resubmit only calls lost to a worker crash (the default)
//   - AnyFailure: resubmit any failure except cancellation and lifecycle errors
//   - WithRetryCondition: custom conditions
//
// 3. Retry executor:
//   - Synchronous (Do) and asynchronous (DoAsync) execution
//   - Context cancellation support
//   - Retry statistics
//
// Basic usage example:
//
//	p, err := pool.New(loader, nil)
//	if err != nil {
//		return err
//	}
//	defer p.Destroy()
//
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond)
//	executor := retry.NewRetryExecutor(p, policy)
//
//	result, err := executor.Do(ctx, "transform", payload)
//
// Custom retry conditions:
//
//	policy := retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithRetryCondition(retry.AnyFailure))
//
// Jitter configuration:
//
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond,
//		retry.WithMultiplier(1.5),
//		retry.WithMaxDelay(10*time.Second))
//
//	policy = retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithJitter(true, 0.1)) // 10% jitter
//
// Thread safety:
//
// All public types and methods are thread-safe and can be safely used in concurrent environments.
package retry
