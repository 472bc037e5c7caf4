package pool

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map invokes the named export once per argument set, spreading the
// calls across the pool, and returns the results in input order. The
// first failure wins: remaining waits are abandoned and the error is
// returned after every call has been accounted for. A nil or empty
// argSets returns an empty result slice.
func (p *Pool) Map(ctx context.Context, name string, argSets [][]any) ([]any, error) {
	results := make([]any, len(argSets))
	g, ctx := errgroup.WithContext(ctx)
	for i, args := range argSets {
		g.Go(func() error {
			value, err := p.Call(name, args...).Get(ctx)
			if err != nil {
				return err
			}
			results[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
