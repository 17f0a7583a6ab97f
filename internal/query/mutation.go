package query

import (
	"context"
	"sync/atomic"
)

// Mutation wraps a write call and tracks whether one is in flight. It never
// touches the cache; callers invalidate or write the affected keys once the
// call returns.
type Mutation[V, R any] struct {
	fn      func(ctx context.Context, vars V) (R, error)
	pending atomic.Int32
}

// NewMutation wraps fn.
func NewMutation[V, R any](fn func(ctx context.Context, vars V) (R, error)) *Mutation[V, R] {
	return &Mutation[V, R]{fn: fn}
}

// Do runs the mutation and returns its result.
func (m *Mutation[V, R]) Do(ctx context.Context, vars V) (R, error) {
	m.pending.Add(1)
	defer m.pending.Add(-1)
	return m.fn(ctx, vars)
}

// IsPending reports whether any call is in flight.
func (m *Mutation[V, R]) IsPending() bool {
	return m.pending.Load() > 0
}

// Mutate runs fn and invalidates keys after it succeeds.
func (c *Cache) Mutate(ctx context.Context, fn func(ctx context.Context) error, invalidate ...Key) error {
	if err := fn(ctx); err != nil {
		return err
	}
	for _, key := range invalidate {
		c.Invalidate(key)
	}
	return nil
}
