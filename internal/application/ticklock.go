package application

import "context"

// TickLock guards a tick across processes. Release must be called exactly
// once when ok is true.
type TickLock interface {
	TryAcquire(ctx context.Context, key string) (release func(context.Context), ok bool, err error)
}

// NoopTickLock always grants the lock; used when a single process ticks.
type NoopTickLock struct{}

func (NoopTickLock) TryAcquire(context.Context, string) (func(context.Context), bool, error) {
	return func(context.Context) {}, true, nil
}
