package application

import "context"

// UnitOfWork runs fn inside one transaction carried by the returned context.
// Repositories pick the transaction up from ctx, so fn must pass it along.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// NoopUoW runs fn directly; writes commit one statement at a time.
type NoopUoW struct{}

func (NoopUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
