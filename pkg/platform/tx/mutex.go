package tx

import (
	"context"
	"sync"
)

// MutexRunner serializes units of work for in-memory stores, giving them the
// same all-or-nothing ordering a database transaction gives Postgres stores.
type MutexRunner struct {
	mu sync.Mutex
}

func NewMutexRunner() *MutexRunner {
	return &MutexRunner{}
}

func (r *MutexRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
