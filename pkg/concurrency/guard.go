package concurrency

import (
	"context"
	"errors"
	"sync"
)

var ErrBusy = errors.New("a submission is already in progress")

// ConcurrencyGuard runs at most one task at a time and refuses the rest.
type ConcurrencyGuard struct {
	mu     sync.Mutex
	isBusy bool
}

func NewConcurrencyGuard() *ConcurrencyGuard {
	return &ConcurrencyGuard{}
}

// Busy reports whether a task is currently running.
func (g *ConcurrencyGuard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.isBusy
}

func (g *ConcurrencyGuard) Execute(task func() error) error {
	g.mu.Lock()
	if g.isBusy {
		g.mu.Unlock()
		return ErrBusy
	}
	g.isBusy = true
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.isBusy = false
		g.mu.Unlock()
	}()
	return task()
}

// ExecuteWithContext is Execute for tasks that take a context. A context
// that is already done is reported without running the task.
func (g *ConcurrencyGuard) ExecuteWithContext(ctx context.Context, task func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.Execute(func() error { return task(ctx) })
}
