package concurrency

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardRefusesOverlap(t *testing.T) {
	g := NewConcurrencyGuard()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- g.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.True(t, g.Busy())
	assert.ErrorIs(t, g.Execute(func() error { return nil }), ErrBusy)

	close(release)
	assert.NoError(t, <-done)
	assert.False(t, g.Busy())
	assert.NoError(t, g.Execute(func() error { return nil }), "guard is free again after the task")
}

func TestGuardPropagatesTaskError(t *testing.T) {
	g := NewConcurrencyGuard()
	errTask := errors.New("task failed")

	assert.ErrorIs(t, g.Execute(func() error { return errTask }), errTask)
	assert.False(t, g.Busy())
}

func TestExecuteWithContext(t *testing.T) {
	g := NewConcurrencyGuard()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	err := g.ExecuteWithContext(ctx, func(context.Context) error { ran = true; return nil })
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)

	err = g.ExecuteWithContext(context.Background(), func(context.Context) error { ran = true; return nil })
	assert.NoError(t, err)
	assert.True(t, ran)
}
