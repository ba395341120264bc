package workspace

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCancelled is the outcome of a task cancelled before it completed.
var ErrCancelled = errors.New("task cancelled")

// Task is a cancellable future. Once cancelled it never reports a value.
type Task[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu       sync.Mutex
	finished bool
	val      T
	err      error
}

// Start runs fn in its own goroutine. fn should return promptly when its
// context is cancelled.
func Start[T any](parent context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	ctx, cancel := context.WithCancel(parent)
	t := &Task[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer cancel()
		v, err := fn(ctx)
		if ctx.Err() != nil {
			var zero T
			t.finish(zero, ErrCancelled)
			return
		}
		t.finish(v, err)
	}()
	return t
}

// After resolves to v once d has elapsed.
func After[T any](parent context.Context, d time.Duration, v T) *Task[T] {
	return Start(parent, func(ctx context.Context) (T, error) {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return v, nil
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	})
}

func (t *Task[T]) finish(v T, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return
	}
	t.finished = true
	t.val, t.err = v, err
	close(t.done)
}

// Cancel stops the task. It is a no-op after completion.
func (t *Task[T]) Cancel() {
	var zero T
	t.finish(zero, ErrCancelled)
	t.cancel()
}

// Done is closed when the task completes or is cancelled.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. Before completion it returns
// the zero value and a nil error; check Finished to tell the cases apart.
func (t *Task[T]) Result() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.val, t.err
}

// Finished reports whether the task has completed or been cancelled.
func (t *Task[T]) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Cancelled reports whether the task ended by cancellation.
func (t *Task[T]) Cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished && errors.Is(t.err, ErrCancelled)
}
