package turn

import (
	"context"
	"sync"
)

// Future is a single-use promise. The first Resolve wins; later calls are
// ignored.
type Future[T any] struct {
	once sync.Once
	done chan struct{}
	val  T
}

func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve stores v and releases every waiter. It reports whether this call
// was the one that resolved the future.
func (f *Future[T]) Resolve(v T) bool {
	resolved := false
	f.once.Do(func() {
		f.val = v
		close(f.done)
		resolved = true
	})
	return resolved
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the future is resolved or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, nil
	case <-ctx.Done():
		// Prefer a value that raced with cancellation.
		select {
		case <-f.done:
			return f.val, nil
		default:
		}
		var zero T
		return zero, ctx.Err()
	}
}
