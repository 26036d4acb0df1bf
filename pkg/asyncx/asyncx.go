package asyncx

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/errx"
)

var asyncErrors = errx.NewRegistry("ASYNCX")

var (
	// ErrPanicked is returned by a Future whose function panicked.
	ErrPanicked = asyncErrors.Register("PANICKED", errx.TypeInternal, "Async function panicked")
)

// ─── Future ──────────────────────────────────────────────────────────────────

// Future represents a value that will be available asynchronously.
// Create one with Run or RunThen and retrieve its value with Await.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Run executes fn in a goroutine and returns a Future for its result.
// The goroutine starts immediately.
func Run[T any](fn func() (T, error)) *Future[T] {
	return RunThen(fn, nil)
}

// RunThen is Run with a hook: settled is called from the worker goroutine
// once the Future has resolved, so Await never blocks inside settled or after
// it. A panic in fn resolves the Future with ErrPanicked.
func RunThen[T any](fn func() (T, error), settled func()) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		f.value, f.err = protect(fn)
		close(f.done)
		if settled != nil {
			settled()
		}
	}()
	return f
}

func protect[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = asyncErrors.NewWithCause(ErrPanicked, fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

// Done returns a channel closed once the Future has resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Settled reports whether the Future has resolved without blocking.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await blocks until the Future completes and returns its value and error.
// Safe to call multiple times and from multiple goroutines.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.value, f.err
}

// AwaitCtx is Await bounded by ctx.
func (f *Future[T]) AwaitCtx(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ─── Result ──────────────────────────────────────────────────────────────────

// Result holds the outcome of a single settled async operation.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the result carries no error.
func (r Result[T]) OK() bool { return r.Err == nil }

// Settle waits for f and returns its outcome as a Result.
func Settle[T any](f *Future[T]) Result[T] {
	v, err := f.Await()
	return Result[T]{Value: v, Err: err}
}

// ─── Timeout ──────────────────────────────────────────────────────────────────

// WithTimeout runs fn with a deadline of d.
// Returns context.DeadlineExceeded if fn does not finish in time; fn keeps
// running in its goroutine until it observes the cancelled context.
// A non-positive d runs fn inline with ctx unchanged.
func WithTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return protect(func() (T, error) { return fn(ctx) })
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	fut := Run(func() (T, error) { return fn(ctx) })
	return fut.AwaitCtx(ctx)
}
