// Package asyncx provides the future primitive the drain engine is built on.
//
// # Futures
//
// A [Future] represents a value computed in its own goroutine. [Run] starts
// the work immediately and [Future.Await] blocks until it resolves. Await is
// safe to call from several goroutines and always returns the same result.
//
//	fut := asyncx.Run(func() ([]byte, error) {
//	    return fs.ReadFile(ctx, "reports/a.csv")
//	})
//
//	// ... do other work ...
//
//	data, err := fut.Await()
//
// [RunThen] adds a settled hook that fires after resolution. The drainer uses
// it to post a task handle on a completion channel, which turns "wait for any
// of N futures" into a single channel receive:
//
//	done := make(chan uint64, n)
//	fut := asyncx.RunThen(work, func() { done <- handle })
//
// [Future.Done] and [Future.Settled] let callers select on resolution or
// check it without blocking.
//
// # Panics
//
// A panic inside the function passed to Run or RunThen does not crash the
// process: the Future resolves with an error carrying the [ErrPanicked] code.
//
// # Timeouts
//
// [WithTimeout] bounds a context-aware function with a deadline and returns
// context.DeadlineExceeded when it does not finish in time.
package asyncx
