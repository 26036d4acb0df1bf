// Package drainx runs a batch of independent units of work concurrently and
// processes each result as soon as it is ready, in completion order rather
// than submission order.
//
// Every item gets a PendingTask with its own handle, backed by an
// asyncx.Future. Futures post their handle on a completion channel once they
// settle; the single drain loop receives a handle, removes that task from the
// active set, reads its already-settled result and hands the Outcome to the
// caller's callback. No polling is involved and each task is reported exactly
// once.
//
// Basic usage:
//
//	summary, err := drainx.Drain(ctx, []string{"a", "b", "c"},
//		func(ctx context.Context, name string) (int, error) {
//			return fetchSize(ctx, name)
//		},
//		func(ctx context.Context, o drainx.Outcome[string, int]) error {
//			fmt.Println(o.Item, o.Value, o.Err)
//			return nil
//		},
//	)
//
// Bounded concurrency and callback policy:
//
//	d := drainx.New(process,
//		drainx.WithMaxInFlight(4),
//		drainx.WithCallbackPolicy(drainx.CallbackContinue),
//		drainx.WithCallbackTimeout(2*time.Second),
//	)
//	summary, err := d.Drain(ctx, items, sink)
//
// A failed unit of work never stops the drain. Its error travels in
// Outcome.Err and the batch error wraps ErrBatchFailed.
package drainx
