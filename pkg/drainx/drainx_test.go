package drainx_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/asyncx"
	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
	"github.com/Abraxas-365/fetchdrain/pkg/errx"
	"github.com/Abraxas-365/fetchdrain/pkg/fetch"
	"github.com/Abraxas-365/fetchdrain/pkg/logx"
	"github.com/jonboulle/clockwork"
)

func quiet() drainx.Option { return drainx.WithLogger(logx.Discard()) }

func identity(_ context.Context, item string) (string, error) { return item, nil }

// collect returns a callback that records outcomes in completion order.
func collect() (drainx.CompleteFunc[string, string], func() []drainx.Outcome[string, string]) {
	var (
		mu  sync.Mutex
		got []drainx.Outcome[string, string]
	)
	cb := func(_ context.Context, o drainx.Outcome[string, string]) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, o)
		return nil
	}
	return cb, func() []drainx.Outcome[string, string] {
		mu.Lock()
		defer mu.Unlock()
		return append([]drainx.Outcome[string, string](nil), got...)
	}
}

func items(outcomes []drainx.Outcome[string, string]) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Item
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDrain_EmptyInput(t *testing.T) {
	calls := 0
	summary, err := drainx.Drain(context.Background(), nil, identity,
		func(context.Context, drainx.Outcome[string, string]) error {
			calls++
			return nil
		}, quiet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("callback called %d times for empty input", calls)
	}
	if len(summary.Outcomes) != 0 || summary.BatchID == "" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestDrain_SingleItem(t *testing.T) {
	cb, got := collect()
	summary, err := drainx.Drain(context.Background(), []string{"only"}, identity, cb, quiet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outcomes := got()
	if len(outcomes) != 1 || outcomes[0].Value != "only" || !outcomes[0].OK() {
		t.Fatalf("got %+v", outcomes)
	}
	if outcomes[0].Handle == 0 || outcomes[0].Index != 0 {
		t.Fatalf("bad handle/index: %+v", outcomes[0])
	}
	if summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestDrain_CompletionOrderRealClock(t *testing.T) {
	sim := fetch.NewSimulated(nil, 0,
		fetch.WithDuration("A", 300*time.Millisecond),
		fetch.WithDuration("B", 50*time.Millisecond),
		fetch.WithDuration("C", 150*time.Millisecond),
	)
	cb, got := collect()

	start := time.Now()
	if _, err := drainx.Drain(context.Background(), []string{"A", "B", "C"}, sim.Process, cb, quiet()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if order := items(got()); !equal(order, []string{"B", "C", "A"}) {
		t.Fatalf("completion order = %v, want [B C A]", order)
	}
	// Concurrent: bounded by the slowest item, not the sum.
	if elapsed >= 500*time.Millisecond {
		t.Fatalf("drain took %v, items did not run concurrently", elapsed)
	}
}

func drainWithFakeClock(t *testing.T) []string {
	t.Helper()

	clock := clockwork.NewFakeClock()
	sim := fetch.NewSimulated(clock, 0, fetch.WithDurations(map[string]time.Duration{
		"f1": 500 * time.Millisecond,
		"f2": 100 * time.Millisecond,
		"f3": 300 * time.Millisecond,
	}))

	seen := make(chan string, 3)
	done := make(chan error, 1)
	go func() {
		_, err := drainx.Drain(context.Background(), []string{"f1", "f2", "f3"}, sim.Process,
			func(_ context.Context, o drainx.Outcome[string, string]) error {
				seen <- o.Item
				return nil
			}, quiet(), drainx.WithClock(clock))
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := clock.BlockUntilContext(ctx, 3); err != nil {
		t.Fatalf("tasks never started waiting: %v", err)
	}

	var order []string
	for _, step := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond} {
		clock.Advance(step)
		select {
		case item := <-seen:
			order = append(order, item)
		case <-ctx.Done():
			t.Fatalf("no completion after advancing %v", step)
		}
	}

	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return order
}

func TestDrain_DeterministicWithFakeClock(t *testing.T) {
	for run := 0; run < 25; run++ {
		order := drainWithFakeClock(t)
		if !equal(order, []string{"f2", "f3", "f1"}) {
			t.Fatalf("run %d: order = %v, want [f2 f3 f1]", run, order)
		}
	}
}

func TestDrain_SimultaneousCompletions(t *testing.T) {
	const n = 100
	input := make([]string, n)
	for i := range input {
		input[i] = fmt.Sprintf("item-%03d", i)
	}

	gate := make(chan struct{})
	var started sync.WaitGroup
	started.Add(n)
	process := func(_ context.Context, item string) (string, error) {
		started.Done()
		<-gate
		return item, nil
	}

	cb, got := collect()
	result := make(chan error, 1)
	go func() {
		_, err := drainx.Drain(context.Background(), input, process, cb, quiet())
		result <- err
	}()
	started.Wait()
	close(gate)

	if err := <-result; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcomes := got()
	if len(outcomes) != n {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), n)
	}
	handles := make(map[uint64]bool, n)
	names := make(map[string]bool, n)
	for _, o := range outcomes {
		if handles[o.Handle] || names[o.Item] {
			t.Fatalf("outcome delivered twice: %+v", o)
		}
		handles[o.Handle] = true
		names[o.Item] = true
	}
	for _, item := range input {
		if !names[item] {
			t.Fatalf("item %s never delivered", item)
		}
	}
}

func TestDrain_FailureIsolation(t *testing.T) {
	boom := errors.New("boom")
	process := func(_ context.Context, item string) (string, error) {
		if item == "b" {
			return "", boom
		}
		return item, nil
	}

	cb, got := collect()
	summary, err := drainx.Drain(context.Background(), []string{"a", "b", "c"}, process, cb, quiet())
	if err == nil {
		t.Fatal("expected batch error")
	}
	if !errx.HasCode(err, drainx.ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("batch error does not wrap the item error: %v", err)
	}
	if len(got()) != 3 {
		t.Fatalf("callback called %d times, want 3", len(got()))
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("summary = %d ok / %d failed", summary.Succeeded, summary.Failed)
	}
	failures := summary.Failures()
	if len(failures) != 1 || failures[0].Item != "b" || failures[0].Index != 1 {
		t.Fatalf("failures = %+v", failures)
	}

	var e *errx.Error
	if !errx.As(err, &e) || e.Details["failed"] != 1 || e.Details["succeeded"] != 2 {
		t.Fatalf("missing batch details: %+v", e)
	}
}

func TestDrain_PanicBecomesFailure(t *testing.T) {
	process := func(_ context.Context, item string) (string, error) {
		if item == "x" {
			panic("unit of work exploded")
		}
		return item, nil
	}

	summary, err := drainx.Drain(context.Background(), []string{"x", "y"}, process, nil, quiet())
	if !errx.HasCode(err, drainx.ErrBatchFailed) {
		t.Fatalf("expected ErrBatchFailed, got %v", err)
	}
	failures := summary.Failures()
	if len(failures) != 1 || !errx.HasCode(failures[0].Err, asyncx.ErrPanicked) {
		t.Fatalf("failures = %+v", failures)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("succeeded = %d", summary.Succeeded)
	}
}

func TestDrain_MaxInFlight(t *testing.T) {
	var current, peak atomic.Int32
	process := func(_ context.Context, item string) (string, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		current.Add(-1)
		return item, nil
	}

	input := []string{"a", "b", "c", "d", "e", "f", "g"}
	cb, got := collect()
	_, err := drainx.Drain(context.Background(), input, process, cb, quiet(), drainx.WithMaxInFlight(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := peak.Load(); p > 2 {
		t.Fatalf("peak concurrency = %d, want <= 2", p)
	}
	if len(got()) != len(input) {
		t.Fatalf("got %d outcomes, want %d", len(got()), len(input))
	}

	// Launches are FIFO, so handles follow input order.
	for _, o := range got() {
		if o.Handle != uint64(o.Index+1) {
			t.Fatalf("handle %d for index %d", o.Handle, o.Index)
		}
	}
}

func TestDrain_CancelSkipsUnlaunched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	process := func(_ context.Context, item string) (string, error) {
		if item == "a" {
			cancel()
		}
		return item, nil
	}

	var cbCtxErr error
	cb, got := collect()
	wrapped := func(ctx context.Context, o drainx.Outcome[string, string]) error {
		cbCtxErr = ctx.Err()
		return cb(ctx, o)
	}

	summary, err := drainx.Drain(ctx, []string{"a", "b", "c", "d"}, process, wrapped,
		quiet(), drainx.WithMaxInFlight(1))
	if !errx.HasCode(err, drainx.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error does not wrap context.Canceled: %v", err)
	}
	if order := items(got()); !equal(order, []string{"a"}) {
		t.Fatalf("callback saw %v, want [a]", order)
	}
	if !equal(summary.Skipped, []string{"b", "c", "d"}) {
		t.Fatalf("skipped = %v", summary.Skipped)
	}
	if cbCtxErr != nil {
		t.Fatalf("callback context should outlive cancellation, got %v", cbCtxErr)
	}
}

func TestDrain_CancelDrainsInFlight(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var started sync.WaitGroup
	started.Add(3)
	process := func(ctx context.Context, item string) (string, error) {
		started.Done()
		<-ctx.Done()
		return "", ctx.Err()
	}

	cb, got := collect()
	result := make(chan error, 1)
	var summary *drainx.Summary[string, string]
	go func() {
		var err error
		summary, err = drainx.Drain(ctx, []string{"a", "b", "c"}, process, cb, quiet())
		result <- err
	}()
	started.Wait()
	cancel()

	err := <-result
	if !errx.HasCode(err, drainx.ErrCanceled) {
		t.Fatalf("expected ErrCanceled, got %v", err)
	}
	if len(got()) != 3 || summary.Failed != 3 || len(summary.Skipped) != 0 {
		t.Fatalf("in-flight tasks not drained: outcomes=%d summary=%+v", len(got()), summary)
	}
}

func TestDrain_CallbackAbort(t *testing.T) {
	sinkErr := errors.New("sink down")
	calls := 0
	cb := func(context.Context, drainx.Outcome[string, string]) error {
		calls++
		return sinkErr
	}

	summary, err := drainx.Drain(context.Background(), []string{"a", "b", "c"}, identity, cb,
		quiet(), drainx.WithMaxInFlight(1))
	if !errx.HasCode(err, drainx.ErrCallbackFailed) {
		t.Fatalf("expected ErrCallbackFailed, got %v", err)
	}
	if !errors.Is(err, sinkErr) {
		t.Fatalf("error does not wrap the callback error: %v", err)
	}
	if calls != 1 || !summary.Aborted {
		t.Fatalf("calls=%d aborted=%v", calls, summary.Aborted)
	}
	if !equal(summary.Skipped, []string{"b", "c"}) {
		t.Fatalf("skipped = %v", summary.Skipped)
	}
}

func TestDrain_CallbackAbortDrainsInFlight(t *testing.T) {
	process := func(ctx context.Context, item string) (string, error) {
		if item == "fast" {
			return item, nil
		}
		<-ctx.Done()
		return "", ctx.Err()
	}
	calls := 0
	cb := func(context.Context, drainx.Outcome[string, string]) error {
		calls++
		return errors.New("reject")
	}

	summary, err := drainx.Drain(context.Background(), []string{"fast", "slow1", "slow2"}, process, cb, quiet())
	if !errx.HasCode(err, drainx.ErrCallbackFailed) {
		t.Fatalf("expected ErrCallbackFailed, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("callback called %d times after abort", calls)
	}
	if len(summary.Outcomes) != 3 || summary.Failed != 2 {
		t.Fatalf("outcomes=%d failed=%d", len(summary.Outcomes), summary.Failed)
	}
}

func TestDrain_CallbackContinue(t *testing.T) {
	calls := 0
	cb := func(_ context.Context, o drainx.Outcome[string, string]) error {
		calls++
		if o.Item == "b" {
			return errors.New("cannot store b")
		}
		return nil
	}

	summary, err := drainx.Drain(context.Background(), []string{"a", "b", "c"}, identity, cb,
		quiet(), drainx.WithCallbackPolicy(drainx.CallbackContinue))
	if !errx.HasCode(err, drainx.ErrCallbackFailed) {
		t.Fatalf("expected ErrCallbackFailed, got %v", err)
	}
	if errx.HasCode(err, drainx.ErrBatchFailed) {
		t.Fatalf("every item succeeded, batch error should not report item failures: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(summary.CallbackErrors) != 1 || !errx.HasCode(summary.CallbackErrors[0], drainx.ErrCallbackFailed) {
		t.Fatalf("callback errors = %v", summary.CallbackErrors)
	}
	if summary.Aborted || summary.Succeeded != 3 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestDrain_CallbackTimeout(t *testing.T) {
	cb := func(ctx context.Context, _ drainx.Outcome[string, string]) error {
		<-ctx.Done()
		return ctx.Err()
	}

	summary, err := drainx.Drain(context.Background(), []string{"a"}, identity, cb,
		quiet(),
		drainx.WithCallbackPolicy(drainx.CallbackContinue),
		drainx.WithCallbackTimeout(20*time.Millisecond),
	)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(summary.CallbackErrors) != 1 || !errors.Is(summary.CallbackErrors[0], context.DeadlineExceeded) {
		t.Fatalf("callback errors = %v", summary.CallbackErrors)
	}
	if summary.CallbackStalled {
		t.Fatal("a callback that honors its deadline is not stalled")
	}
}

func TestDrain_CallbackTimeoutNeverOverlaps(t *testing.T) {
	var (
		running, peak atomic.Int32
		calls         atomic.Int32
	)
	cb := func(_ context.Context, _ drainx.Outcome[string, string]) error {
		calls.Add(1)
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
		running.Add(-1)
		return nil
	}

	summary, err := drainx.Drain(context.Background(), []string{"a", "b", "c"}, identity, cb,
		quiet(),
		drainx.WithCallbackPolicy(drainx.CallbackContinue),
		drainx.WithCallbackTimeout(10*time.Millisecond),
	)
	if !errx.HasCode(err, drainx.ErrCallbackFailed) {
		t.Fatalf("expected ErrCallbackFailed, got %v", err)
	}
	if p := peak.Load(); p != 1 {
		t.Fatalf("onComplete overlapped with itself: peak=%d", p)
	}
	if c := calls.Load(); c != 1 {
		t.Fatalf("onComplete called %d times after stalling", c)
	}
	if !summary.CallbackStalled || len(summary.Outcomes) != 3 || summary.Succeeded != 3 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.CallbackErrors) != 1 || !errors.Is(summary.CallbackErrors[0], context.DeadlineExceeded) {
		t.Fatalf("callback errors = %v", summary.CallbackErrors)
	}
}

func TestDrainer_Reusable(t *testing.T) {
	d := drainx.New(func(_ context.Context, n int) (int, error) { return n * n, nil }, quiet())

	for _, input := range [][]int{{1, 2, 3}, {4}} {
		summary, err := d.Drain(context.Background(), input, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(summary.Values()) != len(input) {
			t.Fatalf("values = %v", summary.Values())
		}
	}
}

func TestCallbackPolicy_String(t *testing.T) {
	if drainx.CallbackAbort.String() != "abort" || drainx.CallbackContinue.String() != "continue" {
		t.Fatal("unexpected policy names")
	}
}
