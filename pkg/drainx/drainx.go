package drainx

import (
	"context"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/asyncx"
	"github.com/Abraxas-365/fetchdrain/pkg/logx"
	"github.com/google/uuid"
)

// ProcessFunc is the unit of work launched once per item.
type ProcessFunc[T, R any] func(ctx context.Context, item T) (R, error)

// CompleteFunc is called once per launched item, in completion order, from the
// drain loop. It is never called concurrently with itself, even when a call
// times out.
type CompleteFunc[T, R any] func(ctx context.Context, outcome Outcome[T, R]) error

// Drainer launches a unit of work per item and hands every outcome to a
// callback as soon as it completes.
type Drainer[T, R any] struct {
	process ProcessFunc[T, R]
	opts    Options
}

// New creates a Drainer for process.
func New[T, R any](process ProcessFunc[T, R], opts ...Option) *Drainer[T, R] {
	options := defaultOptions()
	for _, o := range opts {
		o(&options)
	}
	return &Drainer[T, R]{process: process, opts: options}
}

// Drain runs a one-shot drain with a fresh Drainer.
func Drain[T, R any](ctx context.Context, items []T, process ProcessFunc[T, R], onComplete CompleteFunc[T, R], opts ...Option) (*Summary[T, R], error) {
	return New(process, opts...).Drain(ctx, items, onComplete)
}

type pendingTask[T, R any] struct {
	handle  uint64
	index   int
	item    T
	started time.Time
	future  *asyncx.Future[R]
}

// drain is the state of a single Drain call. Only the drain loop touches it.
type drain[T, R any] struct {
	d       *Drainer[T, R]
	items   []T
	workCtx context.Context
	cancel  context.CancelFunc
	batchID string

	active     map[uint64]*pendingTask[T, R]
	completed  chan uint64
	next       int
	nextHandle uint64
	stopped    bool
	// stalled is set once a callback outlives its deadline and grace period.
	stalled bool
}

// Drain launches process for every item and calls onComplete with each
// outcome as it finishes. It returns once every launched task has completed
// and been reported. The Summary is always returned; the error is
// Summary.Err().
//
// Cancelling ctx stops further launches. Tasks already running see the
// cancellation and are still drained and reported; items never launched are
// listed in Summary.Skipped and never reach onComplete.
func (d *Drainer[T, R]) Drain(ctx context.Context, items []T, onComplete CompleteFunc[T, R]) (*Summary[T, R], error) {
	summary := &Summary[T, R]{BatchID: uuid.NewString()}
	if len(items) == 0 {
		return summary, nil
	}

	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	dr := &drain[T, R]{
		d:         d,
		items:     items,
		workCtx:   workCtx,
		cancel:    cancel,
		active:    make(map[uint64]*pendingTask[T, R], len(items)),
		completed: make(chan uint64, len(items)),
		batchID:   summary.BatchID,
	}

	dr.entry().WithFields(logx.Fields{
		"items":         len(items),
		"max_in_flight": d.opts.MaxInFlight,
	}).Info("drain started")

	dr.fill(ctx)
	for len(dr.active) > 0 {
		handle := <-dr.completed
		task, ok := dr.active[handle]
		if !ok {
			continue
		}
		delete(dr.active, handle)

		value, err := task.future.Await()
		outcome := Outcome[T, R]{
			BatchID:  dr.batchID,
			Handle:   task.handle,
			Index:    task.index,
			Item:     task.item,
			Value:    value,
			Err:      err,
			Duration: d.opts.Clock.Since(task.started),
		}
		summary.record(outcome)
		dr.logOutcome(outcome)

		if onComplete != nil && !summary.Aborted && !summary.CallbackStalled {
			if cbErr := dr.complete(ctx, onComplete, outcome); cbErr != nil {
				summary.CallbackErrors = append(summary.CallbackErrors, cbErr)
				entry := dr.entry().WithError(cbErr).WithField("item", outcome.Item)
				if dr.stalled {
					summary.CallbackStalled = true
					entry.Error("completion callback stalled, no further outcomes will be reported")
				}
				if d.opts.CallbackPolicy == CallbackAbort {
					entry.Error("completion callback failed, aborting drain")
					summary.Aborted = true
					dr.stopped = true
					dr.cancel()
				} else {
					entry.Warn("completion callback failed")
				}
			}
		}

		dr.fill(ctx)
	}

	if dr.next < len(items) {
		summary.Skipped = append(summary.Skipped, items[dr.next:]...)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && (len(summary.Skipped) > 0 || summary.Failed > 0) {
		summary.canceled = ctxErr
	}

	err := summary.Err()
	entry := dr.entry().WithFields(logx.Fields{
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
		"skipped":   len(summary.Skipped),
	})
	if err != nil {
		entry.WithError(err).Warn("drain finished with errors")
	} else {
		entry.Info("drain finished")
	}
	return summary, err
}

// fill launches items in input order while there is room in the ActiveSet.
func (dr *drain[T, R]) fill(ctx context.Context) {
	limit := dr.d.opts.MaxInFlight
	for !dr.stopped && dr.next < len(dr.items) {
		if limit > 0 && len(dr.active) >= limit {
			return
		}
		if ctx.Err() != nil {
			dr.stopped = true
			dr.entry().WithField("remaining", len(dr.items)-dr.next).Warn("drain canceled, skipping unlaunched items")
			return
		}
		dr.launch()
	}
}

func (dr *drain[T, R]) launch() {
	index := dr.next
	dr.next++
	dr.nextHandle++

	handle := dr.nextHandle
	item := dr.items[index]
	task := &pendingTask[T, R]{
		handle:  handle,
		index:   index,
		item:    item,
		started: dr.d.opts.Clock.Now(),
	}
	dr.active[handle] = task

	process, workCtx, completed := dr.d.process, dr.workCtx, dr.completed
	task.future = asyncx.RunThen(
		func() (R, error) { return process(workCtx, item) },
		func() { completed <- handle },
	)

	dr.entry().WithFields(logx.Fields{
		"handle": handle,
		"item":   item,
	}).Debug("task launched")
}

// complete runs onComplete under the callback timeout. After cancellation the
// callback gets a context detached from it, so sinks can still record the
// in-flight outcomes.
//
// A callback that misses its deadline gets one more CallbackTimeout to return
// after its context is cancelled. If it is still running after that, the drain
// marks the sink stalled and never calls onComplete again, so two calls never
// overlap. The stalled call is abandoned and may outlive Drain.
func (dr *drain[T, R]) complete(ctx context.Context, onComplete CompleteFunc[T, R], outcome Outcome[T, R]) error {
	cbCtx := ctx
	if ctx.Err() != nil {
		cbCtx = context.WithoutCancel(ctx)
	}

	var err error
	if timeout := dr.d.opts.CallbackTimeout; timeout <= 0 {
		_, err = asyncx.WithTimeout(cbCtx, 0, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, onComplete(ctx, outcome)
		})
	} else {
		err = dr.completeWithin(cbCtx, timeout, onComplete, outcome)
	}
	if err != nil {
		return drainErrors.NewWithCause(ErrCallbackFailed, err).
			WithDetail("item", outcome.Item).
			WithDetail("handle", outcome.Handle)
	}
	return nil
}

func (dr *drain[T, R]) completeWithin(ctx context.Context, timeout time.Duration, onComplete CompleteFunc[T, R], outcome Outcome[T, R]) error {
	cbCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fut := asyncx.Run(func() (struct{}, error) {
		return struct{}{}, onComplete(cbCtx, outcome)
	})

	select {
	case <-fut.Done():
		_, err := fut.Await()
		return err
	case <-cbCtx.Done():
	}

	grace := time.NewTimer(timeout)
	defer grace.Stop()
	select {
	case <-fut.Done():
		_, err := fut.Await()
		return err
	case <-grace.C:
		dr.stalled = true
		return cbCtx.Err()
	}
}

func (dr *drain[T, R]) entry() *logx.Entry {
	return dr.d.opts.Logger.WithField("batch_id", dr.batchID)
}

func (dr *drain[T, R]) logOutcome(o Outcome[T, R]) {
	entry := dr.entry().WithFields(logx.Fields{
		"handle":   o.Handle,
		"item":     o.Item,
		"duration": o.Duration.String(),
	})
	if o.OK() {
		entry.Debug("task completed")
		return
	}
	entry.WithError(o.Err).Warn("task failed")
}
