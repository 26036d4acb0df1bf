package report

import (
	"context"
	"sync"

	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
)

// Recorder keeps every outcome in memory, in the order it was reported.
type Recorder[T, R any] struct {
	mu       sync.Mutex
	outcomes []drainx.Outcome[T, R]
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T, R any]() *Recorder[T, R] {
	return &Recorder[T, R]{}
}

// Complete is a drainx.CompleteFunc.
func (r *Recorder[T, R]) Complete(_ context.Context, o drainx.Outcome[T, R]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

// Outcomes returns a copy of the recorded outcomes.
func (r *Recorder[T, R]) Outcomes() []drainx.Outcome[T, R] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]drainx.Outcome[T, R](nil), r.outcomes...)
}

// Items returns the recorded items in completion order.
func (r *Recorder[T, R]) Items() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]T, len(r.outcomes))
	for i, o := range r.outcomes {
		items[i] = o.Item
	}
	return items
}

// Len returns how many outcomes were recorded.
func (r *Recorder[T, R]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}
