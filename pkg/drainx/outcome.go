package drainx

import (
	"errors"
	"time"
)

// Outcome is what onComplete receives for one finished task: the result or
// the error of its unit of work, never both.
type Outcome[T, R any] struct {
	// BatchID identifies the drain that produced the outcome.
	BatchID string
	// Handle is the task handle, unique within a drain and increasing in launch order.
	Handle uint64
	// Index is the item's position in the input.
	Index int
	// Item is the work item as submitted.
	Item T
	// Value is the result when Err is nil.
	Value R
	// Err is the failure of the unit of work.
	Err error
	// Duration is the time between launch and completion.
	Duration time.Duration
}

// OK reports whether the unit of work succeeded.
func (o Outcome[T, R]) OK() bool { return o.Err == nil }

// Summary accounts for every item of a drain.
type Summary[T, R any] struct {
	BatchID string
	// Outcomes holds one entry per launched item, in completion order.
	Outcomes []Outcome[T, R]
	// Skipped holds items never launched because the drain was canceled or aborted.
	Skipped []T
	// CallbackErrors holds onComplete failures.
	CallbackErrors []error
	Succeeded      int
	Failed         int
	// Aborted is set when a callback error stopped the drain.
	Aborted bool
	// CallbackStalled is set when a timed-out callback did not return within
	// its grace period. Later outcomes are recorded here but not reported.
	CallbackStalled bool

	canceled error
}

func (s *Summary[T, R]) record(o Outcome[T, R]) {
	s.Outcomes = append(s.Outcomes, o)
	if o.OK() {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Failures returns the failed outcomes in completion order.
func (s *Summary[T, R]) Failures() []Outcome[T, R] {
	var out []Outcome[T, R]
	for _, o := range s.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Values returns the successful results in completion order.
func (s *Summary[T, R]) Values() []R {
	out := make([]R, 0, s.Succeeded)
	for _, o := range s.Outcomes {
		if o.OK() {
			out = append(out, o.Value)
		}
	}
	return out
}

// Err is the batch-level error: nil when every item succeeded and every
// callback returned nil. Abort and cancellation take precedence over item
// failures; the item failures stay reachable through errors.Is/As. When every
// item succeeded but callbacks failed, the error is ErrCallbackFailed.
func (s *Summary[T, R]) Err() error {
	var itemErrs []error
	for _, o := range s.Failures() {
		itemErrs = append(itemErrs, drainErrors.NewWithCause(ErrItemFailed, o.Err).
			WithDetail("item", o.Item).
			WithDetail("handle", o.Handle))
	}
	causes := append(itemErrs, s.CallbackErrors...)

	details := map[string]interface{}{
		"batch_id":  s.BatchID,
		"succeeded": s.Succeeded,
		"failed":    s.Failed,
		"skipped":   len(s.Skipped),
	}

	switch {
	case s.Aborted:
		return drainErrors.NewWithCause(ErrCallbackFailed, errors.Join(causes...)).WithDetails(details)
	case s.canceled != nil:
		return drainErrors.NewWithCause(ErrCanceled, errors.Join(append([]error{s.canceled}, causes...)...)).WithDetails(details)
	case len(itemErrs) > 0:
		return drainErrors.NewWithCause(ErrBatchFailed, errors.Join(causes...)).WithDetails(details)
	case len(causes) > 0:
		return drainErrors.NewWithCause(ErrCallbackFailed, errors.Join(causes...)).WithDetails(details)
	}
	return nil
}
