package fetch

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Simulated stands in for slow I/O: each item waits a configured duration on
// an injected clock and then returns its own name. Use a clockwork fake clock
// in tests to make completion order deterministic.
type Simulated struct {
	clock     clockwork.Clock
	fallback  time.Duration
	durations map[string]time.Duration
	failures  map[string]error
}

// SimulatedOption configures a Simulated unit of work.
type SimulatedOption func(*Simulated)

// WithDuration sets the latency of one item.
func WithDuration(item string, d time.Duration) SimulatedOption {
	return func(s *Simulated) {
		s.durations[item] = d
	}
}

// WithDurations sets the latency of several items.
func WithDurations(durations map[string]time.Duration) SimulatedOption {
	return func(s *Simulated) {
		for item, d := range durations {
			s.durations[item] = d
		}
	}
}

// WithFailure makes item fail with cause once its latency has elapsed.
// A nil cause still fails, with ErrSimulated alone.
func WithFailure(item string, cause error) SimulatedOption {
	return func(s *Simulated) {
		s.failures[item] = cause
	}
}

// NewSimulated creates a simulated unit of work. Items without an explicit
// duration wait fallback. A nil clock means the real clock.
func NewSimulated(clock clockwork.Clock, fallback time.Duration, opts ...SimulatedOption) *Simulated {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Simulated{
		clock:     clock,
		fallback:  fallback,
		durations: make(map[string]time.Duration),
		failures:  make(map[string]error),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Duration returns the latency configured for item.
func (s *Simulated) Duration(item string) time.Duration {
	if d, ok := s.durations[item]; ok {
		return d
	}
	return s.fallback
}

// Process waits for the item's latency, or for ctx to end.
func (s *Simulated) Process(ctx context.Context, item string) (string, error) {
	select {
	case <-s.clock.After(s.Duration(item)):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	if cause, failed := s.failures[item]; failed {
		return "", fetchErrors.NewWithCause(ErrSimulated, cause).WithDetail("item", item)
	}
	return item, nil
}
