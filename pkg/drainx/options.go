package drainx

import (
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/logx"
	"github.com/jonboulle/clockwork"
)

// CallbackPolicy decides what a failing onComplete does to the rest of the drain.
type CallbackPolicy int

const (
	// CallbackAbort stops launching, cancels in-flight work and drains the
	// remaining tasks without calling onComplete again. The default.
	CallbackAbort CallbackPolicy = iota
	// CallbackContinue logs the error, keeps it in the Summary and carries on.
	CallbackContinue
)

func (p CallbackPolicy) String() string {
	if p == CallbackContinue {
		return "continue"
	}
	return "abort"
}

// Options configures a Drainer.
type Options struct {
	// MaxInFlight bounds the ActiveSet. Zero launches every item up front.
	MaxInFlight int
	// CallbackPolicy applies when onComplete returns an error.
	CallbackPolicy CallbackPolicy
	// CallbackTimeout bounds each onComplete call. Zero, the default, means
	// no bound: a sink that never returns blocks the drain. Callers with sinks
	// doing I/O should set one.
	CallbackTimeout time.Duration
	// Clock timestamps launches and completions.
	Clock clockwork.Clock
	// Logger receives per-task and batch logs.
	Logger *logx.Logger
}

func defaultOptions() Options {
	return Options{
		Clock:  clockwork.NewRealClock(),
		Logger: logx.GetDefaultLogger(),
	}
}

// Option is a functional option for configuring a Drainer.
type Option func(*Options)

// WithMaxInFlight bounds how many units of work run at once.
func WithMaxInFlight(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxInFlight = n
		}
	}
}

// WithCallbackPolicy sets the callback failure policy.
func WithCallbackPolicy(p CallbackPolicy) Option {
	return func(o *Options) {
		o.CallbackPolicy = p
	}
}

// WithCallbackTimeout bounds each onComplete call. A call still running one
// more timeout after its deadline marks the sink stalled, and the drain stops
// calling onComplete.
func WithCallbackTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CallbackTimeout = d
	}
}

// WithClock sets the clock used for task durations.
func WithClock(c clockwork.Clock) Option {
	return func(o *Options) {
		if c != nil {
			o.Clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logx.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
