package report

import (
	"context"
	"errors"

	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
)

// Chain fans each outcome out to every sink in order. All sinks run even when
// one fails; their errors are joined.
func Chain[T, R any](sinks ...drainx.CompleteFunc[T, R]) drainx.CompleteFunc[T, R] {
	return func(ctx context.Context, o drainx.Outcome[T, R]) error {
		var errs []error
		for _, sink := range sinks {
			if sink == nil {
				continue
			}
			if err := sink(ctx, o); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
