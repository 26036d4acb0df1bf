package report

import (
	"context"

	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
	"github.com/Abraxas-365/fetchdrain/pkg/logx"
)

// Log returns a sink that writes one line per completion. A nil logger uses
// the package default.
func Log[T, R any](logger *logx.Logger) drainx.CompleteFunc[T, R] {
	if logger == nil {
		logger = logx.GetDefaultLogger()
	}
	return func(_ context.Context, o drainx.Outcome[T, R]) error {
		entry := logger.WithFields(logx.Fields{
			"batch_id": o.BatchID,
			"handle":   o.Handle,
			"item":     o.Item,
			"duration": o.Duration.String(),
		})
		if !o.OK() {
			entry.WithError(o.Err).Error("failed")
			return nil
		}
		entry.WithField("value", o.Value).Info("completed")
		return nil
	}
}
