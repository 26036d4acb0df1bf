package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
)

// Record is the serialized form of one completion.
type Record struct {
	BatchID     string          `json:"batch_id"`
	Handle      uint64          `json:"handle"`
	Index       int             `json:"index"`
	Item        string          `json:"item"`
	OK          bool            `json:"ok"`
	Value       json.RawMessage `json:"value,omitempty"`
	Error       string          `json:"error,omitempty"`
	DurationMS  int64           `json:"duration_ms"`
	CompletedAt time.Time       `json:"completed_at"`
}

// NewRecord converts an outcome into a Record. Values of failed outcomes are
// dropped.
func NewRecord[T, R any](o drainx.Outcome[T, R], at time.Time) (Record, error) {
	rec := Record{
		BatchID:     o.BatchID,
		Handle:      o.Handle,
		Index:       o.Index,
		Item:        fmt.Sprint(o.Item),
		OK:          o.OK(),
		DurationMS:  o.Duration.Milliseconds(),
		CompletedAt: at.UTC(),
	}
	if !o.OK() {
		rec.Error = o.Err.Error()
		return rec, nil
	}

	value, err := json.Marshal(o.Value)
	if err != nil {
		return Record{}, reportErrors.NewWithCause(ErrMarshal, err).WithDetail("item", rec.Item)
	}
	rec.Value = value
	return rec, nil
}
