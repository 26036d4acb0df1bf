package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/fetchdrain/pkg/drainx"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// Commander is the subset of *redis.Client the Redis log needs.
type Commander interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// OutcomesKey is the list holding a batch's completion records.
func OutcomesKey(batchID string) string { return fmt.Sprintf("drain:%s:outcomes", batchID) }

// RedisLog appends one JSON Record per completion to a Redis list keyed by
// batch, so the completion order of a drain can be read back later.
type RedisLog[T, R any] struct {
	rdb   Commander
	ttl   time.Duration
	clock clockwork.Clock
}

// RedisLogOption configures a RedisLog.
type RedisLogOption func(*redisLogOptions)

type redisLogOptions struct {
	ttl   time.Duration
	clock clockwork.Clock
}

// WithTTL expires the batch list ttl after its latest append. Zero keeps it forever.
func WithTTL(ttl time.Duration) RedisLogOption {
	return func(o *redisLogOptions) { o.ttl = ttl }
}

// WithClock sets the clock used for CompletedAt.
func WithClock(c clockwork.Clock) RedisLogOption {
	return func(o *redisLogOptions) {
		if c != nil {
			o.clock = c
		}
	}
}

// NewRedisLog creates a Redis completion log.
func NewRedisLog[T, R any](rdb Commander, opts ...RedisLogOption) *RedisLog[T, R] {
	o := redisLogOptions{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisLog[T, R]{rdb: rdb, ttl: o.ttl, clock: o.clock}
}

// Complete is a drainx.CompleteFunc.
func (l *RedisLog[T, R]) Complete(ctx context.Context, o drainx.Outcome[T, R]) error {
	rec, err := NewRecord(o, l.clock.Now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return reportErrors.NewWithCause(ErrMarshal, err).WithDetail("item", rec.Item)
	}

	key := OutcomesKey(o.BatchID)
	if err := l.rdb.RPush(ctx, key, data).Err(); err != nil {
		return reportErrors.NewWithCause(ErrAppend, err).
			WithDetail("key", key).
			WithDetail("item", rec.Item)
	}
	if l.ttl > 0 {
		if err := l.rdb.Expire(ctx, key, l.ttl).Err(); err != nil {
			return reportErrors.NewWithCause(ErrAppend, err).WithDetail("key", key)
		}
	}
	return nil
}

// History reads back a batch's records in completion order.
func (l *RedisLog[T, R]) History(ctx context.Context, batchID string) ([]Record, error) {
	key := OutcomesKey(batchID)
	raw, err := l.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, reportErrors.NewWithCause(ErrHistory, err).WithDetail("key", key)
	}

	records := make([]Record, 0, len(raw))
	for i, s := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, reportErrors.NewWithCause(ErrUnmarshal, err).
				WithDetail("key", key).
				WithDetail("position", i)
		}
		records = append(records, rec)
	}
	return records, nil
}
