package summarycache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/db"
	"github.com/commu-practical/helpmap/internal/metrics"
)

const cacheName = "summary"

// store is the consumer interface for the summary cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo stores generated summaries under content-addressed keys.
type Repo struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a summary cache.
func New(s store, ttl time.Duration, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, ttl: ttl, logger: logger}
}

// Get returns a cached non-empty summary. Store failures count as a miss.
func (r *Repo) Get(ctx context.Context, key string) (string, bool) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to get cached summary", zap.String("key", key), zap.Error(err))
			metrics.ObserveCache(cacheName, "error")
		} else {
			metrics.ObserveCache(cacheName, "miss")
		}
		return "", false
	}
	if len(data) == 0 {
		metrics.ObserveCache(cacheName, "miss")
		return "", false
	}

	metrics.ObserveCache(cacheName, "hit")
	return string(data), true
}

// Put stores a summary with the configured TTL. Failures are logged, never returned.
func (r *Repo) Put(ctx context.Context, key, summary string) {
	if err := r.store.SetWithTTL(ctx, key, []byte(summary), r.ttl); err != nil {
		r.logger.Warn("Failed to cache summary", zap.String("key", key), zap.Error(err))
	}
}
