package noticecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/db"
	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/metrics"
)

const cacheName = "notices"

var keyPrefix = domain.KeyPrefix + "notices:"

// store is the consumer interface for the notice cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Repo caches successful notice pages per query.
type Repo struct {
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a notice cache. ttl <= 0 disables caching entirely.
func New(s store, ttl time.Duration, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, ttl: ttl, logger: logger}
}

// Enabled reports whether lookups and writes go to the store.
func (r *Repo) Enabled() bool {
	return r.ttl > 0
}

// Key returns the cache key for q. Coordinates are rounded to 4 decimals.
func Key(q notice.Query) string {
	return fmt.Sprintf("%s%.4f:%.4f:%d:%d:%d", keyPrefix, q.Lat, q.Long, q.DistanceKm, q.PageSize, q.Page)
}

// Get returns the cached page for q. Store or decode failures count as a miss.
func (r *Repo) Get(ctx context.Context, q notice.Query) (notice.Page, bool) {
	if !r.Enabled() {
		return notice.Page{}, false
	}
	key := Key(q)

	data, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			r.logger.Warn("Failed to get cached notices", zap.String("key", key), zap.Error(err))
			metrics.ObserveCache(cacheName, "error")
		} else {
			metrics.ObserveCache(cacheName, "miss")
		}
		return notice.Page{}, false
	}

	var dto pageDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		r.logger.Warn("Failed to parse cached notices", zap.String("key", key), zap.Error(err))
		metrics.ObserveCache(cacheName, "error")
		return notice.Page{}, false
	}

	metrics.ObserveCache(cacheName, "hit")
	return dto.toPage(), true
}

// Put stores a successful page. Failures are logged, never returned.
func (r *Repo) Put(ctx context.Context, q notice.Query, p notice.Page) {
	if !r.Enabled() {
		return
	}
	key := Key(q)

	data, err := json.Marshal(fromPage(p))
	if err != nil {
		r.logger.Warn("Failed to encode notices for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to cache notices", zap.String("key", key), zap.Error(err))
	}
}
