package summary

import (
	"context"
	"time"

	"github.com/commu-practical/helpmap/internal/repository/lock"
)

// Cache stores generated summaries by content-addressed key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Put(ctx context.Context, key, summary string)
}

// Locker serializes generation per key across processes.
type Locker interface {
	Acquire(ctx context.Context, name string, ttl, wait time.Duration) (*lock.Lease, error)
}

// Generator turns a prompt into free text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
