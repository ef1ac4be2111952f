package db

import (
	"context"
	"time"
)

// Store is the shared cache and lock backend facade.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	Locker
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations with expiry.
type KVStore interface {
	// Get returns ErrKeyNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Locker provides the primitives for a token-guarded distributed lock.
type Locker interface {
	// SetNX stores value at key only if the key does not exist.
	// Returns false without error when the key is already held.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// DelIfEqual deletes key only if it still holds value.
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}
