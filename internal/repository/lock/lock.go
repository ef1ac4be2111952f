// Package lock implements a token-guarded distributed mutex on top of the
// shared store's SET NX / compare-and-delete primitives.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/metrics"
)

const defaultPollInterval = 100 * time.Millisecond

// store is the consumer interface for the lock manager (ISP).
type store interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}

// Manager acquires named locks.
type Manager struct {
	store        store
	pollInterval time.Duration
	logger       *zap.Logger
}

// New creates a lock manager.
func New(s store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: s, pollInterval: defaultPollInterval, logger: logger}
}

// WithPollInterval overrides how often a waiter retries SET NX (tests).
func (m *Manager) WithPollInterval(d time.Duration) *Manager {
	m.pollInterval = d
	return m
}

// Lease is a held lock. Release is safe to call more than once.
type Lease struct {
	m     *Manager
	name  string
	token string
}

// Acquire tries to take name, polling until wait elapses. The lock expires
// after ttl even if never released. Returns domain.ErrLockTimeout when the
// wait bound is exceeded; store errors are logged and polling continues.
func (m *Manager) Acquire(ctx context.Context, name string, ttl, wait time.Duration) (*Lease, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := m.store.SetNX(ctx, name, token, ttl)
		switch {
		case err != nil:
			m.logger.Warn("Failed to acquire lock", zap.String("lock", name), zap.Error(err))
		case ok:
			metrics.SummaryLockTotal.WithLabelValues("acquired").Inc()
			return &Lease{m: m, name: name, token: token}, nil
		}

		if !time.Now().Before(deadline) {
			metrics.SummaryLockTotal.WithLabelValues("timeout").Inc()
			return nil, domain.ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			metrics.SummaryLockTotal.WithLabelValues("timeout").Inc()
			return nil, domain.ErrLockTimeout
		case <-ticker.C:
		}
	}
}

// Release deletes the lock if this lease still owns it. It runs detached from
// the caller's cancellation so a cancelled request still frees the lock.
func (l *Lease) Release(ctx context.Context) {
	if l == nil || l.token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	released, err := l.m.store.DelIfEqual(ctx, l.name, l.token)
	if err != nil {
		l.m.logger.Warn("Failed to release lock", zap.String("lock", l.name), zap.Error(err))
	} else if !released {
		l.m.logger.Warn("Lock expired before release", zap.String("lock", l.name))
	}
	l.token = ""
}
