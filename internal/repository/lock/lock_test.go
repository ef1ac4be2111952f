package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/commu-practical/helpmap/internal/db/memory"
	"github.com/commu-practical/helpmap/internal/domain"
)

type mockStore struct {
	setNXFn      func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	delIfEqualFn func(ctx context.Context, key, value string) (bool, error)
}

func (m *mockStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return m.setNXFn(ctx, key, value, ttl)
}

func (m *mockStore) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	if m.delIfEqualFn != nil {
		return m.delIfEqualFn(ctx, key, value)
	}
	return true, nil
}

func TestAcquireRelease(t *testing.T) {
	store := memory.NewStore()
	m := New(store, nil).WithPollInterval(5 * time.Millisecond)
	ctx := context.Background()

	lease, err := m.Acquire(ctx, "lock:k", 5*time.Second, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := m.Acquire(ctx, "lock:k", 5*time.Second, 20*time.Millisecond); !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout while held, got %v", err)
	}

	lease.Release(ctx)
	lease.Release(ctx) // idempotent

	again, err := m.Acquire(ctx, "lock:k", 5*time.Second, 0)
	if err != nil {
		t.Fatalf("expected lock to be free after release, got %v", err)
	}
	again.Release(ctx)
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	m := New(memory.NewStore(), nil).WithPollInterval(5 * time.Millisecond)
	ctx := context.Background()

	lease, err := m.Acquire(ctx, "lock:k", 5*time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	go func() {
		time.Sleep(30 * time.Millisecond)
		lease.Release(ctx)
	}()

	second, err := m.Acquire(ctx, "lock:k", 5*time.Second, time.Second)
	if err != nil {
		t.Fatalf("expected waiter to acquire after release, got %v", err)
	}
	second.Release(ctx)
}

func TestAcquire_StoreErrorsTimeOut(t *testing.T) {
	var calls atomic.Int32
	ms := &mockStore{setNXFn: func(context.Context, string, string, time.Duration) (bool, error) {
		calls.Add(1)
		return false, errors.New("connection refused")
	}}
	m := New(ms, nil).WithPollInterval(5 * time.Millisecond)

	_, err := m.Acquire(context.Background(), "lock:k", time.Second, 30*time.Millisecond)
	if !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if calls.Load() < 2 {
		t.Errorf("expected polling to continue after store errors, got %d calls", calls.Load())
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	ms := &mockStore{setNXFn: func(context.Context, string, string, time.Duration) (bool, error) {
		return false, nil
	}}
	m := New(ms, nil).WithPollInterval(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, err := m.Acquire(ctx, "lock:k", time.Second, time.Minute); !errors.Is(err, domain.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("cancelled context did not stop the wait")
	}
}

func TestRelease_UsesOwnerToken(t *testing.T) {
	var acquiredToken, releasedToken string
	ms := &mockStore{
		setNXFn: func(_ context.Context, _, value string, _ time.Duration) (bool, error) {
			acquiredToken = value
			return true, nil
		},
		delIfEqualFn: func(_ context.Context, _, value string) (bool, error) {
			releasedToken = value
			return true, nil
		},
	}
	m := New(ms, nil)

	ctx, cancel := context.WithCancel(context.Background())
	lease, err := m.Acquire(ctx, "lock:k", time.Second, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cancel()
	lease.Release(ctx)

	if acquiredToken == "" || acquiredToken != releasedToken {
		t.Errorf("release token %q does not match acquire token %q", releasedToken, acquiredToken)
	}
}

func TestAcquire_MutualExclusion(t *testing.T) {
	m := New(memory.NewStore(), nil).WithPollInterval(time.Millisecond)

	var (
		wg      sync.WaitGroup
		holders atomic.Int32
		maxSeen atomic.Int32
	)
	for n := 0; n < 10; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lease, err := m.Acquire(context.Background(), "lock:k", time.Second, time.Second)
			if err != nil {
				return
			}
			n := holders.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			holders.Add(-1)
			lease.Release(context.Background())
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxSeen.Load())
	}
}
