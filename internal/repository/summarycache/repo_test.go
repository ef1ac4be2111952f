package summarycache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commu-practical/helpmap/internal/db"
	"github.com/commu-practical/helpmap/internal/db/memory"
)

type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func TestPutGet(t *testing.T) {
	r := New(memory.NewStore(), time.Hour, nil)
	ctx := context.Background()

	if _, ok := r.Get(ctx, "helpmap:summary:abc"); ok {
		t.Fatal("expected miss")
	}
	r.Put(ctx, "helpmap:summary:abc", "Most posts ask for moving help.")

	got, ok := r.Get(ctx, "helpmap:summary:abc")
	if !ok || got != "Most posts ask for moving help." {
		t.Fatalf("Get = %q, %v", got, ok)
	}
}

func TestGet_EmptyValueIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) { return []byte{}, nil }}
	if _, ok := New(ms, time.Hour, nil).Get(context.Background(), "k"); ok {
		t.Fatal("expected miss for empty value")
	}
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("i/o timeout")}
	}}
	if _, ok := New(ms, time.Hour, nil).Get(context.Background(), "k"); ok {
		t.Fatal("expected miss on store error")
	}
}

func TestPut_TTLAndErrorSwallowed(t *testing.T) {
	var gotTTL time.Duration
	ms := &mockKVStore{setFn: func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return errors.New("READONLY")
	}}
	New(ms, 6*time.Hour, nil).Put(context.Background(), "k", "v")

	if gotTTL != 6*time.Hour {
		t.Errorf("ttl = %s, want 6h", gotTTL)
	}
}
