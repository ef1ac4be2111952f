package goredis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/commu-practical/helpmap/internal/db"
)

func TestNewStore_RequiresAddr(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

// unreachableStore points at a reserved TEST-NET address so every command fails fast.
func unreachableStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Addr: "192.0.2.1:6379", DialTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestStore_ErrorsAreWrapped(t *testing.T) {
	s := unreachableStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	checks := map[string]error{
		db.OpPing: s.Ping(ctx),
		db.OpSet:  s.SetWithTTL(ctx, "k", []byte("v"), time.Second),
		db.OpDel:  s.Del(ctx, "k"),
	}
	_, err := s.Get(ctx, "k")
	checks[db.OpGet] = err
	_, err = s.SetNX(ctx, "k", "v", time.Second)
	checks[db.OpSetNX] = err
	_, err = s.DelIfEqual(ctx, "k", "v")
	checks[db.OpEval] = err

	for op, err := range checks {
		var dbErr *db.Error
		if !errors.As(err, &dbErr) {
			t.Errorf("%s: expected *db.Error, got %v", op, err)
			continue
		}
		if dbErr.Op != op {
			t.Errorf("expected op %q, got %q", op, dbErr.Op)
		}
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s := unreachableStore(t)
	if err := s.WaitForReady(context.Background(), 150*time.Millisecond); err == nil {
		t.Fatal("expected timeout error")
	}
}
