package noticecache

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/db/memory"
	"github.com/commu-practical/helpmap/internal/domain/notice"
)

func testQuery() notice.Query {
	return notice.Query{DistanceKm: 50, Lat: 60.169856, Long: 24.938379, PageSize: 25, Page: 1}
}

func TestKey(t *testing.T) {
	got := Key(testQuery())
	want := "helpmap:notices:60.1699:24.9384:50:25:1"
	if got != want {
		t.Errorf("Key = %q, want %q", got, want)
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	category := "housework"
	page := notice.Page{
		Notices: []notice.Notice{{
			ID:            "n1",
			Title:         "Need help",
			CreatedAt:     &created,
			Position:      &notice.Position{Lat: 60.17, Long: 24.94},
			MainCategory:  &category,
			SubCategories: []string{"cleaning"},
		}},
		Paginator: notice.PaginatorInfo{Count: 1, Total: 4, CurrentPage: 1, LastPage: 4, PerPage: 1, HasMorePages: true},
	}

	r := New(memory.NewStore(), time.Minute, zap.NewNop())
	ctx := context.Background()

	if _, ok := r.Get(ctx, testQuery()); ok {
		t.Fatal("expected miss on empty cache")
	}
	r.Put(ctx, testQuery(), page)

	got, ok := r.Get(ctx, testQuery())
	if !ok {
		t.Fatal("expected hit after put")
	}
	if !reflect.DeepEqual(got, page) {
		t.Errorf("round trip mismatch:\ngot:  %+v\nwant: %+v", got, page)
	}
}

func TestDisabled_NeverTouchesStore(t *testing.T) {
	ms := &mockKVStore{
		getFn: func(context.Context, string) ([]byte, error) {
			t.Fatal("Get must not be called when caching is disabled")
			return nil, nil
		},
		setFn: func(context.Context, string, []byte, time.Duration) error {
			t.Fatal("SetWithTTL must not be called when caching is disabled")
			return nil
		},
	}
	r := New(ms, 0, nil)

	r.Put(context.Background(), testQuery(), notice.Page{})
	if _, ok := r.Get(context.Background(), testQuery()); ok {
		t.Fatal("expected miss when disabled")
	}
}

func TestGet_StoreErrorIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}}
	if _, ok := New(ms, time.Minute, nil).Get(context.Background(), testQuery()); ok {
		t.Fatal("expected miss on store error")
	}
}

func TestGet_CorruptEntryIsMiss(t *testing.T) {
	ms := &mockKVStore{getFn: func(context.Context, string) ([]byte, error) {
		return []byte("{not json"), nil
	}}
	if _, ok := New(ms, time.Minute, nil).Get(context.Background(), testQuery()); ok {
		t.Fatal("expected miss on corrupt entry")
	}
}

func TestPut_UsesTTL(t *testing.T) {
	var gotTTL time.Duration
	ms := &mockKVStore{setFn: func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}}
	New(ms, 3*time.Minute, nil).Put(context.Background(), testQuery(), notice.Page{})

	if gotTTL != 3*time.Minute {
		t.Errorf("ttl = %s, want 3m", gotTTL)
	}
}
