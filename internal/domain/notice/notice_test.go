package notice

import (
	"math"
	"testing"

	"github.com/commu-practical/helpmap/internal/domain"
)

func TestPaginatorInfo_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PaginatorInfo
		want PaginatorInfo
	}{
		{
			name: "valid unchanged",
			in:   PaginatorInfo{Count: 3, Total: 10, CurrentPage: 2, LastPage: 4, PerPage: 3, HasMorePages: true},
			want: PaginatorInfo{Count: 3, Total: 10, CurrentPage: 2, LastPage: 4, PerPage: 3, HasMorePages: true},
		},
		{
			name: "zero value",
			in:   PaginatorInfo{},
			want: PaginatorInfo{CurrentPage: 1, LastPage: 1, PerPage: 1},
		},
		{
			name: "total below count",
			in:   PaginatorInfo{Count: 5, Total: 2, CurrentPage: 1, LastPage: 1, PerPage: 25},
			want: PaginatorInfo{Count: 5, Total: 5, CurrentPage: 1, LastPage: 1, PerPage: 25},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFailed_ZeroedPaginator(t *testing.T) {
	r := Failed(200, 3, 25, domain.KindUpstream, "boom")

	if r.Successful || len(r.Notices) != 0 {
		t.Fatalf("expected failed empty result, got %+v", r)
	}
	want := PaginatorInfo{Count: 0, Total: 0, CurrentPage: 3, LastPage: 1, PerPage: 25}
	if r.Paginator != want {
		t.Errorf("paginator = %+v, want %+v", r.Paginator, want)
	}
	if r.DistanceKm != 200 || r.ErrorKind != domain.KindUpstream || r.ErrorMessage != "boom" {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestSucceeded(t *testing.T) {
	p := Page{Notices: []Notice{{ID: "1"}}, Paginator: PaginatorInfo{Count: 1, Total: 1, CurrentPage: 1, LastPage: 1, PerPage: 25}}
	r := Succeeded(50, p)

	if !r.Successful || r.ErrorKind != "" || r.DistanceKm != 50 || len(r.Notices) != 1 {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestNotice_DistanceKm(t *testing.T) {
	n := Notice{Position: &Position{Lat: 61.4978, Long: 23.7610}}
	d, ok := n.DistanceKm(60.1699, 24.9384)
	if !ok || math.Abs(d-160) > 5 {
		t.Errorf("DistanceKm = %.1f, %v", d, ok)
	}

	if _, ok := (Notice{}).DistanceKm(60, 24); ok {
		t.Error("expected ok=false without position")
	}
}
