package notice

import (
	"time"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/geo"
)

// Position is a notice's geographic point.
type Position struct {
	Lat  float64
	Long float64
}

// Notice is a community help posting as returned by the notice backend.
// Values are never mutated after parsing.
type Notice struct {
	ID            string
	Title         string
	Description   string
	Type          string
	Side          string
	CreatedAt     *time.Time
	ExpiresAt     *time.Time
	Position      *Position
	MainCategory  *string
	SubCategories []string
}

// DistanceKm returns the great-circle distance from the given point.
// ok is false when the notice carries no position.
func (n Notice) DistanceKm(lat, long float64) (float64, bool) {
	if n.Position == nil {
		return 0, false
	}
	return geo.HaversineKm(lat, long, n.Position.Lat, n.Position.Long), true
}

// PaginatorInfo describes one page of a notice query.
type PaginatorInfo struct {
	Count        int
	Total        int
	CurrentPage  int
	LastPage     int
	PerPage      int
	HasMorePages bool
}

// Normalize enforces CurrentPage >= 1, PerPage >= 1, LastPage >= 1 and Total >= Count.
func (p PaginatorInfo) Normalize() PaginatorInfo {
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 1
	}
	if p.LastPage < 1 {
		p.LastPage = 1
	}
	if p.Count < 0 {
		p.Count = 0
	}
	if p.Total < p.Count {
		p.Total = p.Count
	}
	return p
}

// EmptyPaginator is the zeroed paginator attached to failed searches.
func EmptyPaginator(page, perPage int) PaginatorInfo {
	return PaginatorInfo{CurrentPage: page, LastPage: 1, PerPage: perPage}.Normalize()
}

// Page is one successful backend response.
type Page struct {
	Notices   []Notice
	Paginator PaginatorInfo
}

// Query identifies one notice backend request.
type Query struct {
	DistanceKm int
	Lat        float64
	Long       float64
	PageSize   int
	Page       int
}

// SearchResult is the outcome of a distance-escalating search.
// Successful implies ErrorKind is empty; !Successful implies Notices is empty.
type SearchResult struct {
	Successful   bool
	DistanceKm   int
	Notices      []Notice
	Paginator    PaginatorInfo
	ErrorKind    domain.ErrorKind
	ErrorMessage string
}

// Succeeded builds a successful result from a backend page.
func Succeeded(distanceKm int, p Page) SearchResult {
	return SearchResult{
		Successful: true,
		DistanceKm: distanceKm,
		Notices:    p.Notices,
		Paginator:  p.Paginator,
	}
}

// Failed builds an unsuccessful result with a zeroed paginator.
func Failed(distanceKm, page, perPage int, kind domain.ErrorKind, message string) SearchResult {
	return SearchResult{
		DistanceKm:   distanceKm,
		Paginator:    EmptyPaginator(page, perPage),
		ErrorKind:    kind,
		ErrorMessage: message,
	}
}
