package area

import (
	"context"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
)

// Resolver turns a town name into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, town string) (domain.Location, error)
}

// Searcher finds notices around a point.
type Searcher interface {
	Search(ctx context.Context, lat, long float64, page, preferredKm int) notice.SearchResult
	Recent(notices []notice.Notice) []notice.Notice
}

// Summarizer produces the area summary text.
type Summarizer interface {
	Summarize(ctx context.Context, notices []notice.Notice, town string) string
}
