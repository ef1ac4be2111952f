package notice

import (
	"context"

	domnotice "github.com/commu-practical/helpmap/internal/domain/notice"
)

// Source runs one notice backend query.
type Source interface {
	Fetch(ctx context.Context, q domnotice.Query) (domnotice.Page, error)
}

// Cache stores successful pages per query.
type Cache interface {
	Get(ctx context.Context, q domnotice.Query) (domnotice.Page, bool)
	Put(ctx context.Context, q domnotice.Query, p domnotice.Page)
}
