package chi

import (
	"context"

	"github.com/commu-practical/helpmap/internal/usecase/area"
	healthuc "github.com/commu-practical/helpmap/internal/usecase/health"
)

// AreaReporter builds area reports.
type AreaReporter interface {
	Lookup(ctx context.Context, town string, page, distanceKm int) (area.Report, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
