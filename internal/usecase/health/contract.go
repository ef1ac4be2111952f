package health

import "context"

// DBPinger checks cache/lock store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// GeneratorChecker checks summary provider availability.
type GeneratorChecker interface {
	HealthCheck(ctx context.Context) error
}
