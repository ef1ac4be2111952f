package location

import (
	"context"

	"github.com/commu-practical/helpmap/internal/domain"
)

// Provider looks a town up in one geocoding service.
// found is false when the service answered but had no usable result.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, town, countryCode string) (domain.Location, bool, error)
}
