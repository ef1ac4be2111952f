package location

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/logger"
)

// Service resolves free-text town names to coordinates.
type Service struct {
	providers   []Provider
	countryCode string
	logger      *zap.Logger
}

// New creates a resolver. providers are tried in order; nil entries are
// skipped so an unconfigured endpoint can be passed straight through.
func New(countryCode string, log *zap.Logger, providers ...Provider) *Service {
	active := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{providers: active, countryCode: countryCode, logger: log}
}

// Resolve returns the first location found by the provider chain, then the
// offline table. It returns domain.ErrLocationNotFound when nothing matches;
// provider failures are logged and never returned.
func (s *Service) Resolve(ctx context.Context, town string) (domain.Location, error) {
	town = strings.TrimSpace(town)
	if town == "" {
		return domain.Location{}, domain.ErrInvalidTown
	}
	log := logger.FromContext(ctx, s.logger)

	for _, p := range s.providers {
		if loc, ok := s.lookup(ctx, log, p, town); ok {
			return loc, nil
		}
		log.Warn("geocoding provider could not resolve town",
			zap.String("provider", p.Name()),
			zap.String("town", town),
		)
	}

	if loc, ok := fallbackLocation(town); ok {
		log.Info("using fallback coordinates", zap.String("town", town))
		return loc, nil
	}
	return domain.Location{}, fmt.Errorf("resolve %q: %w", town, domain.ErrLocationNotFound)
}

// lookup tries the country-filtered query first, then the unfiltered one.
func (s *Service) lookup(ctx context.Context, log *zap.Logger, p Provider, town string) (domain.Location, bool) {
	codes := []string{""}
	if s.countryCode != "" {
		codes = []string{s.countryCode, ""}
	}

	for _, code := range codes {
		loc, found, err := p.Lookup(ctx, town, code)
		if err != nil {
			log.Warn("geocoding request failed",
				zap.String("provider", p.Name()),
				zap.String("country_code", code),
				zap.Error(err),
			)
			continue
		}
		if found {
			return loc, true
		}
	}
	return domain.Location{}, false
}
