package notice

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	domnotice "github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/logger"
)

const msgGenericFailure = "Unable to fetch notices from Commu API."

// escalationKm are the radii tried after the configured default.
var escalationKm = []int{50, 100, 200}

// Config holds search settings.
type Config struct {
	DefaultDistanceKm int
	PageSize          int
	RecentDays        int
}

// Service searches notices around a point, widening the radius until
// something is found.
type Service struct {
	source Source
	cache  Cache
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// New creates a notice search service. source may be nil when no backend is
// configured; every search then fails with upstream_error.
func New(source Source, cache Cache, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{source: source, cache: cache, cfg: cfg, now: time.Now, logger: log}
}

// WithClock replaces the time source used by Recent (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Plan returns the radii to try: [preferredKm] when set, otherwise the
// default followed by the escalation steps, de-duplicated in order.
func (s *Service) Plan(preferredKm int) []int {
	if preferredKm > 0 {
		return []int{preferredKm}
	}
	plan := make([]int, 0, len(escalationKm)+1)
	seen := make(map[int]bool, len(escalationKm)+1)
	for _, km := range append([]int{s.cfg.DefaultDistanceKm}, escalationKm...) {
		if km <= 0 || seen[km] {
			continue
		}
		seen[km] = true
		plan = append(plan, km)
	}
	return plan
}

// Search returns the first non-empty successful result across the distance
// plan, else the first successful empty one, else a failure carrying the
// last error. Backend failures are reported in the result, never returned.
func (s *Service) Search(ctx context.Context, lat, long float64, page, preferredKm int) domnotice.SearchResult {
	if page < 1 {
		page = 1
	}
	plan := s.Plan(preferredKm)
	log := logger.FromContext(ctx, s.logger)

	if s.source == nil || len(plan) == 0 {
		first := s.cfg.DefaultDistanceKm
		if len(plan) > 0 {
			first = plan[0]
		}
		return domnotice.Failed(first, page, s.cfg.PageSize, domain.KindUpstream, msgGenericFailure)
	}

	var (
		firstSuccess *domnotice.SearchResult
		lastFailure  *domnotice.SearchResult
	)
	for _, km := range plan {
		result := s.query(ctx, log, domnotice.Query{
			DistanceKm: km,
			Lat:        lat,
			Long:       long,
			PageSize:   s.cfg.PageSize,
			Page:       page,
		})

		if !result.Successful {
			lastFailure = &result
			continue
		}
		if firstSuccess == nil {
			firstSuccess = &result
		}
		if len(result.Notices) > 0 {
			return result
		}
	}

	if firstSuccess != nil {
		return *firstSuccess
	}
	return *lastFailure
}

// query runs one distance step through the cache.
func (s *Service) query(ctx context.Context, log *zap.Logger, q domnotice.Query) domnotice.SearchResult {
	fields := []zap.Field{
		zap.Int("distance", q.DistanceKm),
		zap.Int("page", q.Page),
		zap.Float64("lat", round4(q.Lat)),
		zap.Float64("long", round4(q.Long)),
	}

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, q); ok {
			log.Info("notice query telemetry",
				append(fields, zap.String("cache", "hit"), zap.Int("total", p.Paginator.Total))...)
			return domnotice.Succeeded(q.DistanceKm, p)
		}
	}

	start := time.Now()
	p, err := s.source.Fetch(ctx, q)
	latency := zap.Int64("latency_ms", time.Since(start).Milliseconds())

	if err != nil {
		kind, message := classify(err)
		log.Warn("notice query failed",
			append(fields, latency, zap.String("error_kind", string(kind)), zap.Error(err))...)
		return domnotice.Failed(q.DistanceKm, q.Page, q.PageSize, kind, message)
	}

	log.Info("notice query telemetry",
		append(fields, zap.String("cache", "miss"), latency, zap.Int("total", p.Paginator.Total))...)

	if s.cache != nil {
		s.cache.Put(ctx, q, p)
	}
	return domnotice.Succeeded(q.DistanceKm, p)
}

// Recent keeps notices created within the configured window, in order.
// Notices without a creation time are dropped.
func (s *Service) Recent(notices []domnotice.Notice) []domnotice.Notice {
	threshold := s.now().AddDate(0, 0, -s.cfg.RecentDays)

	out := make([]domnotice.Notice, 0, len(notices))
	for _, n := range notices {
		if n.CreatedAt == nil || n.CreatedAt.Before(threshold) {
			continue
		}
		out = append(out, n)
	}
	return out
}

func classify(err error) (domain.ErrorKind, string) {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Kind, ue.Message
	}
	return domain.KindOf(err), msgGenericFailure
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
