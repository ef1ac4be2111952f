package area

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/domain/notice"
	"github.com/commu-practical/helpmap/internal/logger"
)

// Outcome classifies a report for the caller.
type Outcome string

const (
	// OutcomeOK means notices were found and summarized.
	OutcomeOK Outcome = "ok"
	// OutcomeEmpty means the backend answered with no notices at any distance.
	OutcomeEmpty Outcome = "empty"
	// OutcomeUpstreamFailure means every notice query failed.
	OutcomeUpstreamFailure Outcome = "upstream_failure"
)

// Summary basis values.
const (
	BasisRecent = "recent"
	BasisAll    = "all"
)

// Caller-facing messages.
const (
	MsgAuthFailure     = "Commu API authentication failed. Refresh COMMU_BEARER_TOKEN and try again."
	MsgNetworkFailure  = "Network error when contacting Commu API. Please try again shortly."
	MsgUpstreamFailure = "Unable to fetch help posts from Commu API right now. Please try again."
	MsgEmpty           = "No help posts found for this area."
	MsgNotFound        = "No geocoding result found for that town."
)

// Report is the full answer for one town lookup.
type Report struct {
	Town             string
	Location         domain.Location
	Result           notice.SearchResult
	Recent           []notice.Notice
	Summary          string
	SummaryBasis     string
	SummaryPostCount int
	Message          string
	Outcome          Outcome
}

// Service orchestrates geocoding, notice search and summarization.
type Service struct {
	resolver   Resolver
	searcher   Searcher
	summarizer Summarizer
	logger     *zap.Logger
}

// New creates an area report service.
func New(resolver Resolver, searcher Searcher, summarizer Summarizer, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{resolver: resolver, searcher: searcher, summarizer: summarizer, logger: log}
}

// Lookup builds the report for town. page is clamped to >= 1; distanceKm <= 0
// means "escalate from the default distance". Returns domain.ErrInvalidTown or
// domain.ErrLocationNotFound; notice backend failures are reported in the
// Report, not as errors.
func (s *Service) Lookup(ctx context.Context, town string, page, distanceKm int) (Report, error) {
	town = strings.TrimSpace(town)
	if town == "" {
		return Report{}, domain.ErrInvalidTown
	}
	if page < 1 {
		page = 1
	}
	if distanceKm < 0 {
		distanceKm = 0
	}
	log := logger.FromContext(ctx, s.logger).With(zap.String("town", town))

	loc, err := s.resolver.Resolve(ctx, town)
	if err != nil {
		return Report{}, fmt.Errorf("resolve %q: %w", town, err)
	}

	result := s.searcher.Search(ctx, loc.Lat, loc.Long, page, distanceKm)
	report := Report{Town: town, Location: loc, Result: result, Recent: []notice.Notice{}}

	if !result.Successful {
		log.Warn("Notice search failed",
			zap.String("kind", string(result.ErrorKind)),
			zap.String("message", result.ErrorMessage),
		)
		report.Outcome = OutcomeUpstreamFailure
		report.Message = failureMessage(result.ErrorKind)
		return report, nil
	}
	if len(result.Notices) == 0 {
		report.Outcome = OutcomeEmpty
		report.Message = MsgEmpty
		return report, nil
	}

	source := result.Notices
	if page != 1 {
		// Summaries always describe the first page.
		source = s.searcher.Search(ctx, loc.Lat, loc.Long, 1, result.DistanceKm).Notices
	}

	recent := s.searcher.Recent(source)
	input, basis := recent, BasisRecent
	if len(recent) == 0 {
		input, basis = source, BasisAll
	}

	report.Outcome = OutcomeOK
	report.Recent = recent
	report.SummaryBasis = basis
	report.SummaryPostCount = len(input)
	report.Summary = s.summarizer.Summarize(ctx, input, town)

	log.Info("Area report built",
		zap.Int("distance_km", result.DistanceKm),
		zap.Int("notices", len(result.Notices)),
		zap.String("summary_basis", basis),
	)
	return report, nil
}

func failureMessage(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindAuth:
		return MsgAuthFailure
	case domain.KindNetwork:
		return MsgNetworkFailure
	default:
		return MsgUpstreamFailure
	}
}
