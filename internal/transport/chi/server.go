package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/domain"
	"github.com/commu-practical/helpmap/internal/logger"
	"github.com/commu-practical/helpmap/internal/usecase/area"
	healthuc "github.com/commu-practical/helpmap/internal/usecase/health"
)

// Error codes returned in error bodies.
const (
	codeBadRequest       = "bad_request"
	codeInvalidTown      = "invalid_town"
	codeLocationNotFound = "location_not_found"
	codeInternalError    = "internal_error"
)

const msgInvalidTown = "Please enter a town."

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the helpmap HTTP API.
type Server struct {
	area          AreaReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(areas AreaReporter, health HealthChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		area:   areas,
		health: health,
		logger: log,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrInvalidTown, http.StatusBadRequest, codeInvalidTown, msgInvalidTown),
			sentinelHandler(domain.ErrLocationNotFound, http.StatusNotFound, codeLocationNotFound, area.MsgNotFound),
		},
	}
}

// GetArea handles GET /v1/area.
func (s *Server) GetArea(w http.ResponseWriter, r *http.Request, params AreaParams) {
	report, err := s.area.Lookup(r.Context(), params.Town, params.pageOrDefault(), params.distanceOrAuto())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if report.Outcome == area.OutcomeUpstreamFailure {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, NewAreaResponse(report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
