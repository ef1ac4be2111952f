package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/commu-practical/helpmap/internal/metrics"
)

// NewRouter mounts the API on a chi router with recovery, request IDs,
// per-request logging and HTTP metrics.
func NewRouter(s *Server, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(log))
	r.Use(metrics.Middleware())

	r.Get("/v1/area", s.getAreaWrapper)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	return r
}

// getAreaWrapper binds query parameters before calling GetArea.
func (s *Server) getAreaWrapper(w http.ResponseWriter, r *http.Request) {
	params, err := bindAreaParams(r)
	if err != nil {
		msg := "invalid request"
		var pe *InvalidParamFormatError
		if errors.As(err, &pe) {
			msg = "invalid value for parameter " + pe.ParamName
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, msg)
		return
	}
	s.GetArea(w, r, params)
}
