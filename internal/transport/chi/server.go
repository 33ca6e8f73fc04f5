package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vitrine/internal/domain"
	logpkg "github.com/kailas-cloud/vitrine/internal/logger"
	autocompleteuc "github.com/kailas-cloud/vitrine/internal/usecase/autocomplete"
	exhibituc "github.com/kailas-cloud/vitrine/internal/usecase/exhibit"
	healthuc "github.com/kailas-cloud/vitrine/internal/usecase/health"
	savedsearchuc "github.com/kailas-cloud/vitrine/internal/usecase/savedsearch"
)

const maxBodyBytes = 1 << 20

// Error kinds reported in the "kind" field of error responses.
const (
	KindNotFound            = "NotFound"
	KindValidationFailed    = "ValidationFailed"
	KindConflict            = "Conflict"
	KindUpstreamUnavailable = "UpstreamUnavailable"
	KindUnauthorized        = "Unauthorized"
	KindInternalError       = "InternalError"
)

// Flash-style confirmations returned in "message".
const (
	msgSearchCreated      = "The search was created."
	msgSearchDeleted      = "The search was deleted."
	msgSearchesReconciled = "Searches were successfully updated."
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the exhibit curation API.
type Server struct {
	exhibits      *exhibituc.Service
	searches      *savedsearchuc.Service
	autocomplete  *autocompleteuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	exhibits *exhibituc.Service,
	searches *savedsearchuc.Service,
	autocomplete *autocompleteuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		exhibits:     exhibits,
		searches:     searches,
		autocomplete: autocomplete,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, KindNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, KindConflict),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, KindConflict),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, KindUpstreamUnavailable),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/exhibits", func(r chi.Router) {
		r.Get("/", s.ListExhibits)
		r.Post("/", s.CreateExhibit)
		r.Route("/{exhibit}", func(r chi.Router) {
			r.Get("/", s.GetExhibit)
			r.Patch("/", s.UpdateExhibit)
			r.Delete("/", s.DeleteExhibit)
			r.Get("/home", s.GetHome)
			r.Route("/searches", func(r chi.Router) {
				r.Get("/", s.ListSearches)
				r.Post("/", s.CreateSearch)
				r.Patch("/", s.ReconcileSearches)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.GetSearch)
					r.Patch("/", s.UpdateSearch)
					r.Delete("/", s.DeleteSearch)
					r.Get("/autocomplete", s.Autocomplete)
				})
			})
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: report.Checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, detail string) {
	writeJSON(w, status, errorResponse{Kind: kind, Detail: detail})
}

// decodeJSON reads a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusUnprocessableEntity, KindValidationFailed, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrConflict,
		domain.ErrUpstreamUnavailable,
		domain.ErrValidation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, kind string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, kind, safeDomainMessage(err))
		return true
	}
}

// validationHandler reports every field error of a *domain.ValidationError.
func validationHandler(w http.ResponseWriter, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	resp := errorResponse{Kind: KindValidationFailed, Detail: domain.ErrValidation.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		resp.Fields = verr.Fields
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, KindInternalError, "internal error")
}
