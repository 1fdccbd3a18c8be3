package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/domain"
	"github.com/tomsolo12/dct-search/internal/domain/suggest"
	healthuc "github.com/tomsolo12/dct-search/internal/usecase/health"
	queryuc "github.com/tomsolo12/dct-search/internal/usecase/query"
	"github.com/tomsolo12/dct-search/internal/usecase/session"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes search sessions, ad-hoc queries, and health over HTTP.
type Server struct {
	sessions      *session.Registry
	query         *queryuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	sessions *session.Registry,
	query *queryuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		sessions: sessions,
		query:    query,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"),
		sentinelHandler(domain.ErrSessionClosed, http.StatusGone, "session_closed"),
		sentinelHandler(domain.ErrUnknownFacet, http.StatusBadRequest, "unknown_facet"),
		sentinelHandler(queryuc.ErrEmptySQL, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(queryuc.ErrSQLTooLong, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(queryuc.ErrBadSourceID, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrTimeout, http.StatusGatewayTimeout, "backend_timeout"),
		sentinelHandler(domain.ErrUnavailable, http.StatusBadGateway, "backend_unavailable"),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, "malformed_response"),
		httpErrorHandler,
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Route("/api/v1", func(r chirouter.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chirouter.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Patch("/filters", s.UpdateFilters)
			r.Delete("/filters", s.ClearFilters)
			r.Post("/refine", s.Refine)
			r.Put("/page", s.GoToPage)
			r.Get("/results", s.GetResults)
			r.Get("/suggestions", s.GetSuggestions)
		})
		r.Post("/query", s.ExecuteQuery)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// CreateSession handles POST /api/v1/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID(),
		Filters:   filtersToBody(sess.Filters()),
	})
}

// GetSession handles GET /api/v1/sessions/{sessionID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID(),
		Filters:   filtersToBody(sess.Filters()),
	})
}

// DeleteSession handles DELETE /api/v1/sessions/{sessionID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(chirouter.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFilters handles PATCH /api/v1/sessions/{sessionID}/filters.
func (s *Server) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	patch := req.toDomain()
	if patch.IsZero() {
		writeError(w, http.StatusBadRequest, "validation_failed", "patch must set at least one filter")
		return
	}

	state := sess.Apply(patch)
	writeJSON(w, http.StatusOK, filtersToBody(state))
}

// ClearFilters handles DELETE /api/v1/sessions/{sessionID}/filters.
func (s *Server) ClearFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, filtersToBody(sess.Clear()))
}

// Refine handles POST /api/v1/sessions/{sessionID}/refine.
func (s *Server) Refine(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	state, err := sess.Refine(req.Facet, req.Value)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownFacet) {
			s.handleDomainError(w, err)
		} else {
			writeError(w, http.StatusBadRequest, "validation_failed", "invalid facet value")
		}
		return
	}
	writeJSON(w, http.StatusOK, filtersToBody(state))
}

// GoToPage handles PUT /api/v1/sessions/{sessionID}/page.
func (s *Server) GoToPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if !sess.GoToPage(req.Page) {
		writeError(w, http.StatusBadRequest, "page_out_of_range", "requested page is out of range")
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(
		sess.Results(), sess.CurrentPage(), sess.TotalPages(), sess.IsSearching()))
}

// GetResults handles GET /api/v1/sessions/{sessionID}/results.
func (s *Server) GetResults(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resultsToResponse(
		sess.Results(), sess.CurrentPage(), sess.TotalPages(), sess.IsSearching()))
}

// GetSuggestions handles GET /api/v1/sessions/{sessionID}/suggestions.
func (s *Server) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	items := sess.Suggestions()
	if items == nil {
		items = []suggest.Item{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: items})
}

// ExecuteQuery handles POST /api/v1/query.
func (s *Server) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	res, err := s.query.Execute(r.Context(), req.SourceID, req.SQL)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryToResponse(res))
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
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chirouter.URLParam(r, "sessionID"))
	if err != nil {
		s.handleDomainError(w, err)
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrSessionNotFound,
		domain.ErrSessionClosed,
		domain.ErrUnknownFacet,
		domain.ErrTimeout,
		domain.ErrUnavailable,
		domain.ErrMalformedResponse,
		queryuc.ErrEmptySQL,
		queryuc.ErrSQLTooLong,
		queryuc.ErrBadSourceID,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// httpErrorHandler surfaces backend-reported errors with their message.
func httpErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	var httpErr *domain.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	writeError(w, http.StatusBadGateway, "backend_error", msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
