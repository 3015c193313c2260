// Package httpapi serves a read-only JSON view of a diagram over HTTP.
//
// The API exposes the diagram document, individual nodes, and freshly
// planned connector routes. It never mutates the diagram; editing stays
// with the CLI and the session store. Handlers are built on chi, and
// every request is reported through the observability HTTP hooks.
//
// # Endpoints
//
//   - GET /healthz             liveness probe with build version
//   - GET /api/diagram         the full diagram document
//   - GET /api/nodes           all nodes
//   - GET /api/nodes/{id}      a single node
//   - GET /api/routes          planned connector routes for the current geometry
//
// Errors are returned as a JSON envelope carrying the machine-readable
// error code:
//
//	{"error": {"code": "NODE_NOT_FOUND", "message": "no node with id n42"}}
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/treeline-io/treeline/pkg/buildinfo"
	"github.com/treeline-io/treeline/pkg/diagram"
	"github.com/treeline-io/treeline/pkg/errors"
	"github.com/treeline-io/treeline/pkg/observability"
	"github.com/treeline-io/treeline/pkg/pipeline"
)

// =============================================================================
// Server
// =============================================================================

// Source supplies the diagram snapshot the API serves. Save returns a
// deep copy, so handlers can read it without holding any lock.
// *diagram.Store satisfies this interface directly.
type Source interface {
	Save() diagram.Data
}

// Options configures a Server.
type Options struct {
	// Logger receives request logs. Defaults to log.Default().
	Logger *log.Logger

	// Runner plans connector routes for /api/routes. Defaults to a
	// runner without caching.
	Runner *pipeline.Runner

	// Pipeline holds the routing options applied to /api/routes.
	// Validated and defaulted in New.
	Pipeline pipeline.Options
}

// Server serves the read-only diagram API.
type Server struct {
	source Source
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger
	mux    *chi.Mux
}

// New creates a server for the given diagram source.
func New(source Source, opts Options) (*Server, error) {
	if err := opts.Pipeline.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}

	s := &Server{
		source: source,
		runner: opts.Runner,
		opts:   opts.Pipeline,
		logger: opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/diagram", s.handleDiagram)
		r.Get("/nodes", s.handleNodes)
		r.Get("/nodes/{id}", s.handleNode)
		r.Get("/routes", s.handleRoutes)
	})
	s.mux = r

	return s, nil
}

// Handler returns the root http.Handler for the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// =============================================================================
// Middleware
// =============================================================================

// observe logs each request and emits the observability HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed.Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.source.Save())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	d := s.source.Save()
	if d.Nodes == nil {
		d.Nodes = []diagram.Node{}
	}
	s.writeJSON(w, http.StatusOK, d.Nodes)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d := s.source.Save()
	n, ok := d.NodeByID(id)
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeNodeNotFound, "no node with id %s", id))
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

// handleRoutes plans connector routes for the diagram's current geometry.
// The refresh query parameter bypasses cache reads for this request.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	if r.URL.Query().Get("refresh") != "" {
		opts.Refresh = true
	}

	routes, hit, err := s.runner.PlanRoutesWithCacheInfo(r.Context(), s.source.Save(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	s.writeJSON(w, http.StatusOK, routes)
}

// =============================================================================
// Responses
// =============================================================================

// errorBody is the JSON envelope for error responses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusFor(code), errorBody{Error: errorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDiagram,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidEngine,
		errors.ErrCodeInvalidPath, errors.ErrCodeInvalidSession,
		errors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
