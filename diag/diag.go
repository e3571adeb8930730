// Package diag serves a read-only HTTP view of a Manufactory: its type
// table, its dependency graph as YAML, and its Prometheus metrics.
package diag

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/manufactory/manufactory"
	"github.com/sghaida/manufactory/typeindex"
)

// Graph is the document served at /graph.yaml.
type Graph struct {
	Exports []typeindex.Index      `json:"exports" yaml:"exports"`
	Types   []manufactory.TypeInfo `json:"types" yaml:"types"`
}

// Snapshot captures the current graph of m.
func Snapshot(m *manufactory.Manufactory) Graph {
	return Graph{Exports: m.ExportedTypes(), Types: m.Describe()}
}

// Handler serves the diagnostics of one Manufactory.
type Handler struct {
	m       *manufactory.Manufactory
	metrics *manufactory.Metrics
	log     *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithMetrics exposes m's registry at /metrics.
func WithMetrics(m *manufactory.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// NewHandler returns a Handler for m.
func NewHandler(m *manufactory.Manufactory, opts ...Option) *Handler {
	h := &Handler{m: m, log: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the router:
//
//	GET /healthz       liveness
//	GET /types         type table as JSON
//	GET /types/{name}  one type; name is the path-escaped type name
//	GET /graph.yaml    exports and type table as YAML
//	GET /metrics       Prometheus exposition, when metrics are enabled
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/types", h.listTypes)
	r.Get("/types/{name}", h.getType)
	r.Get("/graph.yaml", h.graphYAML)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

func (h *Handler) listTypes(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, h.m.Describe())
}

func (h *Handler) getType(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "malformed type name")
		return
	}
	for _, info := range h.m.Describe() {
		if info.Type.Name() == name {
			h.respondJSON(w, http.StatusOK, info)
			return
		}
	}
	h.respondError(w, http.StatusNotFound, "unknown type "+name)
}

func (h *Handler) graphYAML(w http.ResponseWriter, _ *http.Request) {
	out, err := yaml.Marshal(Snapshot(h.m))
	if err != nil {
		h.log.Error("failed to encode graph", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "failed to encode graph")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(out)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.log.Debug("diag request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]any{
		"error":   true,
		"message": message,
		"code":    status,
	})
}
