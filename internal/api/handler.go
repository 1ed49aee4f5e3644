// Package api implements the rentscore REST API: calculator endpoints,
// roster-backed portfolio endpoints, health and metrics.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/rentscore/rentscore/internal/dispatch"
	"github.com/rentscore/rentscore/internal/intake"
	"github.com/rentscore/rentscore/internal/roster"
	"github.com/rentscore/rentscore/pkg/scoring"
)

// maxBodyBytes bounds request bodies; large portfolios fit comfortably.
const maxBodyBytes = 16 << 20

// Handler is the top-level API handler for the rentscore service.
type Handler struct {
	engine   dispatch.Engine
	registry *intake.Registry
	rosters  *roster.Service
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	started  time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithRosters enables the org roster endpoints.
func WithRosters(s *roster.Service) Option {
	return func(h *Handler) { h.rosters = s }
}

// WithGatherer serves g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a new API handler.
func NewHandler(engine dispatch.Engine, registry *intake.Registry, opts ...Option) *Handler {
	h := &Handler{
		engine:   engine,
		registry: registry,
		rosters:  roster.NewService(nil, nil),
		gatherer: prometheus.DefaultGatherer,
		logger:   zap.L(),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the router. corsOrigins lists allowed origins; empty
// allows any.
func (h *Handler) Routes(corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/calculators", h.handleListCalculators)
		r.Post("/calculators/{name}", h.handleCalculate)

		r.Get("/orgs/{orgID}/roster", h.handleGetRoster)
		r.Put("/orgs/{orgID}/roster", h.handlePutRoster)
		r.Get("/orgs/{orgID}/roster/{documentID}", h.handleGetRosterRevision)
		r.Post("/orgs/{orgID}/{name}", h.handleOrgCalculate)
	})
	return r
}

// envelope is the body of every API response. Errors carry only the
// error field.
type envelope struct {
	Success bool   `json:"success,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: msg})
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case scoring.IsInvalidInput(err):
		return http.StatusBadRequest
	case eris.Is(err, intake.ErrUnknownCalculator), eris.Is(err, roster.ErrNotFound):
		return http.StatusNotFound
	case eris.Is(err, roster.ErrNotConfigured), eris.Is(err, roster.ErrNoRevisions):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Server errors are logged with
// the full chain and answered with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		h.logger.Error("request failed",
			zap.String("request_id", RequestIDFrom(r.Context())),
			zap.String("path", r.URL.Path),
			zap.String("error", eris.ToString(err, true)),
		)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
	})
}
