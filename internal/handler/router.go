package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angeloszaimis/sitecheck/internal/healthcheck"
	"github.com/angeloszaimis/sitecheck/internal/metrics"
	"github.com/angeloszaimis/sitecheck/pkg/logger"
)

// Version is reported by the health endpoint.
const Version = "1.0"

type Handler struct {
	checker   *healthcheck.Checker
	collector *metrics.Collector
	logger    *slog.Logger
	now       func() time.Time
}

// New builds the API handler. collector may be nil, in which case
// /api/metrics reports an empty snapshot.
func New(checker *healthcheck.Checker, collector *metrics.Collector, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Discard()
	}
	if collector == nil {
		collector = metrics.NewCollector(1, log)
	}
	return &Handler{
		checker:   checker,
		collector: collector,
		logger:    log,
		now:       time.Now,
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(loggingMiddleware(h.logger))
	r.Use(corsMiddleware)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/check", h.check)
		r.Get("/metrics", h.collector.Handler())
	})

	return r
}
