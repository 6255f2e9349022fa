package main

import (
	"log/slog"
	"net/http"

	"github.com/angeloszaimis/sitecheck/internal/handler"
	"github.com/angeloszaimis/sitecheck/internal/healthcheck"
	"github.com/angeloszaimis/sitecheck/internal/metrics"
)

func setupRouter(checker *healthcheck.Checker, collector *metrics.Collector, log *slog.Logger) http.Handler {
	return handler.NewRouter(handler.New(checker, collector, log))
}
