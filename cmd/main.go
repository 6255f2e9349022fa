package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angeloszaimis/sitecheck/config"
	"github.com/angeloszaimis/sitecheck/internal/cache"
	"github.com/angeloszaimis/sitecheck/internal/circuitbreaker"
	"github.com/angeloszaimis/sitecheck/internal/healthcheck"
	"github.com/angeloszaimis/sitecheck/internal/httpserver"
	"github.com/angeloszaimis/sitecheck/internal/metrics"
	"github.com/angeloszaimis/sitecheck/internal/probe"
	"github.com/angeloszaimis/sitecheck/pkg/logger"
)

const (
	connectTimeout = 5 * time.Second
	drainTimeout   = 10 * time.Second
	responseSlack  = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, connectTimeout)
	store, closeStore, err := newStore(connectCtx, cfg)
	connectCancel()
	if err != nil {
		log.Error("Failed to initialize cache store",
			slog.String("backend", cfg.Cache.Backend),
			slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("Error closing cache store", slog.Any("err", err))
		}
	}()

	breaker := circuitbreaker.NewCircuitBreaker(cfg.Cache.Breaker.FailureThreshold, cfg.BreakerResetTimeout())
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		log.Warn("Cache circuit breaker changed state",
			slog.String("from", from.String()),
			slog.String("to", to.String()))
	})

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()
	collector := metrics.NewCollector(cfg.Metrics.BufferSize, log, metrics.WithHostLimit(cfg.Metrics.MaxHosts))
	collector.Start(collectorCtx)

	fetcher := probe.NewFetcher(
		probe.WithTimeout(cfg.ProbeTimeout()),
		probe.WithMaxRedirects(cfg.Probe.MaxRedirects),
		probe.WithUserAgent(cfg.Probe.UserAgent),
	)

	results := cache.New(store, cfg.CacheTTL(), breaker, log)
	checker := healthcheck.NewChecker(fetcher,
		healthcheck.WithCache(results),
		healthcheck.WithCollector(collector),
		healthcheck.WithLogger(log),
		healthcheck.WithWriteTimeout(cfg.CacheWriteTimeout()),
	)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(checker, collector, log),
		httpserver.WithWriteTimeout(fetcher.Timeout()+responseSlack))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting sitecheck",
			slog.String("addr", srv.Addr()),
			slog.String("cache", cfg.Cache.Backend),
			slog.Duration("cache_ttl", results.TTL()),
			slog.Duration("probe_timeout", fetcher.Timeout()))
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}

	drainCtx, drainCancel := context.WithTimeout(context.Background(), drainTimeout)
	defer drainCancel()
	if err := checker.Wait(drainCtx); err != nil {
		log.Warn("Abandoned pending cache writes", slog.Any("err", err))
	}

	stopCollector()
	select {
	case <-collector.Done():
	case <-drainCtx.Done():
	}
}

// newStore builds the configured cache backend. The returned func releases
// it.
func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func() error, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisStore(client, cfg.Cache.KeyPrefix), client.Close, nil
	default:
		return cache.NewMemoryStore(), func() error { return nil }, nil
	}
}
