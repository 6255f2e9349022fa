package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angeloszaimis/sitecheck/internal/circuitbreaker"
	"github.com/angeloszaimis/sitecheck/internal/model"
	"github.com/angeloszaimis/sitecheck/pkg/logger"
)

const DefaultTTL = 60 * time.Second

// ResultCache stores CheckResults as JSON in a Store.
type ResultCache struct {
	store   Store
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	logger  *slog.Logger
}

// New builds a ResultCache. breaker may be nil; a nil logger discards.
func New(store Store, ttl time.Duration, breaker *circuitbreaker.CircuitBreaker, log *slog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ResultCache{
		store:   store,
		ttl:     ttl,
		breaker: breaker,
		logger:  log,
	}
}

func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the stored result with Cached set. Any failure,
// including an open breaker or an undecodable entry, is reported as a
// wrapped ErrMiss so callers can fall through to a fresh check.
func (c *ResultCache) Get(ctx context.Context, key string) (*model.CheckResult, error) {
	var raw []byte
	err := c.guard(func() error {
		var err error
		raw, err = c.store.Get(ctx, key)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrMiss) {
			return nil, ErrMiss
		}
		c.logger.Warn("cache read failed", slog.String("key", key), slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrMiss, err)
	}

	var result model.CheckResult
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.Warn("discarding undecodable cache entry", slog.String("key", key), slog.Any("err", err))
		return nil, fmt.Errorf("%w: decode: %w", ErrMiss, err)
	}

	result.Cached = true
	return &result, nil
}

// Put stores result under key for the cache TTL.
func (c *ResultCache) Put(ctx context.Context, key string, result *model.CheckResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return c.guard(func() error {
		return c.store.Set(ctx, key, raw, c.ttl)
	})
}

func (c *ResultCache) guard(fn func() error) error {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn, func(err error) bool {
		return errors.Is(err, ErrMiss)
	})
}
