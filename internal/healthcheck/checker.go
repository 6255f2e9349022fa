package healthcheck

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/angeloszaimis/sitecheck/internal/cache"
	"github.com/angeloszaimis/sitecheck/internal/classify"
	"github.com/angeloszaimis/sitecheck/internal/metrics"
	"github.com/angeloszaimis/sitecheck/internal/model"
	"github.com/angeloszaimis/sitecheck/internal/probe"
	"github.com/angeloszaimis/sitecheck/internal/score"
	"github.com/angeloszaimis/sitecheck/internal/target"
	"github.com/angeloszaimis/sitecheck/pkg/logger"
)

const DefaultWriteTimeout = 2 * time.Second

// ValidationError is returned by Check when the requested URL is rejected
// before any network activity.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Message is the caller-facing error text.
func (e *ValidationError) Message() string {
	return target.PublicMessage(e.Err)
}

type Option func(*Checker)

// WithCache enables result caching. Without it every Check probes.
func WithCache(c *cache.ResultCache) Option {
	return func(ch *Checker) {
		ch.cache = c
	}
}

func WithCollector(c *metrics.Collector) Option {
	return func(ch *Checker) {
		ch.collector = c
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(ch *Checker) {
		if l != nil {
			ch.logger = l
		}
	}
}

// WithWriteTimeout bounds each background cache write.
func WithWriteTimeout(d time.Duration) Option {
	return func(ch *Checker) {
		if d > 0 {
			ch.writeTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(ch *Checker) {
		ch.now = now
	}
}

type Checker struct {
	fetcher      *probe.Fetcher
	cache        *cache.ResultCache
	collector    *metrics.Collector
	logger       *slog.Logger
	writeTimeout time.Duration
	now          func() time.Time

	pending sync.WaitGroup
}

func NewChecker(fetcher *probe.Fetcher, opts ...Option) *Checker {
	c := &Checker{
		fetcher:      fetcher,
		logger:       logger.Discard(),
		writeTimeout: DefaultWriteTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check runs one health check for raw. The only error it returns is a
// *ValidationError; probe failures are reported inside the result.
func (c *Checker) Check(ctx context.Context, raw string) (*model.CheckResult, error) {
	u, err := target.Normalize(raw)
	if err != nil {
		c.collector.Emit(metrics.MetricEvent{Type: metrics.EventValidationFailed})
		return nil, &ValidationError{Err: err}
	}
	key := u.String()

	if c.cache != nil {
		if hit, err := c.cache.Get(ctx, key); err == nil {
			c.logger.Debug("serving cached result", slog.String("url", key))
			c.collector.Emit(metrics.MetricEvent{Type: metrics.EventCacheHit, Host: u.Hostname()})
			return hit, nil
		}
	}

	result := c.probe(ctx, u)

	c.logger.Info("check completed",
		slog.String("url", key),
		slog.String("classification", result.Classification),
		slog.Int("status", result.Status()),
		slog.Int64("response_time_ms", result.ResponseTime),
		slog.Int("health_score", result.HealthScore))

	c.collector.Emit(metrics.MetricEvent{
		Type:           metrics.EventCheckCompleted,
		Host:           u.Hostname(),
		Classification: result.Classification,
		StatusCode:     result.Status(),
		Duration:       time.Duration(result.ResponseTime) * time.Millisecond,
	})

	if c.cache != nil {
		c.store(key, u.Hostname(), *result)
	}

	return result, nil
}

func (c *Checker) probe(ctx context.Context, u target.URL) *model.CheckResult {
	key := u.String()
	result := &model.CheckResult{
		RequestedURL: key,
		FinalURL:     key,
		SSLStatus:    model.SSLUnknown,
	}
	result.SetRedirects(nil)

	var (
		category classify.Category
		failure  string
	)

	// Caller cancellation does not reach the probe; only the fetcher's
	// timeout bounds it.
	start := c.now()
	trace, err := c.fetcher.Fetch(context.WithoutCancel(ctx), key)
	elapsed := c.now().Sub(start)

	if err != nil {
		if classify.IsEdgeUnreachable(err) {
			failure = classify.UnresolvableDomainMessage
			category = classify.InvalidDomain
		} else {
			failure = err.Error()
			category = classify.Classify(err, 0)
		}
		c.logger.Warn("probe failed",
			slog.String("url", key),
			slog.String("category", string(category)),
			slog.Any("err", err))
	} else {
		result.StatusCode = model.IntPtr(trace.StatusCode)
		result.FinalURL = trace.FinalURL
		result.SetRedirects(trace.Redirects)
		result.TTFB = trace.TTFB.Milliseconds()
		result.ContentType = model.StringPtr(trace.Header.Get("Content-Type"))
		result.ResponseSize = trace.ContentLength()
		if u.IsHTTPS() {
			result.SSLStatus = model.SSLValid
		} else {
			result.SSLStatus = model.SSLNone
		}
	}

	status := result.Status()
	if category == classify.None && status >= 400 {
		category = classify.Classify(nil, status)
	}

	result.ResponseTime = elapsed.Milliseconds()
	result.Classification = classificationLabel(category, failure)
	result.Reason = classify.Reason(category)
	result.Error = model.StringPtr(failure)
	result.Advice = model.StringPtr(classify.Advice(category))
	result.HealthScore = score.Health(status, category, elapsed)
	result.CheckedAt = c.now().UTC().Truncate(time.Millisecond)

	return result
}

func classificationLabel(c classify.Category, failure string) string {
	switch {
	case c != classify.None:
		return string(c)
	case failure != "":
		return string(classify.UnknownError)
	default:
		return classify.Success
	}
}

// store writes result to the cache without holding up the caller. The
// write outlives the request context and is bounded by writeTimeout.
func (c *Checker) store(key, host string, result model.CheckResult) {
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
		defer cancel()

		if err := c.cache.Put(ctx, key, &result); err != nil {
			c.logger.Warn("cache write failed", slog.String("url", key), slog.Any("err", err))
			c.collector.Emit(metrics.MetricEvent{Type: metrics.EventCacheWriteFailed, Host: host})
		}
	}()
}

// Wait blocks until every background cache write has finished or ctx is
// done.
func (c *Checker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsValidationError reports whether err came from URL validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
