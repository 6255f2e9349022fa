package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventCheckCompleted   EventType = "check_completed"
	EventCacheHit         EventType = "cache_hit"
	EventValidationFailed EventType = "validation_failed"
	EventCacheWriteFailed EventType = "cache_write_failed"
)

type MetricEvent struct {
	Type           EventType
	Timestamp      time.Time
	Host           string
	Classification string
	StatusCode     int
	Duration       time.Duration
}

type Collector struct {
	eventCh chan MetricEvent
	metrics *Metrics
	logger  *slog.Logger
	done    chan struct{}
}

func NewCollector(bufferSize int, logger *slog.Logger, opts ...Option) *Collector {
	return &Collector{
		eventCh: make(chan MetricEvent, bufferSize),
		metrics: NewMetrics(opts...),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (c *Collector) EventChannel() chan<- MetricEvent {
	return c.eventCh
}

// Emit queues event without blocking. Events are dropped when the buffer
// is full.
func (c *Collector) Emit(event MetricEvent) {
	if c == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Debug("metrics buffer full, dropping event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

// Done is closed once the collector has drained after cancellation.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event MetricEvent) {
	switch event.Type {
	case EventCheckCompleted:
		c.metrics.RecordCheck(event.Host, event.Classification, event.StatusCode, event.Duration)

	case EventCacheHit:
		c.metrics.RecordCacheHit(event.Host)

	case EventValidationFailed:
		c.metrics.RecordValidationFailure()

	case EventCacheWriteFailed:
		c.metrics.RecordCacheWriteFailure()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.metrics.Snapshot()
}
