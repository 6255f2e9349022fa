package metrics

import (
	"sort"
	"sync"
	"time"
)

const (
	// responseWindow bounds the per-host latency samples kept for percentiles.
	responseWindow = 1000

	DefaultHostLimit = 1000
)

type Option func(*Metrics)

// WithHostLimit caps the number of hosts with per-host statistics. The
// least recently seen host is evicted to make room for a new one.
func WithHostLimit(n int) Option {
	return func(m *Metrics) {
		if n > 0 {
			m.hostLimit = n
		}
	}
}

type Metrics struct {
	mutex              sync.RWMutex
	hostLimit          int
	tick               uint64
	lastSeen           map[string]uint64
	totalChecks        int64
	totalCacheHits     int64
	checks             map[string]int64
	cacheHits          map[string]int64
	responseTimes      map[string][]time.Duration
	statusCodes        map[string]map[int]int64
	lastClassification map[string]string
	classifications    map[string]int64
	validationFailures int64
	cacheWriteFailures int64
	startTime          time.Time
}

type Snapshot struct {
	TotalChecks        int64                  `json:"totalChecks"`
	CacheHits          int64                  `json:"cacheHits"`
	ValidationFailures int64                  `json:"validationFailures"`
	CacheWriteFailures int64                  `json:"cacheWriteFailures"`
	UptimeSeconds      int64                  `json:"uptimeSeconds"`
	Classifications    map[string]int64       `json:"classifications"`
	Hosts              map[string]HostMetrics `json:"hosts"`
}

type HostMetrics struct {
	Checks             int64         `json:"checks"`
	CacheHits          int64         `json:"cacheHits"`
	LastClassification string        `json:"lastClassification,omitempty"`
	AvgResponse        time.Duration `json:"-"`
	P50Response        time.Duration `json:"-"`
	P95Response        time.Duration `json:"-"`
	P99Response        time.Duration `json:"-"`
	AvgResponseMs      int64         `json:"avgResponseMs"`
	P50ResponseMs      int64         `json:"p50ResponseMs"`
	P95ResponseMs      int64         `json:"p95ResponseMs"`
	P99ResponseMs      int64         `json:"p99ResponseMs"`
	StatusCodes        map[int]int64 `json:"statusCodes,omitempty"`
}

func NewMetrics(opts ...Option) *Metrics {
	m := &Metrics{
		hostLimit:          DefaultHostLimit,
		lastSeen:           make(map[string]uint64),
		checks:             make(map[string]int64),
		cacheHits:          make(map[string]int64),
		responseTimes:      make(map[string][]time.Duration),
		statusCodes:        make(map[string]map[int]int64),
		lastClassification: make(map[string]string),
		classifications:    make(map[string]int64),
		startTime:          time.Now(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordCheck records a freshly probed result. statusCode 0 means no
// response was received and is not counted in the status distribution.
func (m *Metrics) RecordCheck(host, classification string, statusCode int, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.touchLocked(host)
	m.totalChecks++
	m.checks[host]++
	m.classifications[classification]++
	m.lastClassification[host] = classification

	m.responseTimes[host] = append(m.responseTimes[host], duration)
	if len(m.responseTimes[host]) > responseWindow {
		m.responseTimes[host] = m.responseTimes[host][1:]
	}

	if statusCode > 0 {
		if m.statusCodes[host] == nil {
			m.statusCodes[host] = make(map[int]int64)
		}
		m.statusCodes[host][statusCode]++
	}
}

func (m *Metrics) RecordCacheHit(host string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.touchLocked(host)
	m.totalCacheHits++
	m.cacheHits[host]++
}

func (m *Metrics) touchLocked(host string) {
	m.tick++
	if _, ok := m.lastSeen[host]; !ok && len(m.lastSeen) >= m.hostLimit {
		m.evictOldestLocked()
	}
	m.lastSeen[host] = m.tick
}

func (m *Metrics) evictOldestLocked() {
	var (
		oldest string
		seen   uint64
		found  bool
	)
	for host, t := range m.lastSeen {
		if !found || t < seen {
			oldest, seen, found = host, t, true
		}
	}

	delete(m.lastSeen, oldest)
	delete(m.checks, oldest)
	delete(m.cacheHits, oldest)
	delete(m.responseTimes, oldest)
	delete(m.statusCodes, oldest)
	delete(m.lastClassification, oldest)
}

func (m *Metrics) RecordValidationFailure() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.validationFailures++
}

func (m *Metrics) RecordCacheWriteFailure() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cacheWriteFailures++
}

func (m *Metrics) Snapshot() Snapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snap := Snapshot{
		TotalChecks:        m.totalChecks,
		CacheHits:          m.totalCacheHits,
		ValidationFailures: m.validationFailures,
		CacheWriteFailures: m.cacheWriteFailures,
		UptimeSeconds:      int64(time.Since(m.startTime).Seconds()),
		Classifications:    make(map[string]int64, len(m.classifications)),
		Hosts:              make(map[string]HostMetrics),
	}

	for c, n := range m.classifications {
		snap.Classifications[c] = n
	}

	for host := range m.lastSeen {
		hm := HostMetrics{
			Checks:             m.checks[host],
			CacheHits:          m.cacheHits[host],
			LastClassification: m.lastClassification[host],
		}

		if codes := m.statusCodes[host]; len(codes) > 0 {
			hm.StatusCodes = make(map[int]int64, len(codes))
			for code, n := range codes {
				hm.StatusCodes[code] = n
			}
		}

		durations := m.responseTimes[host]
		if len(durations) > 0 {
			sorted := make([]time.Duration, len(durations))
			copy(sorted, durations)
			sort.Slice(sorted, func(i, j int) bool {
				return sorted[i] < sorted[j]
			})

			hm.AvgResponse = average(sorted)
			hm.P50Response = percentile(sorted, 0.50)
			hm.P95Response = percentile(sorted, 0.95)
			hm.P99Response = percentile(sorted, 0.99)
			hm.AvgResponseMs = hm.AvgResponse.Milliseconds()
			hm.P50ResponseMs = hm.P50Response.Milliseconds()
			hm.P95ResponseMs = hm.P95Response.Milliseconds()
			hm.P99ResponseMs = hm.P99Response.Milliseconds()
		}

		snap.Hosts[host] = hm
	}

	return snap
}

func average(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	return sum / time.Duration(len(durations))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}

	index := int(float64(len(sorted)) * p)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
