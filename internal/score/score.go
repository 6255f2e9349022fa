// Package score derives a 0-100 health score from a check outcome.
package score

import (
	"time"

	"github.com/angeloszaimis/sitecheck/internal/classify"
)

// Health scores a check. statusCode is 0 when no response was received.
// Branches are evaluated in order and the first match wins.
func Health(statusCode int, c classify.Category, responseTime time.Duration) int {
	switch c {
	case classify.InvalidDomain, classify.DNSError, classify.CloudflareInternalError:
		return 0
	case classify.SSLError, classify.Timeout, classify.NetworkError:
		return 25
	}

	switch {
	case statusCode >= 500:
		return 40
	case statusCode >= 400:
		return 60
	case statusCode == 200:
		return latencyScore(responseTime)
	default:
		return 50
	}
}

func latencyScore(rt time.Duration) int {
	switch {
	case rt < 500*time.Millisecond:
		return 100
	case rt < time.Second:
		return 90
	case rt < 2*time.Second:
		return 75
	default:
		return 60
	}
}
