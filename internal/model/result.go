package model

import (
	"bytes"
	"encoding/json"
	"time"
)

const (
	SSLValid   = "valid"
	SSLNone    = "no SSL"
	SSLUnknown = "unknown"
)

// TimeLayout renders timestamps with exactly three fractional digits.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// RedirectHop is one followed redirect.
type RedirectHop struct {
	From       string `json:"from"`
	To         string `json:"to"`
	StatusCode int    `json:"statusCode"`
}

// CheckResult is the outcome of a single check. It is what the API returns
// and what the cache stores.
type CheckResult struct {
	RequestedURL   string        `json:"requestedUrl"`
	FinalURL       string        `json:"finalUrl"`
	Redirected     bool          `json:"redirected"`
	RedirectCount  int           `json:"redirectCount"`
	RedirectChain  []RedirectHop `json:"redirectChain"`
	StatusCode     *int          `json:"statusCode"`
	ResponseTime   int64         `json:"responseTime"`
	TTFB           int64         `json:"ttfb"`
	SSLStatus      string        `json:"sslStatus"`
	ContentType    *string       `json:"contentType"`
	ResponseSize   int64         `json:"responseSize"`
	Classification string        `json:"classification"`
	Reason         string        `json:"reason"`
	Error          *string       `json:"error"`
	Advice         *string       `json:"advice"`
	HealthScore    int           `json:"healthScore"`
	Cached         bool          `json:"cached"`
	CheckedAt      time.Time     `json:"checkedAt"`
}

// MarshalJSON writes CheckedAt in TimeLayout. The default decoding of
// time.Time reads it back.
func (r CheckResult) MarshalJSON() ([]byte, error) {
	type plain CheckResult
	wire := struct {
		plain
		CheckedAt string `json:"checkedAt"`
	}{plain(r), FormatTime(r.CheckedAt)}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SetRedirects stores the chain and keeps Redirected and RedirectCount in
// step with it.
func (r *CheckResult) SetRedirects(chain []RedirectHop) {
	if chain == nil {
		chain = []RedirectHop{}
	}
	r.RedirectChain = chain
	r.RedirectCount = len(chain)
	r.Redirected = len(chain) > 0
}

// Status returns the HTTP status code, or 0 when no response was received.
func (r *CheckResult) Status() int {
	if r.StatusCode == nil {
		return 0
	}
	return *r.StatusCode
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func IntPtr(i int) *int {
	return &i
}
