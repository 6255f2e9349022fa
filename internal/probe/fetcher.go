package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/angeloszaimis/sitecheck/internal/model"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxRedirects = 10
	DefaultUserAgent    = "sitecheck/1.0"

	// drained from GET bodies before closing so connections can be reused
	maxDrainBytes = 4 << 10
)

// ErrAborted wraps every error caused by the shared deadline firing or the
// caller cancelling.
var ErrAborted = errors.New("operation aborted")

// Trace is the outcome of a successful Fetch.
type Trace struct {
	StatusCode int
	Header     http.Header
	FinalURL   string
	Redirects  []model.RedirectHop
	// TTFB is the duration of the most recent request in the chain.
	TTFB time.Duration
	// Elapsed covers the whole chain, from the first request to loop exit.
	Elapsed time.Duration
	// RangedFallback is set when the initial HEAD failed and the GET
	// fallback produced the first response.
	RangedFallback bool
}

// ContentLength parses the Content-Length header, returning 0 when it is
// missing or malformed.
func (t *Trace) ContentLength() int64 {
	n, err := strconv.ParseInt(t.Header.Get("Content-Length"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

type Option func(*Fetcher)

// WithClient sets the HTTP client. Its redirect policy is replaced so that
// redirects are always returned to the Fetcher.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxRedirects = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	maxRedirects int
	userAgent    string
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:       &http.Client{},
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	client := *f.client
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	f.client = &client

	return f
}

func (f *Fetcher) Timeout() time.Duration {
	return f.timeout
}

type response struct {
	status int
	header http.Header
}

// Fetch probes rawURL and follows its redirects. Transport errors are
// returned as is, except that errors caused by the deadline are wrapped
// with ErrAborted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Trace, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	current, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	start := time.Now()
	trace := &Trace{Redirects: []model.RedirectHop{}}

	res, ttfb, err := f.do(ctx, http.MethodHead, current, false)
	if err != nil {
		trace.RangedFallback = true
		res, ttfb, err = f.do(ctx, http.MethodGet, current, true)
		if err != nil {
			return nil, f.wrap(ctx, err)
		}
	}

	for isRedirect(res.status) && len(trace.Redirects) < f.maxRedirects {
		location := res.header.Get("Location")
		if location == "" {
			break
		}

		next, err := current.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("resolve redirect location %q: %w", location, err)
		}

		trace.Redirects = append(trace.Redirects, model.RedirectHop{
			From:       current.String(),
			To:         next.String(),
			StatusCode: res.status,
		})
		current = next

		res, ttfb, err = f.do(ctx, http.MethodHead, current, false)
		if err != nil {
			return nil, f.wrap(ctx, err)
		}
	}

	trace.StatusCode = res.status
	trace.Header = res.header
	trace.FinalURL = current.String()
	trace.TTFB = ttfb
	trace.Elapsed = time.Since(start)

	return trace, nil
}

func (f *Fetcher) do(ctx context.Context, method string, u *url.URL, ranged bool) (response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return response{}, 0, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if ranged {
		req.Header.Set("Range", "bytes=0-0")
	}

	start := time.Now()
	res, err := f.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return response{}, elapsed, err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxDrainBytes))

	return response{status: res.StatusCode, header: res.Header}, elapsed, nil
}

func (f *Fetcher) wrap(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return err
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}
