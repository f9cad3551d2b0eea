// Package openlibrary is a small client for the Open Library search, works
// and authors APIs.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	apperrors "github.com/lepinkainen/readersrealm/internal/errors"
	"github.com/lepinkainen/readersrealm/internal/metrics"
	"github.com/lepinkainen/readersrealm/internal/ratelimit"
)

const (
	defaultBaseURL   = "https://openlibrary.org"
	defaultCoversURL = "https://covers.openlibrary.org"
	defaultUserAgent = "readersrealm/1.0"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 10 << 20

	// maxRetryAfter is the longest Retry-After the client will sleep through.
	maxRetryAfter = 10 * time.Second

	searchFields = "key,title,author_name,author_key,first_publish_year,cover_i,language"
)

// Options configure NewClient. Zero values select the defaults.
type Options struct {
	BaseURL           string
	CoversURL         string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
	RetryBackoff      time.Duration
	BreakerFailures   uint32
	BreakerTimeout    time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to Open Library. It is safe for concurrent use.
type Client struct {
	baseURL    string
	coversURL  string
	userAgent  string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	backoff    time.Duration
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.CoversURL == "" {
		opts.CoversURL = defaultCoversURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "openlibrary",
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		coversURL:  strings.TrimRight(opts.CoversURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
		limiter:    ratelimit.New("OpenLibrary", opts.RequestsPerSecond, opts.Burst),
		breaker:    breaker,
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
	}
}

// SearchTitle runs a general work search. A non-positive limit leaves the
// upstream default in place.
func (c *Client) SearchTitle(ctx context.Context, query string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("fields", searchFields)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var res SearchResponse
	if err := c.getJSON(ctx, "search", "/search.json", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SearchAuthors runs an author search.
func (c *Client) SearchAuthors(ctx context.Context, query string) (*AuthorSearchResponse, error) {
	q := url.Values{}
	q.Set("q", query)

	var res AuthorSearchResponse
	if err := c.getJSON(ctx, "search_authors", "/search/authors.json", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Work fetches a work record by key.
func (c *Client) Work(ctx context.Context, key string) (*Work, error) {
	p := WorkPath(key)
	if p == "" {
		return nil, fmt.Errorf("empty work key: %w", ErrNotFound)
	}

	var res Work
	if err := c.getJSON(ctx, "work", p+".json", nil, &res); err != nil {
		return nil, err
	}
	if res.Key == "" {
		res.Key = p
	}
	return &res, nil
}

// Author fetches the raw author document by key.
func (c *Client) Author(ctx context.Context, key string) (Author, error) {
	p := AuthorPath(key)
	if p == "" {
		return nil, fmt.Errorf("empty author key: %w", ErrNotFound)
	}

	var res Author
	if err := c.getJSON(ctx, "author", p+".json", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// AuthorWorks lists the works of an author.
func (c *Client) AuthorWorks(ctx context.Context, key string) (*AuthorWorksResponse, error) {
	p := AuthorPath(key)
	if p == "" {
		return nil, fmt.Errorf("empty author key: %w", ErrNotFound)
	}

	var res AuthorWorksResponse
	if err := c.getJSON(ctx, "author_works", p+"/works.json", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ping checks that Open Library answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "ping", "/", nil)
	return err
}

// CoverURL returns the cover image URL for a cover id and size (S, M or L).
func (c *Client) CoverURL(coverID int, size string) string {
	if coverID <= 0 {
		return ""
	}
	if size == "" {
		size = "L"
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, coverID, size)
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, target any) error {
	body, err := c.get(ctx, endpoint, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrUnavailable, endpoint, err)
	}
	return nil
}

// get performs a GET with retries for transient failures. Each attempt goes
// through the rate limiter and the circuit breaker.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<uint(attempt-1))
			if ra := apperrors.RetryAfter(lastErr); ra > wait {
				wait = ra
			}
			slog.Debug("Retrying Open Library request", "endpoint", endpoint, "attempt", attempt, "backoff", wait, "error", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		start := time.Now()
		body, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, u)
		})
		metrics.RecordUpstream(endpoint, outcome(err), time.Since(start))

		if err == nil {
			return body, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		rlErr := apperrors.NewRateLimitErrorWithRetry("Open Library rate limit exceeded", parseRetryAfter(resp.Header.Get("Retry-After")))
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, rlErr)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, &statusError{Code: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUnavailable, err)
	}
	return body, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if apperrors.IsRateLimitError(err) {
		return apperrors.RetryAfter(err) <= maxRetryAfter
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.temporary()
	}
	return errors.Is(err, ErrUnavailable)
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP dates
// are ignored.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	default:
		return "error"
	}
}
