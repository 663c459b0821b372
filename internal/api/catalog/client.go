package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

const (
	defaultRateLimit       = 250 * time.Millisecond // 4 req/sec
	defaultBurstLimit      = 8
	conservativeRateLimit  = 500 * time.Millisecond // 2 req/sec
	conservativeBurstLimit = 4

	maxRetries         = 5
	baseRetryDelay     = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	rateLimitThreshold = 10 // Slow down after this many consecutive 429s
)

// Fibonacci sequence for backoff delays
var fibonacciSequence = []int{1, 2, 3, 5, 8, 13, 21, 34}

// search query parameter per entity kind
var searchParams = map[shared.SearchKind]string{
	shared.SearchTracks:  "s",
	shared.SearchAlbums:  "al",
	shared.SearchArtists: "a",
}

// Client talks to the upstream catalog API. Payloads are returned decoded
// but otherwise untouched.
type Client struct {
	endpoint      string
	client        *http.Client
	rateLimiter   *rate.Limiter
	baseDelay     time.Duration
	rateLimitHits int
	mu            sync.Mutex
	logger        Logger
}

// Logger is the subset of the logger service the client reports through.
type Logger interface {
	Warning(message string, args ...interface{})
	Debug(message string, args ...interface{})
}

// Option configures a Client.
type Option func(*Client)

// WithLogger routes retry notices through logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRetryDelay overrides the base retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithRateLimit overrides the request rate limit.
func WithRateLimit(every time.Duration, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Every(every), burst) }
}

// NewClient creates a catalog client for endpoint.
func NewClient(endpoint string, client *http.Client, opts ...Option) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(defaultRateLimit), defaultBurstLimit),
		baseDelay:   baseRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs a catalog search for one entity kind.
func (c *Client) Search(ctx context.Context, kind shared.SearchKind, query string) (any, error) {
	param, ok := searchParams[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported search kind %q", kind)
	}
	payload, err := c.get(ctx, "search/", []shared.QueryParam{{Name: param, Value: query}})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", kind, err)
	}
	return payload, nil
}

// GetAlbum retrieves an album with its track listing.
func (c *Client) GetAlbum(ctx context.Context, albumID string) (any, error) {
	payload, err := c.get(ctx, "album/", []shared.QueryParam{{Name: "id", Value: albumID}})
	if err != nil {
		return nil, fmt.Errorf("failed to get album: %w", err)
	}
	return payload, nil
}

// GetArtist retrieves the full artist page.
func (c *Client) GetArtist(ctx context.Context, artistID string) (any, error) {
	payload, err := c.get(ctx, "artist/", []shared.QueryParam{{Name: "f", Value: artistID}})
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return payload, nil
}

// GetTrack retrieves track metadata and stream details.
func (c *Client) GetTrack(ctx context.Context, trackID int64, quality string) (any, error) {
	if quality == "" {
		quality = shared.DefaultQuality
	}
	payload, err := c.get(ctx, "track/", []shared.QueryParam{
		{Name: "id", Value: strconv.FormatInt(trackID, 10)},
		{Name: "quality", Value: quality},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get track: %w", err)
	}
	return payload, nil
}

// get issues a GET and decodes the body. A 404 yields a nil payload.
func (c *Client) get(ctx context.Context, path string, params []shared.QueryParam) (any, error) {
	resp, err := c.Request(ctx, path, params)
	if err != nil {
		if shared.IsNotFoundHTTPError(err) {
			return nil, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	c.debug("%s -> %d bytes", path, len(body))
	return payload, nil
}

// Request makes a rate limited GET against the catalog with retry handling.
func (c *Client) Request(ctx context.Context, path string, params []shared.QueryParam) (*http.Response, error) {
	if err := c.limiter().Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	u, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}
	return c.requestWithRetry(ctx, u.String())
}

func (c *Client) buildURL(path string, params []shared.QueryParam) (*url.URL, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", c.endpoint, strings.TrimPrefix(path, "/")))
	if err != nil {
		return nil, fmt.Errorf("error parsing URL: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for _, param := range params {
			q.Add(param.Name, param.Value)
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

// fibonacciDelay calculates delay using Fibonacci sequence for more gradual backoff
func fibonacciDelay(attempt int, baseDelay time.Duration) time.Duration {
	if attempt < 0 {
		return baseDelay
	}
	if attempt >= len(fibonacciSequence) {
		attempt = len(fibonacciSequence) - 1
	}
	delay := baseDelay * time.Duration(fibonacciSequence[attempt])
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

// addJitter adds up to 25% random jitter
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}

func (c *Client) requestWithRetry(ctx context.Context, target string) (*http.Response, error) {
	var lastErr error
	consecutiveRateLimits := 0

	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.executeRequest(ctx, target)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
		} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.resetRateLimitCounters()
			return resp, nil
		} else {
			httpErr := shared.NewHTTPError(resp)
			resp.Body.Close()
			if !shared.IsRetryableHTTPError(httpErr) {
				return nil, httpErr
			}
			lastErr = httpErr
			if resp.StatusCode == http.StatusTooManyRequests {
				consecutiveRateLimits++
				if c.trackRateLimitHit() {
					c.AdjustRateLimitForOverload()
				}
			}
		}

		if attempt == maxRetries-1 {
			break
		}
		delay := c.retryDelay(attempt, consecutiveRateLimits)
		c.warn("Upstream request failed (%v), retrying in %v (attempt %d/%d)", lastErr, delay, attempt+1, maxRetries)
		if err := waitWithContext(ctx, delay); err != nil {
			return nil, err
		}
	}

	if consecutiveRateLimits == maxRetries {
		return nil, fmt.Errorf("rate limit exceeded (429) after %d attempts: %w", maxRetries, lastErr)
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) executeRequest(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	return resp, nil
}

func (c *Client) retryDelay(attempt, consecutiveRateLimits int) time.Duration {
	delay := fibonacciDelay(attempt, c.baseDelay)
	if consecutiveRateLimits > 2 {
		delay *= time.Duration(consecutiveRateLimits)
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
	return addJitter(delay)
}

func waitWithContext(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) limiter() *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rateLimiter
}

func (c *Client) resetRateLimitCounters() {
	c.mu.Lock()
	c.rateLimitHits = 0
	c.mu.Unlock()
}

// trackRateLimitHit reports whether the limiter should be slowed down
func (c *Client) trackRateLimitHit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateLimitHits++
	return c.rateLimitHits == rateLimitThreshold
}

// AdjustRateLimitForOverload reduces the rate limit when the upstream keeps
// answering 429.
func (c *Client) AdjustRateLimitForOverload() {
	c.mu.Lock()
	c.rateLimiter = rate.NewLimiter(rate.Every(conservativeRateLimit), conservativeBurstLimit)
	c.mu.Unlock()
	c.warn("Adjusted rate limit to be more conservative due to server overload")
}

func (c *Client) warn(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warning(format, args...)
	}
}

func (c *Client) debug(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(format, args...)
	}
}
