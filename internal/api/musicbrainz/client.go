package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

const (
	defaultBaseURL      = "https://musicbrainz.org/ws/2/"
	defaultUserAgent    = "tidaloader/1.0 ( https://github.com/mancube/tidaloader-opus )"
	defaultTimeout      = 30 * time.Second
	defaultRateLimit    = 1100 * time.Millisecond // MusicBrainz allows 1 request per second
	defaultBurstLimit   = 1
	defaultMaxRetries   = 3
	defaultInitialDelay = 2 * time.Second
	defaultMaxDelay     = 30 * time.Second
)

// ErrNoRecording is returned when a search yields no recording.
var ErrNoRecording = errors.New("no MusicBrainz recording found")

// Config holds configuration for MusicBrainz API client
type Config struct {
	BaseURL      string        `json:"base_url"`
	UserAgent    string        `json:"user_agent"`
	Timeout      time.Duration `json:"timeout"`
	MaxRetries   int           `json:"max_retries"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	RateLimit    time.Duration `json:"rate_limit"`
	BurstLimit   int           `json:"burst_limit"`
}

// Client represents a MusicBrainz API client
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// DefaultConfig returns sensible defaults for MusicBrainz API client
func DefaultConfig() Config {
	return Config{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		Timeout:      defaultTimeout,
		MaxRetries:   defaultMaxRetries,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
		RateLimit:    defaultRateLimit,
		BurstLimit:   defaultBurstLimit,
	}
}

// NewClient creates a new MusicBrainz API client with default configuration
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new MusicBrainz API client with custom configuration
func NewClientWithConfig(config Config) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: config.Timeout},
		config:      config,
		rateLimiter: rate.NewLimiter(rate.Every(config.RateLimit), config.BurstLimit),
	}
}

// GetConfig returns the current client configuration
func (c *Client) GetConfig() Config {
	return c.config
}

func (c *Client) makeRequest(ctx context.Context, path string) (*http.Response, error) {
	reqURL, err := url.Parse(c.config.BaseURL + path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// get makes a single rate limited GET request
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := c.makeRequest(ctx, path)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewHTTPError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var result []byte
	err := shared.RetryWithBackoffForHTTP(ctx, c.config.MaxRetries, c.config.InitialDelay, c.config.MaxDelay, func() error {
		var err error
		result, err = c.get(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) searchRecordings(ctx context.Context, path string) (*Track, error) {
	body, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}

	var searchResult struct {
		Recordings []Track `json:"recordings"`
	}
	if err := json.Unmarshal(body, &searchResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recording search result: %w", err)
	}
	if len(searchResult.Recordings) == 0 {
		return nil, ErrNoRecording
	}
	return &searchResult.Recordings[0], nil
}

// SearchTrackByISRC searches for a recording using ISRC
func (c *Client) SearchTrackByISRC(ctx context.Context, isrc string) (*Track, error) {
	if isrc == "" {
		return nil, fmt.Errorf("ISRC cannot be empty")
	}

	query := fmt.Sprintf("isrc:\"%s\"", isrc)
	track, err := c.searchRecordings(ctx, fmt.Sprintf("recording?query=%s&limit=1", url.QueryEscape(query)))
	if err != nil {
		return nil, fmt.Errorf("failed to search track by ISRC %s: %w", isrc, err)
	}
	return track, nil
}

// SearchTrack searches for a recording by artist, album, and title
func (c *Client) SearchTrack(ctx context.Context, artist, album, title string) (*Track, error) {
	if artist == "" || title == "" {
		return nil, fmt.Errorf("artist and title cannot be empty")
	}

	query := buildTrackSearchQuery(artist, album, title)
	track, err := c.searchRecordings(ctx, fmt.Sprintf("recording?query=%s&limit=1", url.QueryEscape(query)))
	if err != nil {
		return nil, fmt.Errorf("failed to search track: %w", err)
	}
	return track, nil
}

// LookupByISRC resolves the identifiers written to the MUSICBRAINZ_* tags
// from the first recording carrying isrc.
func (c *Client) LookupByISRC(ctx context.Context, isrc string) (*shared.MusicBrainzIDs, error) {
	track, err := c.SearchTrackByISRC(ctx, isrc)
	if err != nil {
		return nil, err
	}
	return track.IDs(), nil
}

func buildTrackSearchQuery(artist, album, title string) string {
	if album == "" {
		return fmt.Sprintf("artist:\"%s\" AND recording:\"%s\"", artist, title)
	}
	return fmt.Sprintf("artist:\"%s\" AND release:\"%s\" AND recording:\"%s\"", artist, album, title)
}
