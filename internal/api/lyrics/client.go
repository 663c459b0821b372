// Package lyrics is a client for the LrcLib lyrics database.
package lyrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

const requestTimeout = 10 * time.Second

// Client queries LrcLib.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a lyrics client rooted at baseURL (for example
// https://lrclib.net/api).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// GetLyrics fetches the best match for a track. It returns nil when LrcLib
// has no entry.
func (c *Client) GetLyrics(ctx context.Context, title, artist, album string, durationSeconds int) (*shared.Lyrics, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)
	if album != "" {
		params.Set("album_name", album)
	}
	if durationSeconds > 0 {
		params.Set("duration", strconv.Itoa(durationSeconds))
	}

	var result shared.Lyrics
	found, err := c.getJSON(ctx, "/get", params, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to get lyrics: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &result, nil
}

// Search returns every LrcLib entry matching the given fields. Empty fields
// are left out of the query; with no fields at all nothing is requested.
func (c *Client) Search(ctx context.Context, title, artist, album string) ([]shared.Lyrics, error) {
	params := url.Values{}
	if title != "" {
		params.Set("track_name", title)
	}
	if artist != "" {
		params.Set("artist_name", artist)
	}
	if album != "" {
		params.Set("album_name", album)
	}
	if len(params) == 0 {
		return []shared.Lyrics{}, nil
	}

	var results []shared.Lyrics
	found, err := c.getJSON(ctx, "/search", params, &results)
	if err != nil {
		return nil, fmt.Errorf("failed to search lyrics: %w", err)
	}
	if !found || results == nil {
		return []shared.Lyrics{}, nil
	}
	return results, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, shared.NewHTTPError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}
