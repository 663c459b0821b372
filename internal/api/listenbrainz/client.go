// Package listenbrainz reads the "created for" playlists ListenBrainz
// publishes for a user, such as the weekly jams generated by troi.
package listenbrainz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

// DefaultPlaylistType is generated when the caller does not pick one.
const DefaultPlaylistType = "periodic-jams"

const (
	jspfExtension  = `extension.https://musicbrainz\.org/doc/jspf\#playlist`
	sourcePatchKey = jspfExtension + `.additional_metadata.algorithm_metadata.source_patch`
	trackExtension = `extension.https://musicbrainz\.org/doc/jspf\#track`
	recordingURL   = "https://musicbrainz.org/recording/"
)

// Client talks to the ListenBrainz API.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	playlistType string
}

// NewClient creates a ListenBrainz client. playlistType selects which
// generated playlist Tracks returns.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   httpClient,
		playlistType: DefaultPlaylistType,
	}
}

// WithPlaylistType returns a copy of c selecting playlistType.
func (c *Client) WithPlaylistType(playlistType string) *Client {
	cp := *c
	if playlistType != "" {
		cp.playlistType = playlistType
	}
	return &cp
}

// Name identifies the playlist source.
func (c *Client) Name() string { return "listenbrainz" }

// Tracks returns the newest generated playlist of the configured type for
// username.
func (c *Client) Tracks(ctx context.Context, username string) (string, []shared.CandidateTrack, error) {
	if username == "" {
		return "", nil, fmt.Errorf("username is required")
	}

	mbid, title, err := c.FindPlaylist(ctx, username, c.playlistType)
	if err != nil {
		return "", nil, err
	}
	tracks, err := c.PlaylistTracks(ctx, mbid)
	if err != nil {
		return "", nil, err
	}
	return title, tracks, nil
}

// FindPlaylist picks the first "created for" playlist whose source patch
// matches playlistType and returns its MBID and title.
func (c *Client) FindPlaylist(ctx context.Context, username, playlistType string) (string, string, error) {
	body, err := c.get(ctx, fmt.Sprintf("/1/user/%s/playlists/createdfor", url.PathEscape(username)))
	if err != nil {
		return "", "", fmt.Errorf("failed to list playlists for %s: %w", username, err)
	}

	var mbid, title string
	gjson.GetBytes(body, "playlists").ForEach(func(_, entry gjson.Result) bool {
		playlist := entry.Get("playlist")
		if !matchesType(playlist.Get(sourcePatchKey).String(), playlistType) {
			return true
		}
		mbid = identifierMBID(playlist.Get("identifier").String())
		title = playlist.Get("title").String()
		return mbid == ""
	})

	if mbid == "" {
		return "", "", fmt.Errorf("no %s playlist for %s: %w", playlistType, username, shared.ErrNotFound)
	}
	return mbid, title, nil
}

// PlaylistTracks fetches a playlist by MBID.
func (c *Client) PlaylistTracks(ctx context.Context, mbid string) ([]shared.CandidateTrack, error) {
	body, err := c.get(ctx, "/1/playlist/"+url.PathEscape(mbid))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", mbid, err)
	}

	items := gjson.GetBytes(body, "playlist.track").Array()
	tracks := make([]shared.CandidateTrack, 0, len(items))
	for _, item := range items {
		title := item.Get("title").String()
		if title == "" {
			continue
		}
		artist := item.Get("creator").String()
		if artist == "" {
			artist = item.Get(trackExtension + ".artist_identifiers.0").String()
		}
		tracks = append(tracks, shared.CandidateTrack{
			Title:  title,
			Artist: artist,
			MBID:   identifierMBID(firstIdentifier(item.Get("identifier"))),
		})
	}
	return tracks, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewHTTPError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON from %s", path)
	}
	return body, nil
}

// matchesType compares a playlist's source patch with the requested type.
// "periodic-jams" stands for any of the weekly/daily jams patches.
func matchesType(sourcePatch, playlistType string) bool {
	if sourcePatch == "" {
		return false
	}
	if sourcePatch == playlistType {
		return true
	}
	return playlistType == DefaultPlaylistType && strings.HasSuffix(sourcePatch, "-jams")
}

// identifierMBID returns the trailing path segment of a JSPF identifier URL.
func identifierMBID(identifier string) string {
	identifier = strings.TrimSuffix(identifier, "/")
	if i := strings.LastIndex(identifier, "/"); i >= 0 {
		return identifier[i+1:]
	}
	return identifier
}

// JSPF track identifiers are either a string or a list of strings.
func firstIdentifier(v gjson.Result) string {
	if v.IsArray() {
		for _, id := range v.Array() {
			if strings.HasPrefix(id.String(), recordingURL) {
				return id.String()
			}
		}
		return v.Get("0").String()
	}
	return v.String()
}
