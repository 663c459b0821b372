package navidrome

import (
	"context"
	"fmt"
	"strings"

	subsonic "github.com/delucks/go-subsonic"
)

// Authenticate authenticates the client with the navidrome api
func (n *NavidromeClient) Authenticate() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.authenticateLocked()
}

func (n *NavidromeClient) authenticateLocked() error {
	if n.authenticated {
		return nil
	}
	if n.URL == "" || n.Username == "" {
		return fmt.Errorf("navidrome URL and username are required")
	}

	n.client = subsonic.Client{
		Client:       n.HTTPClient,
		BaseUrl:      strings.TrimSuffix(n.URL, "/"),
		User:         n.Username,
		ClientName:   clientName,
		PasswordAuth: true,
	}
	if err := n.client.Authenticate(n.Password); err != nil {
		return fmt.Errorf("navidrome authentication failed: %w", err)
	}
	n.authenticated = true
	return nil
}

// SearchTrack searches the library for a song by title and artist. It
// returns nil when nothing matches.
func (n *NavidromeClient) SearchTrack(trackName, artistName string) (*subsonic.Child, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.authenticateLocked(); err != nil {
		return nil, err
	}

	combinedQuery := fmt.Sprintf("%s %s", trackName, artistName)
	searchResult, err := n.client.Search2(combinedQuery, map[string]string{"songCount": "5"})
	if err != nil {
		return nil, fmt.Errorf("error searching for '%s': %w", combinedQuery, err)
	}
	if song := matchSong(searchResult, trackName, artistName); song != nil {
		return song, nil
	}

	// search is fuzzy on the combined query; retry on the title alone
	searchResult, err = n.client.Search2(trackName, map[string]string{"songCount": "10"})
	if err != nil {
		return nil, fmt.Errorf("error searching for '%s': %w", trackName, err)
	}
	return matchSong(searchResult, trackName, artistName), nil
}

// HasTrack reports whether the library already holds the track.
func (n *NavidromeClient) HasTrack(ctx context.Context, artist, title string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	song, err := n.SearchTrack(title, artist)
	if err != nil {
		return false, err
	}
	return song != nil, nil
}

func matchSong(result *subsonic.SearchResult2, title, artist string) *subsonic.Child {
	if result == nil {
		return nil
	}
	for _, song := range result.Song {
		if song == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(song.Title), strings.TrimSpace(title)) &&
			strings.EqualFold(strings.TrimSpace(song.Artist), strings.TrimSpace(artist)) {
			return song
		}
	}
	return nil
}
