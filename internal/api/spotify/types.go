package spotify

import (
	"sync"

	"github.com/zmb3/spotify/v2"
)

// SpotifyClient holds the spotify client and other required fields
type SpotifyClient struct {
	mu       sync.Mutex
	client   *spotify.Client
	ID       string
	Secret   string
	tokenURL string
	baseURL  string
}

// SpotifyTrack represents a track from Spotify
type SpotifyTrack struct {
	Name        string
	Artist      string
	AlbumName   string
	AlbumArtist string
}
