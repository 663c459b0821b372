package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

// Option configures a SpotifyClient.
type Option func(*SpotifyClient)

// WithEndpoints points the client at alternative token and API URLs.
func WithEndpoints(tokenURL, baseURL string) Option {
	return func(s *SpotifyClient) {
		s.tokenURL = tokenURL
		s.baseURL = baseURL
	}
}

// NewSpotifyClient creates a new spotify client
func NewSpotifyClient(id, secret string, opts ...Option) *SpotifyClient {
	s := &SpotifyClient{
		ID:       id,
		Secret:   secret,
		tokenURL: spotifyauth.TokenURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the playlist source.
func (s *SpotifyClient) Name() string { return "spotify" }

// Authenticate authenticates the client with the spotify api using the
// client credentials flow.
func (s *SpotifyClient) Authenticate(ctx context.Context) error {
	if s.ID == "" || s.Secret == "" {
		return fmt.Errorf("spotify client ID and secret are required")
	}
	config := &clientcredentials.Config{
		ClientID:     s.ID,
		ClientSecret: s.Secret,
		TokenURL:     s.tokenURL,
	}
	if _, err := config.Token(ctx); err != nil {
		return fmt.Errorf("spotify authentication failed: %w", err)
	}

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}

	s.mu.Lock()
	s.client = spotify.New(config.Client(context.Background()), opts...)
	s.mu.Unlock()
	return nil
}

func (s *SpotifyClient) authenticated(ctx context.Context) (*spotify.Client, error) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client != nil {
		return client, nil
	}
	if err := s.Authenticate(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client, nil
}

// ParseID extracts the entity kind and ID from an open.spotify.com URL, a
// spotify:kind:id URI, or a bare ID (taken as a playlist).
func ParseID(ref string) (kind string, id spotify.ID, err error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", "", fmt.Errorf("empty spotify reference")
	}

	if strings.HasPrefix(ref, "spotify:") {
		parts := strings.Split(ref, ":")
		if len(parts) != 3 || parts[2] == "" {
			return "", "", fmt.Errorf("invalid spotify URI %q", ref)
		}
		return parts[1], spotify.ID(parts[2]), nil
	}

	if !strings.Contains(ref, "/") {
		return "playlist", spotify.ID(ref), nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", "", fmt.Errorf("invalid spotify URL: %w", err)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	// localized links look like /intl-de/playlist/<id>
	if len(segments) > 0 && strings.HasPrefix(segments[0], "intl-") {
		segments = segments[1:]
	}
	if len(segments) < 2 || segments[1] == "" {
		return "", "", fmt.Errorf("invalid spotify URL %q", ref)
	}
	return segments[0], spotify.ID(segments[1]), nil
}

// Tracks resolves a playlist or album reference into candidate tracks.
func (s *SpotifyClient) Tracks(ctx context.Context, ref string) (string, []shared.CandidateTrack, error) {
	kind, _, err := ParseID(ref)
	if err != nil {
		return "", nil, err
	}

	var (
		name   string
		tracks []SpotifyTrack
	)
	switch kind {
	case "playlist":
		tracks, name, err = s.GetPlaylistTracks(ctx, ref)
	case "album":
		tracks, name, err = s.GetAlbumTracks(ctx, ref)
	default:
		return "", nil, fmt.Errorf("unsupported spotify link type %q", kind)
	}
	if err != nil {
		return "", nil, err
	}

	candidates := make([]shared.CandidateTrack, 0, len(tracks))
	for _, t := range tracks {
		candidates = append(candidates, shared.CandidateTrack{Title: t.Name, Artist: t.Artist})
	}
	return name, candidates, nil
}

// GetPlaylistTracks gets every track from a spotify playlist
func (s *SpotifyClient) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]SpotifyTrack, string, error) {
	kind, playlistID, err := ParseID(playlistURL)
	if err != nil {
		return nil, "", err
	}
	if kind != "playlist" {
		return nil, "", fmt.Errorf("invalid playlist URL")
	}

	client, err := s.authenticated(ctx)
	if err != nil {
		return nil, "", err
	}

	playlist, err := client.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}

	var tracks []SpotifyTrack
	for {
		for _, item := range playlist.Tracks.Tracks {
			if item.Track.ID == "" && item.Track.Name == "" {
				continue
			}
			tracks = append(tracks, fromFullTrack(item.Track))
		}
		err := client.NextPage(ctx, &playlist.Tracks)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to page playlist %s: %w", playlistID, err)
		}
	}

	return tracks, playlist.Name, nil
}

// GetAlbumTracks gets the tracks from a spotify album
func (s *SpotifyClient) GetAlbumTracks(ctx context.Context, albumURL string) ([]SpotifyTrack, string, error) {
	kind, albumID, err := ParseID(albumURL)
	if err != nil {
		return nil, "", err
	}
	if kind != "album" {
		return nil, "", fmt.Errorf("invalid album URL")
	}

	client, err := s.authenticated(ctx)
	if err != nil {
		return nil, "", err
	}

	album, err := client.GetAlbum(ctx, albumID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get album %s: %w", albumID, err)
	}

	albumArtist := ""
	if len(album.Artists) > 0 {
		albumArtist = album.Artists[0].Name
	}

	var tracks []SpotifyTrack
	for {
		for _, track := range album.Tracks.Tracks {
			tracks = append(tracks, SpotifyTrack{
				Name:        track.Name,
				Artist:      firstArtist(track.Artists),
				AlbumName:   album.Name,
				AlbumArtist: albumArtist,
			})
		}
		err := client.NextPage(ctx, &album.Tracks)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to page album %s: %w", albumID, err)
		}
	}

	return tracks, album.Name, nil
}

func fromFullTrack(track spotify.FullTrack) SpotifyTrack {
	return SpotifyTrack{
		Name:        track.Name,
		Artist:      firstArtist(track.Artists),
		AlbumName:   track.Album.Name,
		AlbumArtist: firstArtist(track.Album.Artists),
	}
}

func firstArtist(artists []spotify.SimpleArtist) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0].Name
}
