// Package search queries the catalog and returns normalized entities.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/normalize"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// Results holds the entities of one search. Only the slice for the
// requested kind is populated.
type Results struct {
	Kind    shared.SearchKind  `json:"-"`
	Tracks  []normalize.Track  `json:"tracks,omitempty"`
	Albums  []normalize.Album  `json:"albums,omitempty"`
	Artists []normalize.Artist `json:"artists,omitempty"`
}

// Items returns the populated slice for the result kind.
func (r Results) Items() any {
	switch r.Kind {
	case shared.SearchAlbums:
		return r.Albums
	case shared.SearchArtists:
		return r.Artists
	default:
		return r.Tracks
	}
}

// Len is the number of entities found.
func (r Results) Len() int {
	return len(r.Tracks) + len(r.Albums) + len(r.Artists)
}

// Service shapes catalog responses for the boundary and the CLI.
type Service struct {
	catalog interfaces.CatalogClient
	logger  interfaces.LoggerService
}

// NewService creates a search service. logger may be nil.
func NewService(catalog interfaces.CatalogClient, logger interfaces.LoggerService) *Service {
	return &Service{catalog: catalog, logger: logger}
}

// Search runs query against one entity kind.
func (s *Service) Search(ctx context.Context, kind shared.SearchKind, query string) (Results, error) {
	results := Results{Kind: kind}
	if query == "" {
		return results, fmt.Errorf("search query is required")
	}

	s.debug("Searching %s for '%s'", kind, query)
	payload, err := s.catalog.Search(ctx, kind, query)
	if err != nil {
		return results, fmt.Errorf("failed to search %s: %w", kind, err)
	}

	items := normalize.ExtractItems(payload, string(kind))
	switch kind {
	case shared.SearchAlbums:
		results.Albums = normalize.Albums(items)
	case shared.SearchArtists:
		results.Artists = normalize.Artists(items)
	default:
		results.Tracks = normalize.Tracks(items)
	}
	s.debug("Found %d %s for '%s'", results.Len(), kind, query)
	return results, nil
}

// Tracks searches for tracks.
func (s *Service) Tracks(ctx context.Context, query string) ([]normalize.Track, error) {
	r, err := s.Search(ctx, shared.SearchTracks, query)
	return r.Tracks, err
}

// Albums searches for albums.
func (s *Service) Albums(ctx context.Context, query string) ([]normalize.Album, error) {
	r, err := s.Search(ctx, shared.SearchAlbums, query)
	return r.Albums, err
}

// Artists searches for artists.
func (s *Service) Artists(ctx context.Context, query string) ([]normalize.Artist, error) {
	r, err := s.Search(ctx, shared.SearchArtists, query)
	return r.Artists, err
}

// AlbumTracks returns the track listing of an album with the album merged
// into each track.
func (s *Service) AlbumTracks(ctx context.Context, albumID string) (normalize.AlbumListing, error) {
	payload, err := s.catalog.GetAlbum(ctx, albumID)
	if err != nil {
		return normalize.AlbumListing{}, fmt.Errorf("failed to get album %s: %w", albumID, err)
	}
	if isEmpty(payload) {
		return normalize.AlbumListing{}, shared.ErrAlbumNotFound
	}
	return normalize.AlbumTracks(payload), nil
}

// Artist returns the artist page: the artist, their top tracks and their
// albums newest first.
func (s *Service) Artist(ctx context.Context, artistID int64) (normalize.ArtistPage, error) {
	payload, err := s.catalog.GetArtist(ctx, strconv.FormatInt(artistID, 10))
	if err != nil {
		return normalize.ArtistPage{}, fmt.Errorf("failed to get artist %d: %w", artistID, err)
	}
	if isEmpty(payload) {
		return normalize.ArtistPage{}, shared.ErrArtistNotFound
	}
	page := normalize.ScanArtist(payload, artistID)
	s.debug("Artist %d: %d tracks, %d albums", artistID, len(page.Tracks), len(page.Albums))
	return page, nil
}

func isEmpty(payload any) bool {
	switch v := payload.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func (s *Service) debug(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(format, args...)
	}
}
