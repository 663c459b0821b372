package shared

import (
	"errors"
	"fmt"
)

// Audio quality labels understood by the catalog.
const (
	QualityLow      = "LOW"
	QualityHigh     = "HIGH"
	QualityLossless = "LOSSLESS"
	QualityHiRes    = "HI_RES_LOSSLESS"
)

// DefaultQuality is requested when the caller does not name one.
const DefaultQuality = QualityLossless

// AudioExtension is the container extension of every file placed in the library.
const AudioExtension = ".flac"

// LyricsExtension is the extension of the synced lyric sibling file.
const LyricsExtension = ".lrc"

// Sentinel errors. Everything "not found" wraps ErrNotFound so the boundary can
// map it to a single status code.
var (
	ErrNotFound       = errors.New("not found")
	ErrTrackNotFound  = fmt.Errorf("track %w", ErrNotFound)
	ErrStreamNotFound = fmt.Errorf("stream URL %w", ErrNotFound)
	ErrAlbumNotFound  = fmt.Errorf("album %w", ErrNotFound)
	ErrArtistNotFound = fmt.Errorf("artist %w", ErrNotFound)
)

// QueryParam is a single query string parameter for upstream requests.
type QueryParam struct {
	Name  string
	Value string
}

// ValidQuality reports whether q is one of the known quality labels.
func ValidQuality(q string) bool {
	switch q {
	case QualityLow, QualityHigh, QualityLossless, QualityHiRes:
		return true
	}
	return false
}

// SearchKind selects which entity collection a catalog search targets.
type SearchKind string

const (
	SearchTracks  SearchKind = "tracks"
	SearchAlbums  SearchKind = "albums"
	SearchArtists SearchKind = "artists"
)

// ParseSearchKind accepts both singular and plural spellings.
func ParseSearchKind(s string) (SearchKind, error) {
	switch s {
	case "track", "tracks":
		return SearchTracks, nil
	case "album", "albums":
		return SearchAlbums, nil
	case "artist", "artists":
		return SearchArtists, nil
	}
	return "", fmt.Errorf("unknown search type %q", s)
}

// Lyrics returned by a lyrics provider. Either field may be empty.
type Lyrics struct {
	ID           int64   `json:"id,omitempty"`
	TrackName    string  `json:"trackName,omitempty"`
	ArtistName   string  `json:"artistName,omitempty"`
	AlbumName    string  `json:"albumName,omitempty"`
	Duration     float64 `json:"duration,omitempty"`
	Instrumental bool    `json:"instrumental,omitempty"`
	SyncedLyrics string  `json:"syncedLyrics"`
	PlainLyrics  string  `json:"plainLyrics"`
}

// MusicBrainzIDs are the identifiers written to the MUSICBRAINZ_* tags.
type MusicBrainzIDs struct {
	TrackID       string
	AlbumID       string
	ArtistID      string
	AlbumArtistID string
}

// CandidateTrack is one entry of an externally generated playlist.
type CandidateTrack struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	MBID   string `json:"mbid"`
}

// ValidatedTrack is a candidate annotated with catalog and library matches.
type ValidatedTrack struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	MBID          string `json:"mbid"`
	TidalID       *int64 `json:"tidal_id"`
	TidalExists   bool   `json:"tidal_exists"`
	Album         string `json:"album"`
	LibraryExists bool   `json:"library_exists"`
}
