package interfaces

import (
	"context"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

// CatalogClient defines the upstream catalog contract. Every method returns
// the decoded payload as-is; shaping it is the normalizer's job. A nil
// payload with a nil error means the upstream has no such entity.
type CatalogClient interface {
	// Search runs a query for one entity kind: tracks, albums or artists
	Search(ctx context.Context, kind shared.SearchKind, query string) (any, error)

	// GetAlbum retrieves an album and its track listing by ID
	GetAlbum(ctx context.Context, albumID string) (any, error)

	// GetArtist retrieves the artist page by ID
	GetArtist(ctx context.Context, artistID string) (any, error)

	// GetTrack retrieves track metadata and stream details for a quality
	GetTrack(ctx context.Context, trackID int64, quality string) (any, error)
}

// LyricsProvider defines the lyrics lookup contract.
type LyricsProvider interface {
	// GetLyrics returns nil when no lyrics are known for the track
	GetLyrics(ctx context.Context, title, artist, album string, durationSeconds int) (*shared.Lyrics, error)
}

// RecordingLookup resolves MusicBrainz identifiers for a recording.
type RecordingLookup interface {
	LookupByISRC(ctx context.Context, isrc string) (*shared.MusicBrainzIDs, error)
}

// PlaylistSource produces candidate tracks for validation.
type PlaylistSource interface {
	// Name identifies the source in logs
	Name() string

	// Tracks returns the playlist title and its candidate tracks
	Tracks(ctx context.Context, ref string) (string, []shared.CandidateTrack, error)
}

// LibraryIndex answers whether a local library already holds a track.
type LibraryIndex interface {
	HasTrack(ctx context.Context, artist, title string) (bool, error)
}

// LoggerService defines the interface for logging
type LoggerService interface {
	// Info logs an informational message
	Info(message string, args ...interface{})

	// Warning logs a warning message
	Warning(message string, args ...interface{})

	// Error logs an error message
	Error(message string, args ...interface{})

	// Debug logs a debug message
	Debug(message string, args ...interface{})

	// Success logs a success message
	Success(message string, args ...interface{})

	// SetDebugMode enables or disables debug logging
	SetDebugMode(enabled bool)
}

// WarningCollectorService defines the interface for collecting warnings
type WarningCollectorService interface {
	AddTagWriteWarning(context, details string)
	AddLyricsWarning(context, details string)
	AddCoverArtDownloadWarning(context, details string)
	AddCoverArtMetadataWarning(context, details string)
	AddMusicBrainzTrackWarning(context, details string)
	AddPlacementWarning(context, details string)
	AddTrackSkippedWarning(trackPath string)

	// HasWarnings returns true if there are any warnings
	HasWarnings() bool

	// PrintSummary prints a summary of all warnings
	PrintSummary()
}
