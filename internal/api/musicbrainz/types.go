package musicbrainz

import "github.com/mancube/tidaloader-opus/internal/shared"

// Artist represents a MusicBrainz artist
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ArtistCredit represents artist credit information
type ArtistCredit struct {
	Artist Artist `json:"artist"`
}

// ReleaseGroup represents a MusicBrainz release group
type ReleaseGroup struct {
	ID string `json:"id"`
}

// TrackRelease represents release information within a recording
type TrackRelease struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Date         string         `json:"date"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	ReleaseGroup ReleaseGroup   `json:"release-group"`
}

// Track represents a MusicBrainz recording
type Track struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []ArtistCredit `json:"artist-credit"`
	Releases     []TrackRelease `json:"releases"`
	Length       int            `json:"length"` // milliseconds
}

// IDs extracts the recording, release, artist and album artist identifiers.
// The first release and first credits are used.
func (t *Track) IDs() *shared.MusicBrainzIDs {
	ids := &shared.MusicBrainzIDs{TrackID: t.ID}
	if len(t.ArtistCredit) > 0 {
		ids.ArtistID = t.ArtistCredit[0].Artist.ID
	}
	if len(t.Releases) > 0 {
		release := t.Releases[0]
		ids.AlbumID = release.ID
		if len(release.ArtistCredit) > 0 {
			ids.AlbumArtistID = release.ArtistCredit[0].Artist.ID
		}
	}
	if ids.AlbumArtistID == "" {
		ids.AlbumArtistID = ids.ArtistID
	}
	return ids
}
