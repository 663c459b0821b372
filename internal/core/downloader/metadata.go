package downloader

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mancube/tidaloader-opus/internal/normalize"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

const coverURLTemplate = "https://resources.tidal.com/images/%s/1280x1280.jpg"

// TrackMetadata is everything known about a track before it is tagged.
// Zero values mean unknown and are never written as tags.
type TrackMetadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Date        string
	TrackNumber int
	TotalTracks int
	DiscNumber  int
	Genre       string
	Duration    int // seconds
	ISRC        string
	CoverURL    string

	MusicBrainzTrackID       string
	MusicBrainzAlbumID       string
	MusicBrainzArtistID      string
	MusicBrainzAlbumArtistID string

	Lyrics string
}

// BuildMetadata reads a track lookup payload. The request's artist and title
// fill in when the payload lacks them.
func BuildMetadata(payload any, req Request) TrackMetadata {
	meta := TrackMetadata{Title: req.Title, Artist: req.Artist}

	track, ok := normalize.TrackObject(payload)
	if !ok {
		return meta
	}

	if title := track.String("title"); title != "" {
		meta.Title = title
	}
	meta.TrackNumber = intField(track, "trackNumber")
	meta.DiscNumber = intField(track, "volumeNumber")
	meta.Duration = intField(track, "duration")
	meta.ISRC = track.String("isrc")
	meta.Genre = track.String("genre")
	if start := track.String("streamStartDate"); start != "" {
		meta.Date, _, _ = strings.Cut(start, "T")
	}
	if artist, ok := track.Object("artist"); ok {
		if name := artist.String("name"); name != "" {
			meta.Artist = name
		}
	}

	if album, ok := track.Object("album"); ok {
		meta.Album = album.String("title")
		meta.TotalTracks = intField(album, "numberOfTracks")
		if released := album.String("releaseDate"); released != "" {
			meta.Date = released
		}
		if cover := album.String("cover"); cover != "" {
			meta.CoverURL = CoverURL(cover)
		}
		if albumArtist, ok := album.Object("artist"); ok {
			meta.AlbumArtist = albumArtist.String("name")
		}
	}
	return meta
}

// CoverURL turns a catalog cover identifier into a 1280px image URL.
func CoverURL(coverID string) string {
	return fmt.Sprintf(coverURLTemplate, strings.ReplaceAll(coverID, "-", "/"))
}

func intField(o normalize.Object, key string) int {
	n, ok := o.Int(key)
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

// FolderArtist is the artist directory name source: album artist first.
func (m TrackMetadata) FolderArtist() string {
	if m.AlbumArtist != "" {
		return m.AlbumArtist
	}
	if m.Artist != "" {
		return m.Artist
	}
	return "Unknown Artist"
}

// FolderAlbum is the album directory name source.
func (m TrackMetadata) FolderAlbum() string {
	if m.Album != "" {
		return m.Album
	}
	return "Unknown Album"
}

// Filename is the audio file name inside the album directory.
func (m TrackMetadata) Filename() string {
	return shared.GetTrackFilename(m.TrackNumber, m.Title)
}

// RelativePath is the library-relative location of the audio file.
func (m TrackMetadata) RelativePath() string {
	return filepath.Join(
		shared.SanitizePathComponent(m.FolderArtist()),
		shared.SanitizePathComponent(m.FolderAlbum()),
		m.Filename(),
	)
}

// FinalPath is the canonical location of the audio file under root.
func (m TrackMetadata) FinalPath(root string) string {
	return filepath.Join(root, m.RelativePath())
}

// TagField is one Vorbis comment.
type TagField struct {
	Name  string
	Value string
}

// Tags maps the metadata onto Vorbis comment fields, skipping unknown values.
func (m TrackMetadata) Tags() []TagField {
	var fields []TagField
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, TagField{Name: name, Value: value})
		}
	}
	addInt := func(name string, value int) {
		if value > 0 {
			add(name, strconv.Itoa(value))
		}
	}

	add("TITLE", m.Title)
	add("ARTIST", m.Artist)
	add("ALBUM", m.Album)
	add("ALBUMARTIST", m.AlbumArtist)
	add("DATE", m.Date)
	addInt("TRACKNUMBER", m.TrackNumber)
	addInt("TRACKTOTAL", m.TotalTracks)
	addInt("DISCNUMBER", m.DiscNumber)
	add("GENRE", m.Genre)
	add("ISRC", m.ISRC)
	add("MUSICBRAINZ_TRACKID", m.MusicBrainzTrackID)
	add("MUSICBRAINZ_ALBUMID", m.MusicBrainzAlbumID)
	add("MUSICBRAINZ_ARTISTID", m.MusicBrainzArtistID)
	add("MUSICBRAINZ_ALBUMARTISTID", m.MusicBrainzAlbumArtistID)
	add("LYRICS", m.Lyrics)
	return fields
}

// SetMusicBrainzIDs copies resolved identifiers onto the metadata.
func (m *TrackMetadata) SetMusicBrainzIDs(ids *shared.MusicBrainzIDs) {
	if ids == nil {
		return
	}
	m.MusicBrainzTrackID = ids.TrackID
	m.MusicBrainzAlbumID = ids.AlbumID
	m.MusicBrainzArtistID = ids.ArtistID
	m.MusicBrainzAlbumArtistID = ids.AlbumArtistID
}
