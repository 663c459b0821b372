package downloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

func trackPayload() map[string]any {
	return map[string]any{
		"id":              float64(42),
		"title":           "B",
		"trackNumber":     float64(3),
		"volumeNumber":    float64(1),
		"duration":        float64(215),
		"isrc":            "USRC17607839",
		"streamStartDate": "2019-05-01T00:00:00.000+0000",
		"artist":          map[string]any{"id": float64(7), "name": "A"},
		"album": map[string]any{
			"id":             float64(9),
			"title":          "C",
			"cover":          "aa-bb-cc",
			"numberOfTracks": float64(12),
			"artist":         map[string]any{"name": "A"},
		},
	}
}

func TestBuildMetadata(t *testing.T) {
	meta := BuildMetadata([]any{trackPayload()}, Request{TrackID: 42, Artist: "Fallback", Title: "Fallback"})

	assert.Equal(t, "B", meta.Title)
	assert.Equal(t, "A", meta.Artist)
	assert.Equal(t, "C", meta.Album)
	assert.Equal(t, "A", meta.AlbumArtist)
	assert.Equal(t, 3, meta.TrackNumber)
	assert.Equal(t, 12, meta.TotalTracks)
	assert.Equal(t, 1, meta.DiscNumber)
	assert.Equal(t, 215, meta.Duration)
	assert.Equal(t, "2019-05-01", meta.Date)
	assert.Equal(t, "https://resources.tidal.com/images/aa/bb/cc/1280x1280.jpg", meta.CoverURL)
	assert.Equal(t, filepath.Join("/music", "A", "C", "03 - B.flac"), meta.FinalPath("/music"))
}

func TestBuildMetadataFallsBackToRequest(t *testing.T) {
	meta := BuildMetadata(map[string]any{"id": float64(5)}, Request{TrackID: 5, Artist: "AC/DC", Title: "T.N.T."})

	assert.Equal(t, "AC/DC", meta.Artist)
	assert.Equal(t, "T.N.T.", meta.Title)
	assert.Equal(t, filepath.Join("AC_DC", "Unknown Album", "T.N.T.flac"), meta.RelativePath())

	meta = BuildMetadata("garbage", Request{Artist: "X", Title: "Y"})
	assert.Equal(t, "X", meta.FolderArtist())
	assert.Equal(t, "Unknown Artist", TrackMetadata{}.FolderArtist())
}

func TestTagsSkipUnknownValues(t *testing.T) {
	meta := TrackMetadata{Title: "C", Artist: "A", TrackNumber: 3}
	meta.SetMusicBrainzIDs(&shared.MusicBrainzIDs{TrackID: "mb-track"})

	assert.Equal(t, []TagField{
		{Name: "TITLE", Value: "C"},
		{Name: "ARTIST", Value: "A"},
		{Name: "TRACKNUMBER", Value: "3"},
		{Name: "MUSICBRAINZ_TRACKID", Value: "mb-track"},
	}, meta.Tags())
}

func TestPlaceMovesIntoLibrary(t *testing.T) {
	dir := t.TempDir()
	temp := filepath.Join(dir, ".incoming", "A - B.flac.part")
	final := filepath.Join(dir, "A", "C", "03 - B.flac")
	require.NoError(t, os.MkdirAll(filepath.Dir(temp), 0755))
	require.NoError(t, os.WriteFile(temp, []byte("new"), 0644))

	placed, err := Place(temp, final)
	require.NoError(t, err)
	assert.Equal(t, final, placed)
	assert.False(t, shared.FileExists(temp))
}

func TestPlaceKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	temp := filepath.Join(dir, "A - B.flac.part")
	final := filepath.Join(dir, "A", "C", "03 - B.flac")
	require.NoError(t, os.MkdirAll(filepath.Dir(final), 0755))
	require.NoError(t, os.WriteFile(final, []byte("old"), 0644))
	require.NoError(t, os.WriteFile(temp, []byte("new"), 0644))

	placed, err := Place(temp, final)
	require.NoError(t, err)
	assert.Equal(t, final, placed)
	assert.False(t, shared.FileExists(temp))

	data, err := os.ReadFile(final)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestWriteLyricsFile(t *testing.T) {
	dir := t.TempDir()
	lrc, err := WriteLyricsFile(filepath.Join(dir, "03 - B.flac"), "[00:01.00] hi")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "03 - B.lrc"), lrc)
}
