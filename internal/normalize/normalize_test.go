package normalize

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func ids(objs []Object) []int64 {
	out := make([]int64, 0, len(objs))
	for _, o := range objs {
		id, _ := o.Int("id")
		out = append(out, id)
	}
	return out
}

func TestExtractItemsShapesAgree(t *testing.T) {
	payloads := map[string]string{
		"bare list":             `[{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]`,
		"wrapper with items":    `[{"tracks": {"items": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}}]`,
		"wrapper with list":     `[{"tracks": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}]`,
		"dict keyed by entity":  `{"tracks": {"items": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}}`,
		"dict with items":       `{"items": [{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]}`,
		"wrapper without items": `[{"id": 1, "title": "a"}, {"id": 2, "title": "b"}]`,
	}

	for name, raw := range payloads {
		t.Run(name, func(t *testing.T) {
			got := ExtractItems(decode(t, raw), "tracks")
			assert.Equal(t, []int64{1, 2}, ids(got))
			assert.Equal(t, "b", got[1].String("title"))
		})
	}
}

func TestExtractItemsUnrecognised(t *testing.T) {
	for _, raw := range []string{`null`, `[]`, `{}`, `"text"`, `42`, `{"other": 1}`} {
		got := ExtractItems(decode(t, raw), "albums")
		assert.NotNil(t, got, raw)
		assert.Empty(t, got, raw)
	}

	// keyed entry that is not a collection falls back to the outer list
	got := ExtractItems(decode(t, `[{"albums": "nope", "id": 7}]`), "albums")
	assert.Equal(t, []int64{7}, ids(got))
}

func TestClassify(t *testing.T) {
	assert.IsType(t, ListShape{}, Classify(decode(t, `[1, 2]`), "tracks"))
	assert.IsType(t, WrapperShape{}, Classify(decode(t, `[{"tracks": []}]`), "tracks"))
	assert.IsType(t, DictShape{}, Classify(decode(t, `{"items": []}`), "tracks"))
	assert.Nil(t, Classify(nil, "tracks"))
	assert.Nil(t, Classify(decode(t, `{}`), "tracks"))
}

func TestExtractTrackData(t *testing.T) {
	listPayload := decode(t, `[{"id": 9, "title": "Album"}, {"items": [{"id": 1}, {"id": 2}]}]`)
	assert.Equal(t, []int64{1, 2}, ids(ExtractTrackData(listPayload)))

	dictPayload := decode(t, `{"id": 9, "items": [{"id": 3}]}`)
	assert.Equal(t, []int64{3}, ids(ExtractTrackData(dictPayload)))

	assert.Empty(t, ExtractTrackData(decode(t, `[{"id": 1}]`)))
	assert.Empty(t, ExtractTrackData(nil))
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestExtractStreamURL(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{
			name: "direct url wins over manifest",
			payload: []any{
				map[string]any{"manifest": b64(`{"urls": ["http://manifest"]}`)},
				map[string]any{"OriginalTrackUrl": "http://direct"},
			},
			want: "http://direct",
		},
		{
			name:    "json manifest",
			payload: map[string]any{"manifest": b64(`{"mimeType": "audio/flac", "urls": ["http://x"]}`)},
			want:    "http://x",
		},
		{
			name:    "free text manifest",
			payload: map[string]any{"manifest": b64("stream at https://cdn.example/seg.flac?token=1 expires soon")},
			want:    "https://cdn.example/seg.flac?token=1",
		},
		{
			name:    "json manifest without urls falls back to text",
			payload: map[string]any{"manifest": b64(`{"note": "see https://fallback/a"}`)},
			want:    "https://fallback/a",
		},
		{
			name:    "undecodable manifest",
			payload: map[string]any{"manifest": "***"},
			want:    "",
		},
		{
			name:    "neither",
			payload: []any{map[string]any{"id": 1}, "junk", nil},
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStreamURL(tt.payload))
		})
	}
}

func TestAlbumTracksMergesAlbum(t *testing.T) {
	payload := decode(t, `[
		{"id": 10, "title": "Outer", "cover": "aa-bb", "releaseDate": "2020-01-01",
		 "numberOfTracks": 2, "numberOfVolumes": 1, "artist": {"id": 5, "name": "Band"}},
		{"items": [
			{"item": {"id": 1, "title": "One", "duration": 100, "artist": {"name": "Band"},
			          "album": {"title": "Deluxe"}, "audioQuality": "LOSSLESS"}},
			{"item": {"id": 2, "title": "Two", "artists": [{"name": "Guest"}]}},
			{"item": "broken"},
			{"title": "No id"}
		]}
	]`)

	listing := AlbumTracks(payload)

	require.NotNil(t, listing.Album)
	assert.Equal(t, int64(10), listing.Album.ID)
	assert.Equal(t, "Outer", listing.Album.Title)
	assert.Equal(t, &ArtistRef{ID: 5, Name: "Band"}, listing.Album.Artist)
	assert.Equal(t, 2, listing.Album.NumberOfTracks)

	require.Len(t, listing.Items, 2)
	first := listing.Items[0]
	assert.Equal(t, "Deluxe", first.Album, "track album fields override")
	assert.Equal(t, "aa-bb", first.Cover, "album fills gaps")
	assert.Equal(t, "LOSSLESS", first.Quality)
	assert.Equal(t, 100, first.Duration)

	second := listing.Items[1]
	assert.Equal(t, "Outer", second.Album)
	assert.Equal(t, "Guest", second.Artist)

	// merging never writes into the upstream payload
	items := payload.([]any)[1].(map[string]any)["items"].([]any)
	raw := items[0].(map[string]any)["item"].(map[string]any)
	assert.Equal(t, map[string]any{"title": "Deluxe"}, raw["album"])
}

func TestAlbumTracksDictPayload(t *testing.T) {
	listing := AlbumTracks(decode(t, `{"id": 3, "title": "Solo", "items": [{"id": 1, "title": "t", "artist": "Plain"}]}`))
	require.NotNil(t, listing.Album)
	require.Len(t, listing.Items, 1)
	assert.Equal(t, "Plain", listing.Items[0].Artist)
	assert.Equal(t, "Solo", listing.Items[0].Album)

	empty := AlbumTracks(nil)
	assert.Nil(t, empty.Album)
	assert.NotNil(t, empty.Items)
}

func TestScanArtistFindsFirstArtistAndCollections(t *testing.T) {
	payload := decode(t, `{
		"id": 1, "name": "Real Artist", "type": "MAIN",
		"modules": [
			{"title": "Top", "pagedList": {"items": [
				{"id": 100, "title": "Low", "duration": 1, "album": {}, "popularity": 5},
				{"id": 101, "title": "High", "duration": 1, "album": {}, "popularity": 90},
				{"id": 102, "title": "None", "duration": 1, "album": {}}
			]}},
			{"pagedList": {"items": [
				{"item": {"id": 200, "title": "Old", "cover": "c", "releaseDate": "1999-05-01"}},
				{"item": {"id": 201, "title": "New", "cover": "c", "releaseDate": "2021-03-04T00:00:00.000+0000"}},
				{"item": {"id": 202, "title": "Undated", "cover": "c"}}
			]}}
		],
		"related": {"id": 2, "name": "Other Artist", "type": "MAIN"}
	}`)

	page := ScanArtist(payload, 1)

	assert.Equal(t, "Real Artist", page.Artist.Name)
	assert.Equal(t, []int64{101, 100, 102}, trackIDs(page.Tracks))
	assert.Equal(t, []int64{201, 200, 202}, albumIDs(page.Albums))
}

func trackIDs(ts []Track) []int64 {
	out := make([]int64, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func albumIDs(as []Album) []int64 {
	out := make([]int64, len(as))
	for i, a := range as {
		out[i] = a.ID
	}
	return out
}

func TestScanArtistCapsAndOrdersTracks(t *testing.T) {
	items := make([]any, 0, 80)
	for i := 0; i < 80; i++ {
		items = append(items, map[string]any{
			"id": float64(i), "title": fmt.Sprint(i), "duration": float64(1),
			"album":      map[string]any{},
			"popularity": float64(i % 7),
		})
	}
	page := ScanArtist(map[string]any{"items": items}, 9)

	require.Len(t, page.Tracks, 50)
	for i := 1; i < len(page.Tracks); i++ {
		assert.GreaterOrEqual(t, page.Tracks[i-1].Popularity, page.Tracks[i].Popularity)
		if page.Tracks[i-1].Popularity == page.Tracks[i].Popularity {
			assert.Less(t, page.Tracks[i-1].ID, page.Tracks[i].ID, "ties keep encounter order")
		}
	}
}

func TestScanArtistFallbacks(t *testing.T) {
	fromTrack := ScanArtist(decode(t, `{"items": [
		{"id": 1, "title": "t", "duration": 1, "album": {}, "artist": {"id": 4, "name": "Via Track"}}
	]}`), 99)
	assert.Equal(t, Artist{ID: 4, Name: "Via Track"}, fromTrack.Artist)

	fromAlbum := ScanArtist(decode(t, `{"items": [
		{"id": 1, "title": "a", "cover": "c", "artist": {"id": 6, "name": "Via Album"}}
	]}`), 99)
	assert.Equal(t, Artist{ID: 6, Name: "Via Album"}, fromAlbum.Artist)

	placeholder := ScanArtist(decode(t, `{"items": []}`), 99)
	assert.Equal(t, Artist{ID: 99, Name: "Unknown Artist"}, placeholder.Artist)
	assert.NotNil(t, placeholder.Tracks)
	assert.NotNil(t, placeholder.Albums)
}

func TestScanArtistSurvivesCyclesAndDepth(t *testing.T) {
	loop := map[string]any{"id": float64(1), "name": "Loop", "type": "MAIN"}
	loop["self"] = loop
	loop["list"] = []any{loop, map[string]any{"back": loop}}

	page := ScanArtist(loop, 1)
	assert.Equal(t, "Loop", page.Artist.Name)

	// an artist buried past the depth limit is not reached
	var deep any = map[string]any{"id": float64(7), "name": "Deep", "type": "MAIN"}
	for i := 0; i < 12; i++ {
		deep = map[string]any{"next": deep}
	}
	assert.Equal(t, "Unknown Artist", ScanArtist(deep, 3).Artist.Name)
}

func TestTrackFromObjectSearchShape(t *testing.T) {
	o, ok := AsObject(decode(t, `{"id": "42", "title": "B", "artist": {"name": "A"},
		"album": {"title": "C", "cover": "ab-cd"}, "duration": 201, "audioQuality": "LOSSLESS"}`))
	require.True(t, ok)

	track, ok := TrackFromObject(o)
	require.True(t, ok)
	assert.Equal(t, Track{ID: 42, Title: "B", Artist: "A", Album: "C", Duration: 201, Cover: "ab-cd", Quality: "LOSSLESS"}, track)

	_, ok = TrackFromObject(Object{"title": "no id"})
	assert.False(t, ok)
}

func TestTrackObject(t *testing.T) {
	o, ok := TrackObject(decode(t, `[{"id": 1}, {"manifest": "x"}]`))
	require.True(t, ok)
	assert.Equal(t, "1", fmt.Sprint(o["id"]))

	o, ok = TrackObject(decode(t, `{"id": 2}`))
	require.True(t, ok)
	assert.Equal(t, "2", fmt.Sprint(o["id"]))

	_, ok = TrackObject(decode(t, `[]`))
	assert.False(t, ok)
	_, ok = TrackObject(decode(t, `["text"]`))
	assert.False(t, ok)
}
