package listenbrainz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

const createdFor = `{"playlists": [
	{"playlist": {"title": "Top Discoveries", "identifier": "https://listenbrainz.org/playlist/aaa",
		"extension": {"https://musicbrainz.org/doc/jspf#playlist": {"additional_metadata":
			{"algorithm_metadata": {"source_patch": "top-discoveries-for-year"}}}}}},
	{"playlist": {"title": "Weekly Jams for bob", "identifier": "https://listenbrainz.org/playlist/bbb",
		"extension": {"https://musicbrainz.org/doc/jspf#playlist": {"additional_metadata":
			{"algorithm_metadata": {"source_patch": "weekly-jams"}}}}}}
]}`

const playlist = `{"playlist": {"title": "Weekly Jams for bob", "track": [
	{"title": "B", "creator": "A", "identifier": ["https://musicbrainz.org/recording/rec-1"]},
	{"title": "", "creator": "skipped"},
	{"title": "E", "creator": "D", "identifier": "https://musicbrainz.org/recording/rec-2"}
]}}`

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/1/user/bob/playlists/createdfor", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(createdFor))
	})
	mux.HandleFunc("/1/playlist/bbb", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(playlist))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTracksPicksJamsPlaylist(t *testing.T) {
	srv := newServer(t)

	title, tracks, err := NewClient(srv.URL, nil).Tracks(context.Background(), "bob")
	require.NoError(t, err)

	assert.Equal(t, "Weekly Jams for bob", title)
	assert.Equal(t, []shared.CandidateTrack{
		{Title: "B", Artist: "A", MBID: "rec-1"},
		{Title: "E", Artist: "D", MBID: "rec-2"},
	}, tracks)
}

func TestFindPlaylistByExactType(t *testing.T) {
	srv := newServer(t)

	mbid, _, err := NewClient(srv.URL, nil).FindPlaylist(context.Background(), "bob", "top-discoveries-for-year")
	require.NoError(t, err)
	assert.Equal(t, "aaa", mbid)

	_, _, err = NewClient(srv.URL, nil).FindPlaylist(context.Background(), "bob", "daily-jams-exact")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUnknownUser(t *testing.T) {
	srv := newServer(t)

	_, _, err := NewClient(srv.URL, nil).WithPlaylistType("weekly-jams").Tracks(context.Background(), "alice")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, _, err = NewClient(srv.URL, nil).Tracks(context.Background(), "")
	assert.Error(t, err)
}

func TestMatchesType(t *testing.T) {
	assert.True(t, matchesType("weekly-jams", "periodic-jams"))
	assert.True(t, matchesType("daily-jams", "periodic-jams"))
	assert.True(t, matchesType("weekly-exploration", "weekly-exploration"))
	assert.False(t, matchesType("weekly-exploration", "periodic-jams"))
	assert.False(t, matchesType("", "periodic-jams"))
}
