package lyrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

func TestGetLyrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "B", q.Get("track_name"))
		assert.Equal(t, "A", q.Get("artist_name"))
		assert.Equal(t, "C", q.Get("album_name"))
		assert.Equal(t, "201", q.Get("duration"))
		w.Write([]byte(`{"id": 9, "trackName": "B", "syncedLyrics": "[00:01.00] hi", "plainLyrics": "hi"}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil).GetLyrics(context.Background(), "B", "A", "C", 201)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "[00:01.00] hi", got.SyncedLyrics)
	assert.Equal(t, "hi", got.PlainLyrics)
}

func TestGetLyricsOmitsOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("album_name"))
		assert.False(t, q.Has("duration"))
		w.Write([]byte(`{"plainLyrics": "only plain", "syncedLyrics": null}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil).GetLyrics(context.Background(), "B", "A", "", 0)
	require.NoError(t, err)
	assert.Empty(t, got.SyncedLyrics)
	assert.Equal(t, "only plain", got.PlainLyrics)
}

func TestGetLyricsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil).GetLyrics(context.Background(), "B", "A", "", 0)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetLyricsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).GetLyrics(context.Background(), "B", "A", "", 0)
	var httpErr *shared.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "A", r.URL.Query().Get("artist_name"))
		w.Write([]byte(`[{"trackName": "One"}, {"trackName": "Two"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	results, err := c.Search(context.Background(), "", "A", "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Two", results[1].TrackName)

	empty, err := c.Search(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
