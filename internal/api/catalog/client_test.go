package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

func newTestClient(url string) *Client {
	return NewClient(url, nil, WithRetryDelay(time.Millisecond), WithRateLimit(time.Microsecond, 100))
}

func TestSearchUsesKindParameter(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		assert.Equal(t, shared.UserAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"tracks": {"items": [{"id": 1}]}}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	payload, err := c.Search(context.Background(), shared.SearchAlbums, "kind of blue")
	require.NoError(t, err)

	assert.Equal(t, "/search/", gotPath)
	assert.Equal(t, "al=kind+of+blue", gotQuery)
	require.IsType(t, []any{}, payload)

	_, err = c.Search(context.Background(), shared.SearchKind("playlists"), "x")
	assert.Error(t, err)
}

func TestGetTrackParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/track/", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		assert.Equal(t, "LOSSLESS", r.URL.Query().Get("quality"))
		w.Write([]byte(`{"id": 42, "title": "B"}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv.URL).GetTrack(context.Background(), 42, "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(42), "title": "B"}, payload)
}

func TestNotFoundYieldsNilPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	payload, err := c.GetAlbum(context.Background(), "7")
	require.NoError(t, err)
	assert.Nil(t, payload)

	payload, err = c.GetArtist(context.Background(), "7")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRetriesTransientStatuses(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	payload, err := newTestClient(srv.URL).GetAlbum(context.Background(), "1")
	require.NoError(t, err)
	assert.NotNil(t, payload)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad id", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetTrack(context.Background(), 1, "HIGH")
	require.Error(t, err)

	var httpErr *shared.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEmptyBodyYieldsNilPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	payload, err := newTestClient(srv.URL).Search(context.Background(), shared.SearchTracks, "x")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestFibonacciDelayIsCapped(t *testing.T) {
	assert.Equal(t, time.Second, fibonacciDelay(0, time.Second))
	assert.Equal(t, 5*time.Second, fibonacciDelay(3, time.Second))
	assert.Equal(t, maxRetryDelay, fibonacciDelay(50, time.Second))
}
