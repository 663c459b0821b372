package services

import (
	"bytes"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mancube/tidaloader-opus/internal/config"
)

func TestNewServiceContainerDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MusicDir = t.TempDir()

	container := NewServiceContainer(cfg, nil, NewConsoleLogger())

	assert.NotNil(t, container.Catalog)
	assert.NotNil(t, container.ListenBrainz)
	assert.NotNil(t, container.Lyrics, "lyrics are on by default")
	assert.NotNil(t, container.Registry)
	assert.NotNil(t, container.Orchestrator)
	assert.NotNil(t, container.Progress)
	assert.NotNil(t, container.Search)
	assert.NotNil(t, container.Playlists)
	assert.Same(t, container.Registry, container.Orchestrator.Registry())

	assert.Nil(t, container.MusicBrainz)
	assert.Nil(t, container.Spotify)
	assert.Nil(t, container.Navidrome)
	assert.Nil(t, container.SpotifySource())
	assert.Equal(t, "listenbrainz", container.ListenBrainzSource("weekly-jams").Name())
}

func TestNewServiceContainerOptionalIntegrations(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MusicDir = t.TempDir()
	cfg.LyricsEnabled = false
	cfg.MusicBrainzEnabled = true
	cfg.SpotifyClientID = "id"
	cfg.SpotifyClientSecret = "secret"
	cfg.NavidromeURL = "http://navidrome:4533"
	cfg.NavidromeUsername = "user"

	container := NewServiceContainer(cfg, nil, NewConsoleLogger())

	assert.Nil(t, container.Lyrics)
	assert.NotNil(t, container.MusicBrainz)
	assert.NotNil(t, container.Spotify)
	assert.NotNil(t, container.Navidrome)
	require.NotNil(t, container.SpotifySource())
	assert.Equal(t, "spotify", container.SpotifySource().Name())
}

func TestConsoleLoggerDebugToggle(t *testing.T) {
	logger := NewConsoleLogger()
	assert.False(t, logger.debugMode)
	logger.SetDebugMode(true)
	assert.True(t, logger.debugMode)
}

func TestStructuredLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("tidaloader", &buf, true).Named("server")

	logger.Debug("hidden %d", 1)
	logger.Success("Downloaded %s", "A - B")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Downloaded A - B", record["@message"])
	assert.Equal(t, "tidaloader.server", record["@module"])
	assert.Equal(t, "success", record["result"])

	buf.Reset()
	logger.SetDebugMode(true)
	logger.Debug("shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}

func TestNewLoggerSelectsBackend(t *testing.T) {
	_, ok := NewLogger("json", false).(*StructuredLogger)
	assert.True(t, ok)
	_, ok = NewLogger("console", false).(*ConsoleLogger)
	assert.True(t, ok)
}
