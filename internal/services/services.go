package services

import (
	"net/http"

	"github.com/mancube/tidaloader-opus/internal/api/catalog"
	"github.com/mancube/tidaloader-opus/internal/api/listenbrainz"
	"github.com/mancube/tidaloader-opus/internal/api/lyrics"
	"github.com/mancube/tidaloader-opus/internal/api/musicbrainz"
	"github.com/mancube/tidaloader-opus/internal/api/navidrome"
	"github.com/mancube/tidaloader-opus/internal/api/spotify"
	"github.com/mancube/tidaloader-opus/internal/config"
	"github.com/mancube/tidaloader-opus/internal/core/downloader"
	"github.com/mancube/tidaloader-opus/internal/core/playlist"
	"github.com/mancube/tidaloader-opus/internal/core/progress"
	"github.com/mancube/tidaloader-opus/internal/core/search"
	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/jobs"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// ServiceContainer holds all application services. Optional integrations
// are nil when they are disabled or not configured.
type ServiceContainer struct {
	Config     *config.Config
	HTTPClient *http.Client

	Catalog      *catalog.Client
	Lyrics       *lyrics.Client
	MusicBrainz  *musicbrainz.Client
	Spotify      *spotify.SpotifyClient
	ListenBrainz *listenbrainz.Client
	Navidrome    *navidrome.NavidromeClient

	Registry     *jobs.Registry
	Orchestrator *downloader.Orchestrator
	Progress     *progress.Publisher
	Search       *search.Service
	Playlists    *playlist.Validator

	Logger           interfaces.LoggerService
	WarningCollector *shared.WarningCollector
}

// NewServiceContainer creates a new service container with all services initialized
func NewServiceContainer(cfg *config.Config, httpClient *http.Client, logger interfaces.LoggerService) *ServiceContainer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.RequestTimeout}
	}
	// Create logger first as other services may need it
	if logger == nil {
		logger = NewLogger(cfg.LogFormat, cfg.Debug)
	}

	warningCollector := shared.NewWarningCollector(true)

	c := &ServiceContainer{
		Config:           cfg,
		HTTPClient:       httpClient,
		Logger:           logger,
		WarningCollector: warningCollector,
		Registry:         jobs.NewRegistry(),
	}

	c.Catalog = catalog.NewClient(cfg.APIURL, httpClient, catalog.WithLogger(logger))
	c.ListenBrainz = listenbrainz.NewClient(cfg.ListenBrainzURL, httpClient)

	enricher := &downloader.Enricher{
		Tagger:     downloader.FLACTagWriter{},
		HTTPClient: httpClient,
		Warnings:   warningCollector,
		Logger:     logger,
	}
	if cfg.LyricsEnabled {
		c.Lyrics = lyrics.NewClient(cfg.LyricsURL, nil)
		enricher.Lyrics = c.Lyrics
	}
	if cfg.MusicBrainzEnabled {
		mbConfig := musicbrainz.DefaultConfig()
		if cfg.MaxRetryAttempts > 0 {
			mbConfig.MaxRetries = cfg.MaxRetryAttempts
		}
		c.MusicBrainz = musicbrainz.NewClientWithConfig(mbConfig)
		enricher.Recordings = c.MusicBrainz
	}
	if cfg.SpotifyConfigured() {
		c.Spotify = spotify.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
	}

	var library interfaces.LibraryIndex
	if cfg.NavidromeConfigured() {
		c.Navidrome = navidrome.NewNavidromeClient(cfg.NavidromeURL, cfg.NavidromeUsername, cfg.NavidromePassword)
		library = c.Navidrome
	}

	c.Orchestrator = downloader.NewOrchestrator(c.Catalog, c.Registry, enricher, logger, warningCollector, downloader.Options{
		MusicDir:        cfg.MusicDir,
		StagingDir:      cfg.StagingPath(),
		DownloadTimeout: cfg.DownloadTimeout(),
		JobGrace:        cfg.JobGrace(),
	})
	c.Progress = progress.NewPublisher(c.Registry, cfg.ProgressPollInterval(), cfg.ProgressMaxMisses)
	c.Search = search.NewService(c.Catalog, logger)
	c.Playlists = playlist.NewValidator(c.Search, library, cfg.Parallelism, logger)

	return c
}

// ListenBrainzSource returns the ListenBrainz source for playlistType.
func (c *ServiceContainer) ListenBrainzSource(playlistType string) interfaces.PlaylistSource {
	return c.ListenBrainz.WithPlaylistType(playlistType)
}

// SpotifySource returns the Spotify source, or nil when Spotify is not
// configured.
func (c *ServiceContainer) SpotifySource() interfaces.PlaylistSource {
	if c.Spotify == nil {
		return nil
	}
	return c.Spotify
}
