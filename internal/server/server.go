// Package server exposes the download pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mancube/tidaloader-opus/internal/core/downloader"
	"github.com/mancube/tidaloader-opus/internal/core/playlist"
	"github.com/mancube/tidaloader-opus/internal/core/progress"
	"github.com/mancube/tidaloader-opus/internal/core/search"
	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/services"
)

const requestIDHeader = "X-Request-ID"

// Dependencies are the services the HTTP surface drives.
type Dependencies struct {
	Search    *search.Service
	Downloads *downloader.Orchestrator
	Progress  *progress.Publisher
	Playlists *playlist.Validator

	// ListenBrainz returns the generated-playlist source for a playlist type.
	ListenBrainz func(playlistType string) interfaces.PlaylistSource
	// Spotify is nil when no credentials are configured.
	Spotify interfaces.PlaylistSource

	Logger      interfaces.LoggerService
	FrontendDir string
}

// FromContainer collects the server dependencies from a service container.
func FromContainer(c *services.ServiceContainer) Dependencies {
	return Dependencies{
		Search:       c.Search,
		Downloads:    c.Orchestrator,
		Progress:     c.Progress,
		Playlists:    c.Playlists,
		ListenBrainz: c.ListenBrainzSource,
		Spotify:      c.SpotifySource(),
		Logger:       c.Logger,
		FrontendDir:  c.Config.FrontendDir,
	}
}

// Server is the HTTP boundary.
type Server struct {
	deps   Dependencies
	engine *gin.Engine
}

// New builds the router.
func New(deps Dependencies) *Server {
	s := &Server{deps: deps, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.requestLogger(), corsMiddleware())
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	api.GET("", s.root)
	api.GET("/search/:kind", s.searchHandler)
	api.GET("/album/:id/tracks", s.albumTracks)
	api.GET("/artist/:id", s.artist)
	api.GET("/download/stream/:id", s.streamURL)
	api.POST("/download/track", s.downloadTrack)
	api.GET("/download/progress/:id", s.downloadProgress)
	api.POST("/troi/generate", s.troiGenerate)
	api.POST("/playlist/spotify", s.spotifyPlaylist)

	if s.deps.FrontendDir != "" {
		s.engine.Static("/assets", filepath.Join(s.deps.FrontendDir, "assets"))
	}
	s.engine.NoRoute(s.fallback)
}

// fallback serves the single page app for anything outside /api.
func (s *Server) fallback(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || s.deps.FrontendDir == "" {
		abortWithDetail(c, http.StatusNotFound, "Not Found")
		return
	}
	c.File(filepath.Join(s.deps.FrontendDir, "index.html"))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()

		if s.deps.Logger == nil {
			return
		}
		status := c.Writer.Status()
		format := "%s %s -> %d (%s) request_id=%s"
		args := []interface{}{c.Request.Method, c.Request.URL.Path, status, time.Since(start).Round(time.Millisecond), id}
		if status >= http.StatusInternalServerError {
			s.deps.Logger.Error(format, args...)
		} else {
			s.deps.Logger.Debug(format, args...)
		}
	}
}

// Run serves on addr until ctx is done, then drains connections and waits
// for running downloads, both bounded by shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	// progress streams end when shutdown begins
	srv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.info("🚀 Listening on %s", addr)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if s.deps.Downloads != nil {
		done := make(chan struct{})
		go func() {
			s.deps.Downloads.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-shutdownCtx.Done():
			if s.deps.Logger != nil {
				s.deps.Logger.Warning("Shutdown timed out with downloads still running")
			}
		}
	}
	return nil
}

func (s *Server) info(format string, args ...interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(format, args...)
	}
}
