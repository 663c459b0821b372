package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/mancube/tidaloader-opus/internal/api/listenbrainz"
	"github.com/mancube/tidaloader-opus/internal/core/downloader"
	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

type troiRequest struct {
	Username     string `json:"username"`
	PlaylistType string `json:"playlist_type"`
}

type spotifyRequest struct {
	URL string `json:"url"`
}

type streamResponse struct {
	StreamURL string `json:"stream_url"`
	TrackID   int64  `json:"track_id"`
	Quality   string `json:"quality"`
}

func abortWithDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// abortWithError maps domain errors onto status codes.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		abortWithDetail(c, http.StatusNotFound, err.Error())
	default:
		abortWithDetail(c, http.StatusInternalServerError, err.Error())
	}
}

func trackIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "tidaloader API"})
}

func (s *Server) searchHandler(c *gin.Context) {
	kind, err := shared.ParseSearchKind(c.Param("kind"))
	if err != nil {
		abortWithDetail(c, http.StatusNotFound, err.Error())
		return
	}
	query := c.Query("q")
	if query == "" {
		abortWithDetail(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	results, err := s.deps.Search.Search(c.Request.Context(), kind, query)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": results.Items()})
}

func (s *Server) albumTracks(c *gin.Context) {
	listing, err := s.deps.Search.AlbumTracks(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) artist(c *gin.Context) {
	id, ok := trackIDParam(c)
	if !ok {
		return
	}
	page, err := s.deps.Search.Artist(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *Server) streamURL(c *gin.Context) {
	id, ok := trackIDParam(c)
	if !ok {
		return
	}
	quality := c.DefaultQuery("quality", shared.DefaultQuality)
	if !shared.ValidQuality(quality) {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("unknown quality %q", quality))
		return
	}

	streamURL, err := s.deps.Downloads.StreamURL(c.Request.Context(), id, quality)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, streamResponse{StreamURL: streamURL, TrackID: id, Quality: quality})
}

func (s *Server) downloadTrack(c *gin.Context) {
	var req downloader.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.TrackID <= 0 {
		abortWithDetail(c, http.StatusBadRequest, "track_id is required")
		return
	}
	if req.Quality != "" && !shared.ValidQuality(req.Quality) {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("unknown quality %q", req.Quality))
		return
	}

	result, err := s.deps.Downloads.Start(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// downloadProgress streams progress events until the job ends or the
// client goes away.
func (s *Server) downloadProgress(c *gin.Context) {
	id, ok := trackIDParam(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for ev := range s.deps.Progress.Subscribe(c.Request.Context(), id) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
			return
		}
		c.Writer.Flush()
	}
}

func (s *Server) troiGenerate(c *gin.Context) {
	req := troiRequest{PlaylistType: listenbrainz.DefaultPlaylistType}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithDetail(c, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Username == "" {
		abortWithDetail(c, http.StatusBadRequest, "username is required")
		return
	}
	s.validatePlaylist(c, s.deps.ListenBrainz(req.PlaylistType), req.Username)
}

func (s *Server) spotifyPlaylist(c *gin.Context) {
	if s.deps.Spotify == nil {
		abortWithDetail(c, http.StatusServiceUnavailable, "Spotify is not configured")
		return
	}
	var req spotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		abortWithDetail(c, http.StatusBadRequest, "url is required")
		return
	}
	s.validatePlaylist(c, s.deps.Spotify, req.URL)
}

func (s *Server) validatePlaylist(c *gin.Context, source interfaces.PlaylistSource, ref string) {
	report, err := s.deps.Playlists.ValidateSource(c.Request.Context(), source, ref)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
