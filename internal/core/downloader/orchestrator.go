package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/jobs"
	"github.com/mancube/tidaloader-opus/internal/normalize"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

const (
	copyBufferSize         = 8192
	defaultDownloadTimeout = 300 * time.Second
	defaultJobGrace        = 2 * time.Second
)

// Start outcomes reported to the caller.
const (
	StatusDownloading = string(jobs.StatusDownloading)
	StatusExists      = "exists"
)

// Request asks for one track to be downloaded.
type Request struct {
	TrackID int64  `json:"track_id"`
	Artist  string `json:"artist"`
	Title   string `json:"title"`
	Quality string `json:"quality"`
}

// Result is the synchronous answer to a download request.
type Result struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

// Options configures an Orchestrator.
type Options struct {
	MusicDir        string
	StagingDir      string // defaults to MusicDir
	DownloadTimeout time.Duration
	JobGrace        time.Duration
	HTTPClient      *http.Client
}

// Orchestrator drives downloads from catalog lookup to placed library file.
// Each accepted request runs detached; its only observable outcome is the
// job registry entry, which ends as completed or failed.
type Orchestrator struct {
	catalog  interfaces.CatalogClient
	registry *jobs.Registry
	enricher *Enricher
	logger   interfaces.LoggerService
	warnings interfaces.WarningCollectorService

	musicDir   string
	stagingDir string
	timeout    time.Duration
	grace      time.Duration
	httpClient *http.Client

	wg sync.WaitGroup
}

// NewOrchestrator wires an orchestrator. enricher may be nil to skip tagging.
func NewOrchestrator(catalog interfaces.CatalogClient, registry *jobs.Registry, enricher *Enricher, logger interfaces.LoggerService, warnings interfaces.WarningCollectorService, opts Options) *Orchestrator {
	if opts.StagingDir == "" {
		opts.StagingDir = opts.MusicDir
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = defaultDownloadTimeout
	}
	if opts.JobGrace <= 0 {
		opts.JobGrace = defaultJobGrace
	}
	if opts.HTTPClient == nil {
		// the transfer deadline comes from the context
		opts.HTTPClient = &http.Client{}
	}
	if warnings == nil {
		warnings = shared.NewWarningCollector(false)
	}
	return &Orchestrator{
		catalog:    catalog,
		registry:   registry,
		enricher:   enricher,
		logger:     logger,
		warnings:   warnings,
		musicDir:   opts.MusicDir,
		stagingDir: opts.StagingDir,
		timeout:    opts.DownloadTimeout,
		grace:      opts.JobGrace,
		httpClient: opts.HTTPClient,
	}
}

// Registry exposes the job registry the orchestrator reports into.
func (o *Orchestrator) Registry() *jobs.Registry {
	return o.registry
}

// StreamURL resolves the direct audio URL for a track.
func (o *Orchestrator) StreamURL(ctx context.Context, trackID int64, quality string) (string, error) {
	payload, err := o.catalog.GetTrack(ctx, trackID, quality)
	if err != nil {
		return "", err
	}
	if payload == nil {
		return "", shared.ErrTrackNotFound
	}
	streamURL := normalize.ExtractStreamURL(payload)
	if streamURL == "" {
		return "", shared.ErrStreamNotFound
	}
	return streamURL, nil
}

// Start validates a request and, unless the track is already in the
// library, launches the transfer in the background. Missing tracks and
// streams are reported synchronously and leave no job behind.
//
// Jobs are keyed by track id alone: a second request for an id that is
// still downloading replaces the first job's registry entry, and both
// transfers run to completion. Only placement resolves the collision.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*Result, error) {
	if req.Quality == "" {
		req.Quality = shared.DefaultQuality
	}

	payload, err := o.catalog.GetTrack(ctx, req.TrackID, req.Quality)
	if err != nil {
		return nil, fmt.Errorf("failed to get track metadata: %w", err)
	}
	if payload == nil {
		return nil, shared.ErrTrackNotFound
	}

	meta := BuildMetadata(payload, req)
	streamURL := normalize.ExtractStreamURL(payload)
	if streamURL == "" {
		return nil, shared.ErrStreamNotFound
	}

	relPath := meta.RelativePath()
	finalPath := meta.FinalPath(o.musicDir)
	if shared.FileExists(finalPath) {
		o.warnings.AddTrackSkippedWarning(finalPath)
		o.info("File already exists, skipping download: %s", relPath)
		return &Result{
			Status:   StatusExists,
			Filename: meta.Filename(),
			Path:     finalPath,
			Message:  fmt.Sprintf("File already exists: %s", filepath.ToSlash(relPath)),
		}, nil
	}

	o.registry.Create(req.TrackID)
	o.registry.Update(req.TrackID, 0, jobs.StatusDownloading)

	o.wg.Add(1)
	go o.run(req.TrackID, streamURL, finalPath, meta)

	return &Result{
		Status:   StatusDownloading,
		Filename: meta.Filename(),
		Path:     finalPath,
		Message:  fmt.Sprintf("Download started: %s", filepath.ToSlash(relPath)),
	}, nil
}

// Wait blocks until every launched download has reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// run is the detached part of a download. Errors end as a failed job.
func (o *Orchestrator) run(trackID int64, streamURL, finalPath string, meta TrackMetadata) {
	defer o.wg.Done()
	var tempPath string
	defer func() {
		if r := recover(); r != nil {
			o.fail(trackID, tempPath, fmt.Errorf("panic: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	var err error
	if tempPath, err = o.transfer(ctx, trackID, streamURL); err != nil {
		o.fail(trackID, tempPath, err)
		return
	}

	var enrichment Enrichment
	if o.enricher != nil {
		enrichCtx, cancelEnrich := context.WithTimeout(context.Background(), o.timeout)
		enrichment = o.enricher.Enrich(enrichCtx, tempPath, &meta)
		cancelEnrich()
	}

	trackContext := shared.TrackContext(meta.Artist, meta.Title)
	placed, err := Place(tempPath, finalPath)
	if err != nil {
		o.warnings.AddPlacementWarning(trackContext, err.Error())
		o.warn("Failed to organize %s: %v", trackContext, err)
	}

	if enrichment.SyncedLyrics != "" {
		if _, err := WriteLyricsFile(placed, enrichment.SyncedLyrics); err != nil {
			o.warnings.AddLyricsWarning(trackContext, err.Error())
		}
	}

	o.registry.Update(trackID, 100, jobs.StatusCompleted)
	o.registry.ExpireAfter(trackID, o.grace)
	o.success("Downloaded %s to %s", trackContext, placed)
}

func (o *Orchestrator) fail(trackID int64, tempPath string, cause error) {
	o.logError("Download of track %d failed: %v", trackID, cause)
	if tempPath != "" {
		if err := os.Remove(tempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			o.warn("Failed to remove partial file %s: %v", tempPath, err)
		}
	}
	o.registry.Update(trackID, 0, jobs.StatusFailed)
	o.registry.ExpireAfter(trackID, o.grace)
}

// transfer streams the audio into a staging file of its own, publishing
// whole-percent progress when the size is known. The staging path is
// returned even on failure so the caller can remove it.
func (o *Orchestrator) transfer(ctx context.Context, trackID int64, streamURL string) (tempPath string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", shared.NewHTTPError(resp)
	}

	if err := os.MkdirAll(o.stagingDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging directory: %w", err)
	}
	out, err := os.CreateTemp(o.stagingDir, shared.StagingPattern(trackID))
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	tempPath = out.Name()
	// placed files are 0644, CreateTemp creates 0600
	if err := out.Chmod(0644); err != nil {
		out.Close()
		return tempPath, fmt.Errorf("failed to set file mode: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	pw := &progressWriter{
		w:     out,
		total: resp.ContentLength,
		last:  -1,
		report: func(progress int) {
			o.registry.Update(trackID, progress, jobs.StatusDownloading)
		},
	}
	written, err := io.CopyBuffer(pw, resp.Body, make([]byte, copyBufferSize))
	if err != nil {
		return tempPath, fmt.Errorf("failed to write audio file: %w", err)
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return tempPath, fmt.Errorf("incomplete download: expected %d bytes, got %d bytes", resp.ContentLength, written)
	}
	return tempPath, nil
}

// progressWriter counts bytes and reports floor(written/total*100) whenever
// it increases. Unknown totals report nothing.
type progressWriter struct {
	w       io.Writer
	total   int64
	written int64
	last    int
	report  func(int)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.total > 0 {
		progress := int(p.written * 100 / p.total)
		if progress > 100 {
			progress = 100
		}
		if progress > p.last {
			p.last = progress
			p.report(progress)
		}
	}
	return n, err
}

func (o *Orchestrator) info(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Info(format, args...)
	}
}

func (o *Orchestrator) success(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Success(format, args...)
	}
}

func (o *Orchestrator) warn(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Warning(format, args...)
	}
}

func (o *Orchestrator) logError(format string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Error(format, args...)
	}
}
