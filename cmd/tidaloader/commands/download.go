package commands

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mancube/tidaloader-opus/internal/core/downloader"
	"github.com/mancube/tidaloader-opus/internal/jobs"
	"github.com/mancube/tidaloader-opus/internal/services"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

const barTemplate = `{{ string . "prefix" }} {{ bar . }} {{ percent . }}`

// NewDownloadCommand creates the track download command
func NewDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download [track_id...]",
		Short: "Download one or more tracks into the library.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runDownloadCommand,
	}

	cmd.Flags().String("artist", "", "Artist name used when the catalog has none")
	cmd.Flags().String("title", "", "Track title used when the catalog has none")
	cmd.Flags().String("quality", shared.DefaultQuality, "Audio quality (LOW, HIGH, LOSSLESS, HI_RES_LOSSLESS)")

	return cmd
}

func runDownloadCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	artist, _ := cmd.Flags().GetString("artist")
	title, _ := cmd.Flags().GetString("title")
	quality, _ := cmd.Flags().GetString("quality")
	if !shared.ValidQuality(quality) {
		return fmt.Errorf("unknown quality %q", quality)
	}
	if quality == shared.DefaultQuality && !cmd.Flags().Changed("quality") {
		quality = cfg.DefaultQuality
	}

	requests := make([]downloader.Request, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid track id %q", arg)
		}
		requests = append(requests, downloader.Request{TrackID: id, Artist: artist, Title: title, Quality: quality})
	}

	return downloadTracks(cmd.Context(), container, requests)
}

// downloadStats counts outcomes across concurrent downloads.
type downloadStats struct {
	completed atomic.Int32
	skipped   atomic.Int32
	failed    atomic.Int32
}

// downloadTracks starts each request and follows its progress feed until
// the job ends, running at most Parallelism downloads at once.
func downloadTracks(ctx context.Context, c *services.ServiceContainer, requests []downloader.Request) error {
	var pool *pb.Pool
	if shared.IsTTY() {
		var err error
		if pool, err = pb.StartPool(); err != nil {
			c.Logger.Debug("Progress bars disabled: %v", err)
			pool = nil
		}
	}

	stats := &downloadStats{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Config.Parallelism)

	for _, req := range requests {
		req := req
		g.Go(func() error {
			downloadOne(ctx, c, pool, req, stats)
			return nil
		})
	}
	err := g.Wait()
	c.Orchestrator.Wait()
	if pool != nil {
		pool.Stop()
	}

	fmt.Println()
	shared.ColorInfo.Println("📊 Download Summary:")
	if n := stats.completed.Load(); n > 0 {
		shared.ColorSuccess.Printf("✅ Successfully downloaded: %d tracks\n", n)
	}
	if n := stats.skipped.Load(); n > 0 {
		shared.ColorWarning.Printf("⏭️  Skipped (already exists): %d tracks\n", n)
	}
	if n := stats.failed.Load(); n > 0 {
		shared.ColorError.Printf("❌ Failed downloads: %d tracks\n", n)
	}
	shared.ColorSuccess.Printf("📁 Library: %s\n", c.Config.MusicDir)

	if c.WarningCollector.HasWarnings() {
		c.WarningCollector.PrintSummary()
	}
	if err != nil {
		return err
	}
	if stats.failed.Load() > 0 {
		return fmt.Errorf("%d of %d downloads failed", stats.failed.Load(), len(requests))
	}
	return nil
}

func downloadOne(ctx context.Context, c *services.ServiceContainer, pool *pb.Pool, req downloader.Request, stats *downloadStats) {
	res, err := c.Orchestrator.Start(ctx, req)
	switch {
	case err != nil:
		c.Logger.Error("Failed to start track %d: %v", req.TrackID, err)
		stats.failed.Add(1)
		return
	case res.Status == downloader.StatusExists:
		c.Logger.Info("⭐ %s", res.Message)
		stats.skipped.Add(1)
		return
	}

	var bar *pb.ProgressBar
	if pool != nil {
		bar = pb.New(100)
		bar.SetTemplateString(barTemplate)
		bar.Set("prefix", fmt.Sprintf("Downloading %-40s: ", shared.TruncateString(res.Filename, 40)))
		pool.Add(bar)
	} else {
		c.Logger.Info("🎵 %s", res.Message)
	}

	final := jobs.StatusFailed
	for ev := range c.Progress.Subscribe(ctx, req.TrackID) {
		if bar != nil {
			bar.SetCurrent(int64(ev.Progress))
		}
		final = ev.Status
	}
	if bar != nil {
		bar.Finish()
	}

	if final == jobs.StatusCompleted {
		stats.completed.Add(1)
		if bar == nil {
			c.Logger.Success("Downloaded %s", res.Path)
		}
		return
	}
	stats.failed.Add(1)
	c.Logger.Error("Download of track %d ended as %s", req.TrackID, final)
}
