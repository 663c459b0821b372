package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

const maxCoverBytes = 20 << 20

// Enricher tags a finished download. Every step is best effort: failures
// become warnings and never discard the audio.
type Enricher struct {
	Lyrics     interfaces.LyricsProvider  // nil disables lyrics
	Recordings interfaces.RecordingLookup // nil disables MusicBrainz lookups
	Tagger     TagWriter
	HTTPClient *http.Client
	Warnings   interfaces.WarningCollectorService
	Logger     interfaces.LoggerService
}

// Enrichment is what Enrich learned that outlives the tag write.
type Enrichment struct {
	SyncedLyrics string
}

// Enrich resolves identifiers, lyrics and cover art for meta and writes the
// tags into filePath.
func (e *Enricher) Enrich(ctx context.Context, filePath string, meta *TrackMetadata) Enrichment {
	var result Enrichment
	trackContext := shared.TrackContext(meta.Artist, meta.Title)

	if e.Recordings != nil && meta.ISRC != "" {
		ids, err := e.Recordings.LookupByISRC(ctx, meta.ISRC)
		if err != nil {
			e.warnings().AddMusicBrainzTrackWarning(trackContext, err.Error())
			e.debug("MusicBrainz lookup failed for %s: %v", trackContext, err)
		} else {
			meta.SetMusicBrainzIDs(ids)
		}
	}

	if e.Lyrics != nil && meta.Title != "" && meta.Artist != "" {
		lyrics, err := e.Lyrics.GetLyrics(ctx, meta.Title, meta.Artist, meta.Album, meta.Duration)
		switch {
		case err != nil:
			e.warnings().AddLyricsWarning(trackContext, err.Error())
			e.debug("Lyrics lookup failed for %s: %v", trackContext, err)
		case lyrics == nil:
			e.debug("No lyrics found for %s", trackContext)
		case lyrics.SyncedLyrics != "":
			meta.Lyrics = lyrics.SyncedLyrics
			result.SyncedLyrics = lyrics.SyncedLyrics
		case lyrics.PlainLyrics != "":
			meta.Lyrics = lyrics.PlainLyrics
		}
	}

	var cover []byte
	if meta.CoverURL != "" {
		data, err := e.fetchCover(ctx, meta.CoverURL)
		if err != nil {
			e.warnings().AddCoverArtDownloadWarning(trackContext, err.Error())
			e.debug("Cover download failed for %s: %v", trackContext, err)
		} else {
			cover = data
		}
	}

	if e.Tagger != nil {
		if err := e.Tagger.WriteTags(filePath, meta.Tags(), cover); err != nil {
			var coverErr *CoverError
			if errors.As(err, &coverErr) {
				e.warnings().AddCoverArtMetadataWarning(trackContext, coverErr.Err.Error())
			} else {
				e.warnings().AddTagWriteWarning(trackContext, err.Error())
				if e.Logger != nil {
					e.Logger.Warning("Failed to write tags for %s: %v", trackContext, err)
				}
			}
		}
	}
	return result
}

func (e *Enricher) fetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	client := e.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", shared.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, shared.NewHTTPError(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read cover: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty cover image")
	}
	return data, nil
}

// warnings never returns nil so callers can record unconditionally.
func (e *Enricher) warnings() interfaces.WarningCollectorService {
	if e.Warnings == nil {
		return shared.NewWarningCollector(false)
	}
	return e.Warnings
}

func (e *Enricher) debug(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Debug(format, args...)
	}
}
