// Package playlist matches playlist candidates against the catalog and the
// local library.
package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/normalize"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

const defaultParallelism = 4

// TrackSearcher finds catalog tracks for a free-text query.
type TrackSearcher interface {
	Tracks(ctx context.Context, query string) ([]normalize.Track, error)
}

// Report is the outcome of validating one playlist.
type Report struct {
	Title        string                  `json:"title,omitempty"`
	Tracks       []shared.ValidatedTrack `json:"tracks"`
	Count        int                     `json:"count"`
	FoundOnTidal int                     `json:"found_on_tidal"`
}

// Validator annotates candidates with their catalog match and, when a
// library index is configured, whether the library already holds them.
type Validator struct {
	searcher    TrackSearcher
	library     interfaces.LibraryIndex
	parallelism int
	logger      interfaces.LoggerService
}

// NewValidator creates a validator. library and logger may be nil.
func NewValidator(searcher TrackSearcher, library interfaces.LibraryIndex, parallelism int, logger interfaces.LoggerService) *Validator {
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}
	return &Validator{
		searcher:    searcher,
		library:     library,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Validate matches every candidate, preserving input order. Lookup failures
// mark a track as not found; only cancellation aborts the whole run.
func (v *Validator) Validate(ctx context.Context, candidates []shared.CandidateTrack) (Report, error) {
	results := make([]shared.ValidatedTrack, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.parallelism)

	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = v.validateOne(ctx, candidate)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	return Report{
		Tracks: results,
		Count:  len(results),
		FoundOnTidal: lo.CountBy(results, func(t shared.ValidatedTrack) bool {
			return t.TidalExists
		}),
	}, nil
}

// ValidateSource fetches a playlist from source and validates it.
func (v *Validator) ValidateSource(ctx context.Context, source interfaces.PlaylistSource, ref string) (Report, error) {
	title, candidates, err := source.Tracks(ctx, ref)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load %s playlist: %w", source.Name(), err)
	}
	v.info("Validating %d tracks from %s playlist '%s'", len(candidates), source.Name(), title)

	report, err := v.Validate(ctx, candidates)
	if err != nil {
		return Report{}, err
	}
	report.Title = title
	v.info("Found %d of %d tracks on Tidal", report.FoundOnTidal, report.Count)
	return report, nil
}

func (v *Validator) validateOne(ctx context.Context, c shared.CandidateTrack) shared.ValidatedTrack {
	result := shared.ValidatedTrack{Title: c.Title, Artist: c.Artist, MBID: c.MBID}
	trackContext := shared.TrackContext(c.Artist, c.Title)

	query := strings.TrimSpace(c.Artist + " " + c.Title)
	if query != "" {
		tracks, err := v.searcher.Tracks(ctx, query)
		if err != nil {
			v.debug("Search failed for %s: %v", trackContext, err)
		} else if len(tracks) > 0 {
			id := tracks[0].ID
			result.TidalID = &id
			result.TidalExists = true
			result.Album = tracks[0].Album
		}
	}

	if v.library != nil {
		found, err := v.library.HasTrack(ctx, c.Artist, c.Title)
		if err != nil {
			v.debug("Library lookup failed for %s: %v", trackContext, err)
		}
		result.LibraryExists = found
	}
	return result
}

func (v *Validator) info(format string, args ...interface{}) {
	if v.logger != nil {
		v.logger.Info(format, args...)
	}
}

func (v *Validator) debug(format string, args ...interface{}) {
	if v.logger != nil {
		v.logger.Debug(format, args...)
	}
}
