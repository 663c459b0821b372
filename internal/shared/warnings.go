package shared

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// WarningType represents different types of warnings
type WarningType int

const (
	TagWriteWarning WarningType = iota
	LyricsWarning
	CoverArtDownloadWarning
	CoverArtMetadataWarning
	MusicBrainzTrackWarning
	PlacementWarning
	TrackSkippedWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // "Artist - Title" of the affected track
	Details string // underlying error text
}

// WarningCollector gathers the non-fatal problems hit while enriching
// downloads. Downloads run concurrently, so every method is safe for
// concurrent use.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if wc == nil || !wc.enabled {
		return
	}

	wc.mu.Lock()
	defer wc.mu.Unlock()
	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddTagWriteWarning records a failure to write Vorbis comments.
func (wc *WarningCollector) AddTagWriteWarning(context, details string) {
	wc.AddWarning(TagWriteWarning, context, "Failed to write tags", details)
}

// AddLyricsWarning records a failed lyrics lookup or lyric file write.
func (wc *WarningCollector) AddLyricsWarning(context, details string) {
	wc.AddWarning(LyricsWarning, context, "Failed to add lyrics", details)
}

// AddCoverArtDownloadWarning adds a cover art download warning
func (wc *WarningCollector) AddCoverArtDownloadWarning(context, details string) {
	wc.AddWarning(CoverArtDownloadWarning, context, "Could not download cover art", details)
}

// AddCoverArtMetadataWarning adds a cover art metadata warning
func (wc *WarningCollector) AddCoverArtMetadataWarning(context, details string) {
	wc.AddWarning(CoverArtMetadataWarning, context, "Failed to add cover art to metadata", details)
}

// AddMusicBrainzTrackWarning adds a MusicBrainz track lookup warning
func (wc *WarningCollector) AddMusicBrainzTrackWarning(context, details string) {
	wc.AddWarning(MusicBrainzTrackWarning, context, "Failed to find MusicBrainz recording", details)
}

// AddPlacementWarning records a file that could not be moved into the library.
func (wc *WarningCollector) AddPlacementWarning(context, details string) {
	wc.AddWarning(PlacementWarning, context, "Failed to organize file", details)
}

// AddTrackSkippedWarning adds a track skipped warning
func (wc *WarningCollector) AddTrackSkippedWarning(trackPath string) {
	wc.AddWarning(TrackSkippedWarning, trackPath, "Track already exists", "")
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	return wc.GetWarningCount() > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	if wc == nil {
		return 0
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	return len(wc.warnings)
}

// Warnings returns a copy of the collected warnings.
func (wc *WarningCollector) Warnings() []Warning {
	if wc == nil {
		return nil
	}
	wc.mu.Lock()
	defer wc.mu.Unlock()
	out := make([]Warning, len(wc.warnings))
	copy(out, wc.warnings)
	return out
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.Warnings() {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", wc.GetWarningCount())
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	ColorWarning.Printf("\n%s (%d):\n", warningTypeTitle(warningType), len(warnings))

	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		if count := contextCounts[context]; count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

func warningTypeTitle(warningType WarningType) string {
	switch warningType {
	case TagWriteWarning:
		return "Tag Write Failures"
	case LyricsWarning:
		return "Lyrics Failures"
	case CoverArtDownloadWarning:
		return "Cover Art Download Failures"
	case CoverArtMetadataWarning:
		return "Cover Art Metadata Failures"
	case MusicBrainzTrackWarning:
		return "MusicBrainz Lookup Failures"
	case PlacementWarning:
		return "Placement Failures"
	case TrackSkippedWarning:
		return "Tracks Skipped (Already Exist)"
	default:
		return "Other Warnings"
	}
}

// TrackContext formats the "Artist - Title" context used in warnings.
func TrackContext(artist, title string) string {
	return fmt.Sprintf("%s - %s", artist, title)
}
