package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mancube/tidaloader-opus/internal/api/listenbrainz"
	"github.com/mancube/tidaloader-opus/internal/core/downloader"
	"github.com/mancube/tidaloader-opus/internal/core/playlist"
	"github.com/mancube/tidaloader-opus/internal/interfaces"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// NewPlaylistCommand creates the playlist validation command
func NewPlaylistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Match a ListenBrainz or Spotify playlist against the catalog.",
		Long: `Fetch a playlist and look every track up in the catalog.

Use --user for the playlists ListenBrainz generates for a user (weekly jams,
weekly exploration) or --spotify for a Spotify playlist or album URL.`,
		Args: cobra.NoArgs,
		RunE: runPlaylistCommand,
	}

	cmd.Flags().String("user", "", "ListenBrainz username")
	cmd.Flags().String("type", listenbrainz.DefaultPlaylistType, "ListenBrainz playlist type (periodic-jams, weekly-jams, weekly-exploration)")
	cmd.Flags().String("spotify", "", "Spotify playlist or album URL")
	cmd.Flags().Bool("download", false, "Download every matched track that is not already in the library")

	return cmd
}

func runPlaylistCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	user, _ := cmd.Flags().GetString("user")
	playlistType, _ := cmd.Flags().GetString("type")
	spotifyURL, _ := cmd.Flags().GetString("spotify")
	download, _ := cmd.Flags().GetBool("download")

	var (
		source interfaces.PlaylistSource
		ref    string
	)
	switch {
	case user != "" && spotifyURL != "":
		return fmt.Errorf("use either --user or --spotify, not both")
	case user != "":
		source, ref = container.ListenBrainzSource(playlistType), user
	case spotifyURL != "":
		if source = container.SpotifySource(); source == nil {
			return fmt.Errorf("spotify credentials are not configured")
		}
		ref = spotifyURL
	default:
		return fmt.Errorf("one of --user or --spotify is required")
	}

	report, err := container.Playlists.ValidateSource(cmd.Context(), source, ref)
	if err != nil {
		container.Logger.Error("Playlist validation failed: %v", err)
		return err
	}

	shared.ColorHeader.Printf("🎶 %s\n", report.Title)
	renderReport(os.Stdout, report)
	shared.ColorInfo.Printf("Found %d of %d tracks on Tidal\n", report.FoundOnTidal, report.Count)

	if !download {
		return nil
	}

	wanted := lo.Filter(report.Tracks, func(t shared.ValidatedTrack, _ int) bool {
		return t.TidalExists && !t.LibraryExists
	})
	if len(wanted) == 0 {
		shared.ColorSuccess.Println("✅ Nothing new to download")
		return nil
	}
	requests := lo.Map(wanted, func(t shared.ValidatedTrack, _ int) downloader.Request {
		return downloader.Request{TrackID: *t.TidalID, Artist: t.Artist, Title: t.Title, Quality: cfg.DefaultQuality}
	})
	return downloadTracks(cmd.Context(), container, requests)
}

func renderReport(w io.Writer, report playlist.Report) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Title", "Artist", "Album", "Tidal ID", "In Library"})
	table.SetRowLine(false)
	table.SetAutoWrapText(false)
	for i, t := range report.Tracks {
		id := "-"
		if t.TidalID != nil {
			id = strconv.FormatInt(*t.TidalID, 10)
		}
		inLibrary := ""
		if t.LibraryExists {
			inLibrary = "yes"
		}
		table.Append([]string{fmt.Sprint(i + 1), t.Title, t.Artist, t.Album, id, inLibrary})
	}
	table.Render()
}
