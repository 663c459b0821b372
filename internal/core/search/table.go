package search

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/mancube/tidaloader-opus/internal/shared"
)

// RenderTable prints results as a numbered table.
func RenderTable(w io.Writer, r Results) {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(false)
	table.SetAutoWrapText(false)

	switch r.Kind {
	case shared.SearchAlbums:
		table.SetHeader([]string{"", "Album", "Artist", "Released", "Tracks", "ID"})
		for i, a := range r.Albums {
			artist := ""
			if a.Artist != nil {
				artist = a.Artist.Name
			}
			table.Append([]string{fmt.Sprint(i + 1), a.Title, artist, a.ReleaseDate, strconv.Itoa(a.NumberOfTracks), strconv.FormatInt(a.ID, 10)})
		}
	case shared.SearchArtists:
		table.SetHeader([]string{"", "Artist", "Type", "ID"})
		for i, a := range r.Artists {
			table.Append([]string{fmt.Sprint(i + 1), a.Name, a.Type, strconv.FormatInt(a.ID, 10)})
		}
	default:
		table.SetHeader([]string{"", "Title", "Artist", "Album", "Length", "ID"})
		for i, t := range r.Tracks {
			table.Append([]string{fmt.Sprint(i + 1), t.Title, t.Artist, t.Album, formatDuration(t.Duration), strconv.FormatInt(t.ID, 10)})
		}
	}
	table.Render()
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
