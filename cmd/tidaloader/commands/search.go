package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mancube/tidaloader-opus/internal/core/search"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// NewSearchCommand creates the catalog search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog for tracks, albums or artists.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearchCommand,
	}

	cmd.Flags().String("type", string(shared.SearchTracks), "What to search for (tracks, albums, artists)")

	return cmd
}

func runSearchCommand(cmd *cobra.Command, args []string) error {
	_, container, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	searchType, _ := cmd.Flags().GetString("type")
	kind, err := shared.ParseSearchKind(searchType)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	shared.ColorInfo.Printf("🔎 Searching for '%s' (type: %s)...\n", query, kind)

	results, err := container.Search.Search(cmd.Context(), kind, query)
	if err != nil {
		container.Logger.Error("Search failed: %v", err)
		return err
	}
	if results.Len() == 0 {
		shared.ColorWarning.Println("No results found.")
		return nil
	}

	shared.ColorInfo.Printf("Found %d results:\n", results.Len())
	search.RenderTable(os.Stdout, results)
	return nil
}
