package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mancube/tidaloader-opus/internal/config"
	"github.com/mancube/tidaloader-opus/internal/services"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// NewRootCommand creates the tidaloader command tree
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tidaloader",
		Version: version,
		Short:   "Download, tag and file lossless tracks from a Tidal catalog proxy.",
		Long: fmt.Sprintf(`tidaloader (v%s)

Search a Tidal catalog proxy, download tracks, tag them with lyrics, cover art
and MusicBrainz identifiers, and file them as Artist/Album/NN - Title.flac.
Run "tidaloader serve" for the HTTP API and web frontend.`, version),
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "config/config.json", "Path to a JSON or YAML config file")
	cmd.PersistentFlags().String("env-file", ".env", "Path to a .env file")
	cmd.PersistentFlags().String("api-url", "", "Catalog API URL")
	cmd.PersistentFlags().String("music-dir", "", "Library root directory")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(
		NewServeCommand(),
		NewDownloadCommand(),
		NewSearchCommand(),
		NewPlaylistCommand(),
		NewConfigCommand(),
	)
	return cmd
}

// initConfigAndServices loads the layered configuration, applies command
// line overrides and wires the services.
func initConfigAndServices(cmd *cobra.Command) (*config.Config, *services.ServiceContainer, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(configFile, envFile)
	if err != nil {
		return nil, nil, err
	}

	// Command-line flags override config file and environment
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if musicDir, _ := cmd.Flags().GetString("music-dir"); musicDir != "" {
		cfg.MusicDir = musicDir
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.CreateDirIfNotExists(cfg.MusicDir); err != nil {
		return nil, nil, fmt.Errorf("cannot create music directory: %w", err)
	}

	shared.InitializeColors(false)
	container := services.NewServiceContainer(cfg, nil, nil)
	container.Logger.Debug("Using catalog %s, library %s", cfg.APIURL, cfg.MusicDir)
	return cfg, container, nil
}
