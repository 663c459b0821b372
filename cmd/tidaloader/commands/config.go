package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mancube/tidaloader-opus/internal/config"
	"github.com/mancube/tidaloader-opus/internal/shared"
)

// NewConfigCommand creates the configuration file command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file.",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the default settings.",
		Long: `Write the default settings to the file named by --config. A .yaml or .yml
extension writes YAML, anything else JSON. --api-url and --music-dir are
written in place of the defaults when given.`,
		Args: cobra.NoArgs,
		RunE: runConfigInitCommand,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration file")

	cmd.AddCommand(initCmd)
	return cmd
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")

	if shared.FileExists(configFile) && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", configFile)
	}

	cfg := config.DefaultConfig()
	if apiURL, _ := cmd.Flags().GetString("api-url"); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if musicDir, _ := cmd.Flags().GetString("music-dir"); musicDir != "" {
		cfg.MusicDir = musicDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.SaveConfig(configFile, cfg); err != nil {
		return err
	}
	shared.ColorSuccess.Printf("✅ Wrote configuration to %s\n", configFile)
	return nil
}
