package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mancube/tidaloader-opus/internal/server"
)

// NewServeCommand creates the HTTP API command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and web frontend.",
		Args:  cobra.NoArgs,
		RunE:  runServeCommand,
	}

	cmd.Flags().String("listen", "", "Listen address (overrides config)")
	cmd.Flags().String("frontend", "", "Directory holding the built web frontend")
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "How long to wait for running downloads on shutdown")

	return cmd
}

func runServeCommand(cmd *cobra.Command, args []string) error {
	cfg, container, err := initConfigAndServices(cmd)
	if err != nil {
		return err
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}
	if frontend, _ := cmd.Flags().GetString("frontend"); frontend != "" {
		cfg.FrontendDir = frontend
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	srv := server.New(server.FromContainer(container))
	if err := srv.Run(cmd.Context(), cfg.ListenAddr, shutdownTimeout); err != nil {
		container.Logger.Error("%v", err)
		return err
	}

	if container.WarningCollector.HasWarnings() {
		container.WarningCollector.PrintSummary()
	}
	container.Logger.Success("Server stopped")
	return nil
}
