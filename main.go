package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mancube/tidaloader-opus/cmd/tidaloader/commands"
)

const toolVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand(toolVersion).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
