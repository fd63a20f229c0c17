package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/stackos/landing/config"
	"github.com/stackos/landing/internal/log"
)

var cli struct {
	Migrate MigrateCmd `cmd:"" help:"Apply SQL migrations and exit."`
	Stats   StatsCmd   `cmd:"" help:"Print waitlist counters and the most recent signups."`
}

type Globals struct {
	Logger *log.Logger
}

func main() {
	logger := log.NewLoggerFromEnv()
	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("cli"),
		kong.Description("StackOS landing maintenance commands."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := cmd.Run(&Globals{Logger: logger})
	cmd.FatalIfErrorf(err)
}
