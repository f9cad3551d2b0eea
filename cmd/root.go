package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"

	"github.com/lepinkainen/readersrealm/internal/config"
	apperrors "github.com/lepinkainen/readersrealm/internal/errors"
)

var loadConfig = config.Load

// CLI represents the complete command structure for the readersrealm application
type CLI struct {
	// Global flags
	Config   string `short:"c" help:"Path to YAML config file (defaults to ./config.yaml when present)" type:"path"`
	LogLevel string `help:"Override log.level (debug, info, warn, error)"`

	Serve  ServeCmd  `cmd:"" help:"Serve the JSON HTTP API"`
	Search SearchCmd `cmd:"" help:"Search Open Library by title or author and print JSON"`
	Book   BookCmd   `cmd:"" help:"Print an enriched work as JSON"`
	Browse BrowseCmd `cmd:"" help:"Pick a work from title search results interactively"`
	Export ExportCmd `cmd:"" help:"Export title search results and recommendations for Datasette"`
}

func kongOptions() []kong.Option {
	return []kong.Option{
		kong.Name("readersrealm"),
		kong.Description("Open Library aggregator with author disambiguation, genre cleanup and recommendations."),
		kong.UsageOnError(),
	}
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging(slog.LevelInfo)

	var cli CLI
	ctx := kong.Parse(&cli, kongOptions()...)

	if err := run(ctx, &cli, os.Stdout); err != nil {
		if apperrors.IsStopProcessingError(err) {
			slog.Info("Stopped", "reason", err.Error())
			return
		}
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// run loads configuration, wires the application and runs the selected command.
func run(ctx *kong.Context, cli *CLI, out io.Writer) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	initLogging(level)

	app, err := newApp(cfg, out)
	if err != nil {
		return err
	}
	return ctx.Run(app)
}

func initLogging(level slog.Level) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
