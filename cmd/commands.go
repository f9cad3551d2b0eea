package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lepinkainen/readersrealm/internal/api"
	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/datastore"
	apperrors "github.com/lepinkainen/readersrealm/internal/errors"
	"github.com/lepinkainen/readersrealm/internal/tui"
)

var (
	serveHTTP = api.ListenAndServe
	pickWork  = tui.PickWork
)

// ServeCmd represents the serve command
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// SearchCmd represents the search command
type SearchCmd struct {
	Query string `arg:"" help:"Search query"`
	Type  string `short:"t" help:"What to search for" enum:"title,author" default:"title"`
}

// BookCmd represents the book command
type BookCmd struct {
	Key       string `arg:"" help:"Work key, e.g. OL45883W or /works/OL45883W"`
	Recommend bool   `short:"r" help:"Attach content-based recommendations"`
}

// BrowseCmd represents the browse command
type BrowseCmd struct {
	Query       string `arg:"" help:"Title search query"`
	NoRecommend bool   `help:"Do not compute recommendations for the chosen work"`
}

// ExportCmd represents the export command
type ExportCmd struct {
	Query          string `arg:"" help:"Title search query"`
	DB             string `help:"Path to SQLite database file" default:"./readersrealm.db" type:"path"`
	DatasetteURL   string `help:"Insert into a remote Datasette instance instead of a local file"`
	DatasetteToken string `help:"API token for the remote Datasette instance" env:"DATASETTE_TOKEN"`
	NoRecommend    bool   `help:"Do not export recommendations for the first hit"`
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (s *ServeCmd) Run(app *App) error {
	cfg := app.Config.Server
	addr := cfg.Addr
	if s.Addr != "" {
		addr = s.Addr
	}

	handler := api.NewServer(app.Catalog, api.Options{
		CORSOrigins:     cfg.CORSOrigins,
		Recommendations: app.withRecommendations(true),
	}).Handler()

	ctx, stop := signalContext()
	defer stop()

	return serveHTTP(ctx, api.ServerConfig{
		Addr:         addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, handler)
}

func (s *SearchCmd) Run(app *App) error {
	ctx, stop := signalContext()
	defer stop()

	if s.Type == "author" {
		authors, err := app.Catalog.SearchAuthors(ctx, s.Query)
		if err != nil {
			return err
		}
		return app.printJSON(authors)
	}

	hits, err := app.Catalog.SearchTitles(ctx, s.Query)
	if err != nil {
		return err
	}
	return app.printJSON(hits)
}

func (b *BookCmd) Run(app *App) error {
	ctx, stop := signalContext()
	defer stop()

	return app.book(ctx, b.Key, b.Recommend)
}

func (b *BrowseCmd) Run(app *App) error {
	ctx, stop := signalContext()
	defer stop()

	hits, err := app.Catalog.SearchTitles(ctx, b.Query)
	if err != nil {
		return err
	}

	pick, err := pickWork(b.Query, hits)
	if err != nil {
		return fmt.Errorf("running picker: %w", err)
	}

	switch pick.Outcome {
	case tui.OutcomePicked:
		return app.book(ctx, pick.Hit.Key, !b.NoRecommend)
	case tui.OutcomeQuit:
		return apperrors.NewStopProcessingError("selection stopped by user")
	default:
		slog.Info("No work selected", "query", b.Query)
		return nil
	}
}

func (e *ExportCmd) Run(app *App) error {
	ctx, stop := signalContext()
	defer stop()

	hits, err := app.Catalog.SearchTitles(ctx, e.Query)
	if err != nil {
		return err
	}

	exp := datastore.Export{Query: e.Query, Hits: hits}
	if len(hits) > 0 && app.withRecommendations(!e.NoRecommend) {
		exp.BaseKey = hits[0].Key
		exp.Recommendations = e.recommendations(ctx, app, hits[0])
	}

	var store datastore.Store
	if e.DatasetteURL != "" {
		store = datastore.NewDatasetteClient(e.DatasetteURL, e.DatasetteToken)
	} else {
		store = datastore.NewSQLiteStore(e.DB)
	}
	if err := store.Connect(); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return datastore.Write(ctx, store, exp)
}

// recommendations for the export are best effort; a failed lookup exports
// the search hits alone.
func (e *ExportCmd) recommendations(ctx context.Context, app *App, base book.SearchHit) []book.SearchHit {
	detail, err := app.Catalog.Book(ctx, base.Key, true)
	if err != nil {
		slog.Warn("Could not compute recommendations for export", "key", base.Key, "error", err)
		return nil
	}
	return detail.Recommendations
}
