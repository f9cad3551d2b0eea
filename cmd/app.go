package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-json"

	"github.com/lepinkainen/readersrealm/internal/api"
	"github.com/lepinkainen/readersrealm/internal/authors"
	"github.com/lepinkainen/readersrealm/internal/catalog"
	"github.com/lepinkainen/readersrealm/internal/config"
	"github.com/lepinkainen/readersrealm/internal/genres"
	"github.com/lepinkainen/readersrealm/internal/openlibrary"
	"github.com/lepinkainen/readersrealm/internal/recommend"
	"github.com/lepinkainen/readersrealm/internal/textproc"
)

// Catalog is what the commands need from the catalog service.
type Catalog interface {
	api.Catalog
	RecommendationsEnabled() bool
}

// App is bound into every command's Run method.
type App struct {
	Config  *config.Config
	Catalog Catalog
	Out     io.Writer
}

// newApp builds the text engine, Open Library client and catalog service
// from cfg.
func newApp(cfg *config.Config, out io.Writer) (*App, error) {
	var extra []string
	if cfg.NLP.StopwordsFile != "" {
		words, err := textproc.LoadStopwords(cfg.NLP.StopwordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading stop-words: %w", err)
		}
		extra = words
	}

	engine, err := textproc.NewEngine(textproc.Options{
		Extractor:      cfg.NLP.Extractor,
		ExtraStopwords: extra,
	})
	if err != nil {
		return nil, err
	}

	client := openlibrary.NewClient(openlibrary.Options{
		BaseURL:           cfg.OpenLibrary.BaseURL,
		CoversURL:         cfg.OpenLibrary.CoversURL,
		UserAgent:         cfg.OpenLibrary.UserAgent,
		Timeout:           cfg.OpenLibrary.Timeout,
		RequestsPerSecond: cfg.OpenLibrary.RequestsPerSecond,
		MaxRetries:        cfg.OpenLibrary.MaxRetries,
		BreakerFailures:   cfg.OpenLibrary.BreakerFailures,
		BreakerTimeout:    cfg.OpenLibrary.BreakerTimeout,
	})

	var recommender *recommend.Engine
	if cfg.Recommend.Enabled {
		recommender = recommend.NewEngine(engine, cfg.Recommend.TopK)
	}

	svc := catalog.NewService(client,
		authors.NewDisambiguator(engine, cfg.NLP.AuthorThreshold),
		genres.NewClusterer(engine, cfg.NLP.TopGenres, cfg.NLP.GenreThreshold),
		recommender,
		catalog.Options{
			PlaceholderRating: cfg.Catalog.PlaceholderRating,
			CandidateLimit:    cfg.Recommend.CandidateLimit,
			HighestRatedQuery: cfg.Catalog.HighestRatedQuery,
			HighestRatedLimit: cfg.Catalog.HighestRatedLimit,
		},
	)

	slog.Debug("Application wired",
		"extractor", cfg.NLP.Extractor,
		"extra_stopwords", len(extra),
		"recommendations", cfg.Recommend.Enabled,
		"openlibrary", cfg.OpenLibrary.BaseURL,
	)

	return &App{Config: cfg, Catalog: svc, Out: out}, nil
}

// printJSON writes v as indented JSON followed by a newline.
func (a *App) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(a.Out, string(data))
	return err
}

func (a *App) withRecommendations(requested bool) bool {
	return requested && a.Catalog.RecommendationsEnabled()
}

func (a *App) book(ctx context.Context, key string, recommendations bool) error {
	detail, err := a.Catalog.Book(ctx, key, a.withRecommendations(recommendations))
	if err != nil {
		return err
	}
	return a.printJSON(detail)
}
