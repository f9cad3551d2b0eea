package datastore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/readersrealm/internal/book"
)

// DatabaseName is the Datasette database exports are written to.
const DatabaseName = "readersrealm"

const (
	booksTable           = "books"
	recommendationsTable = "recommendations"
)

// BooksSchema holds one row per exported search hit.
const BooksSchema = `CREATE TABLE IF NOT EXISTS books (
	key TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	first_publish_year INTEGER,
	cover_id INTEGER,
	languages TEXT,
	query TEXT
)`

// RecommendationsSchema links a base work to its ranked recommendations.
const RecommendationsSchema = `CREATE TABLE IF NOT EXISTS recommendations (
	base_key TEXT NOT NULL,
	rank INTEGER NOT NULL,
	key TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	PRIMARY KEY (base_key, rank)
)`

// Export is one search and, optionally, the recommendations for one of its
// hits.
type Export struct {
	Query           string
	Hits            []book.SearchHit
	BaseKey         string
	Recommendations []book.SearchHit
}

// Write creates the tables and upserts the export into store.
func Write(ctx context.Context, store Store, exp Export) error {
	for _, schema := range []string{BooksSchema, RecommendationsSchema} {
		if err := store.CreateTable(ctx, schema); err != nil {
			return err
		}
	}

	rows := make([]map[string]any, 0, len(exp.Hits))
	for _, hit := range exp.Hits {
		rows = append(rows, bookRow(hit, exp.Query))
	}
	if err := store.BatchInsert(ctx, DatabaseName, booksTable, rows); err != nil {
		return fmt.Errorf("writing books: %w", err)
	}

	recRows := make([]map[string]any, 0, len(exp.Recommendations))
	for i, rec := range exp.Recommendations {
		recRows = append(recRows, map[string]any{
			"base_key": exp.BaseKey,
			"rank":     i + 1,
			"key":      rec.Key,
			"title":    rec.Title,
			"author":   rec.Author,
		})
	}
	if err := store.BatchInsert(ctx, DatabaseName, recommendationsTable, recRows); err != nil {
		return fmt.Errorf("writing recommendations: %w", err)
	}

	slog.Info("Exported search results", "query", exp.Query, "books", len(rows), "recommendations", len(recRows))
	return nil
}

func bookRow(hit book.SearchHit, query string) map[string]any {
	row := ToRow(hit, RowOptions{
		OmitFields:       map[string]bool{"Rating": true},
		JoinStringSlices: true,
	})
	row["query"] = query
	return row
}
