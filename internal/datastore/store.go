// Package datastore writes exported search results to SQLite or to a remote
// Datasette instance.
package datastore

import "context"

// Store is a destination for exported rows.
type Store interface {
	// Connect establishes a connection to the data store
	Connect() error

	// CreateTable creates a new table with the given schema if it doesn't exist
	CreateTable(ctx context.Context, schema string) error

	// BatchInsert upserts records into database.table
	BatchInsert(ctx context.Context, database, table string, records []map[string]any) error

	// Close closes the connection to the data store
	Close() error
}
