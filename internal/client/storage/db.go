// Package storage opens the client's local SQLite database and wires the
// repositories on top of it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/ryliegao/ricebook-client/internal/client/migrations"
	"github.com/ryliegao/ricebook-client/internal/client/repositories/state"
)

// Repositories bundles the local persistence layer handed to the rest of
// the client.
type Repositories struct {
	State state.Repository
	DB    *sql.DB
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the local database at dsn,
// migrates it, and returns the repositories. Callers that can tolerate a
// missing local store should treat an error here as a downgrade to
// memory-only operation, not a fatal condition.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening local database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating local database: %w", err)
	}

	return &Repositories{
		State: state.NewSQLiteRepository(db),
		DB:    db,
	}, nil
}
