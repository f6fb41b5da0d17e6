// Package migrations embeds the goose migrations of the server's PostgreSQL
// schema and the client's SQLite schema.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed server/*.sql client/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package state.
var gooseMu sync.Mutex

// MigrateServer brings the PostgreSQL schema up to date.
func MigrateServer(db *sql.DB) error {
	return migrate(db, "pgx", "server")
}

// MigrateClient brings the local SQLite schema up to date.
func MigrateClient(db *sql.DB) error {
	return migrate(db, "sqlite3", "client")
}

func migrate(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
