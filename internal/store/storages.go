package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
)

// Storages groups the server-side stores.
type Storages struct {
	Collections CollectionStore

	// db is nil for the in-memory store.
	db *DB
}

// NewStorages connects to PostgreSQL when cfg.DB.DSN is set and falls back to
// the in-memory store otherwise.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	if cfg.DB.DSN == "" {
		logger.Warn().Msg("no database DSN configured, using in-memory collection store")
		return &Storages{Collections: NewMemoryCollectionStore()}, nil
	}

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	return &Storages{
		Collections: NewCollectionRepository(db, logger),
		db:          db,
	}, nil
}

// Close releases the database connection, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
