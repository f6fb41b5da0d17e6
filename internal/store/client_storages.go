package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
)

// ClientStorages groups the client-side stores. Queue and Cache share one
// SQLite database so that optimistic writes and their queue entries commit
// together.
type ClientStorages struct {
	Queue LocalQueue
	Cache LocalCache

	db *DB
}

// NewClientStorages opens (creating if needed) and migrates the local SQLite
// database at cfg.DB.DSN.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	local := NewLocalStore(db, logger)

	return &ClientStorages{
		Queue: local,
		Cache: local,
		db:    db,
	}, nil
}

func (s *ClientStorages) Close() error {
	return s.db.Close()
}
