package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-deck-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// CollectionStore is the authoritative collection store used by the sync
// server. Documents are read and written whole; the pusher does the nested
// merge.
type CollectionStore interface {
	// FindByOwner returns every collection of ownerID, tombstones included,
	// whose UpdatedAt is strictly after since. A zero since returns all.
	FindByOwner(ctx context.Context, ownerID int64, since time.Time) ([]models.Collection, error)

	// FindByID returns ErrCollectionNotFound when id is unknown.
	FindByID(ctx context.Context, id string) (models.Collection, error)

	// Upsert writes the whole document.
	Upsert(ctx context.Context, collection models.Collection) error

	// SoftDelete flags the collection deleted and stamps UpdatedAt with at.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}

// ErrorClassificator decides whether a failed database call may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
