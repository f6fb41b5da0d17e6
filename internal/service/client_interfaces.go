package service

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/models"
)

// CollectionPatch lists the collection fields to change. Nil fields are
// left alone.
type CollectionPatch struct {
	Title    *string
	IsPublic *bool
	Source   *string
}

// CardPatch lists the card fields to change. Nil fields are left alone;
// Order moves the card.
type CardPatch struct {
	Front *string
	Back  *string
	Hint  *string
	Order *int
}

// ClientCollectionService is the client's read/write API over its local
// copy of the owner's collections. Every write is applied to the local cache
// at once and queued for delivery in the same transaction; none of them
// waits for the network.
type ClientCollectionService interface {
	CreateCollection(ctx context.Context, title, source string, isPublic bool) (models.CachedCollection, error)
	UpdateCollection(ctx context.Context, id string, patch CollectionPatch) error
	DeleteCollection(ctx context.Context, id string) error

	// AddCard appends a card to the end of the collection.
	AddCard(ctx context.Context, collectionID, front, back, hint string) (models.Card, error)
	UpdateCard(ctx context.Context, collectionID, cardID string, patch CardPatch) error
	DeleteCard(ctx context.Context, collectionID, cardID string) error

	List(ctx context.Context) ([]models.CachedCollection, error)
	Get(ctx context.Context, id string) (models.CachedCollection, error)

	// Failures lists the changes the queue gave up on.
	Failures(ctx context.Context) ([]models.FailedEntry, error)
}

// SyncNotifier is told about local writes so that delivery starts without
// waiting for the next interval.
type SyncNotifier interface {
	NotifyLocalChange()
}

// ClientSyncService is the background sync coordinator as seen by the UI
// and the workers.
type ClientSyncService interface {
	SyncNotifier

	// Run drives sync passes until ctx is cancelled.
	Run(ctx context.Context) error

	// SyncOnce runs one full pass (drain, push, pull) synchronously.
	SyncOnce(ctx context.Context) error

	NotifyOnline()
	NotifyOffline()
	NotifyForeground()
	ForceSync()

	// Resync forgets the pull checkpoint so that the next pass downloads a
	// full snapshot, then triggers that pass.
	Resync(ctx context.Context) error

	Status() models.SyncStatus

	// Subscribe returns a channel that receives the latest status after every
	// change. Slow readers only miss intermediate snapshots.
	Subscribe() <-chan models.SyncStatus
}
