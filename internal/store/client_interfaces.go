package store

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// LocalQueue is the client's durable outbox of not-yet-acknowledged changes.
// Entries are created by the mutation service and destroyed only by the sync
// coordinator.
type LocalQueue interface {
	// Enqueue persists change and returns only after the write is durable.
	Enqueue(ctx context.Context, change models.Change) (models.QueueEntry, error)

	// DrainBatch hands out up to max of the oldest entries that are not in
	// flight and flags them in flight. Concurrent calls never return the
	// same entry.
	DrainBatch(ctx context.Context, max int) ([]models.QueueEntry, error)

	MarkSucceeded(ctx context.Context, id string) error

	// IncrementRetry records a failed attempt, releases the entry and returns
	// the new retry count.
	IncrementRetry(ctx context.Context, id string) (int, error)

	// Evict removes the entry, records it as a permanent failure and clears
	// the checkpoint so that the next pull is a full snapshot.
	Evict(ctx context.Context, id, reason string) error

	// ReleaseInFlight makes entries left in flight by a previous process
	// drainable again. Called once at start-up.
	ReleaseInFlight(ctx context.Context) (int64, error)

	Pending(ctx context.Context) (int, error)
	HasPendingFor(ctx context.Context, entityID string) (bool, error)
	Failures(ctx context.Context) ([]models.FailedEntry, error)
}

// LocalCache is the client's readable copy of the owner's collections.
type LocalCache interface {
	// ApplyLocal applies change optimistically to the cached document and
	// enqueues it, in one transaction.
	ApplyLocal(ctx context.Context, change models.Change) (models.QueueEntry, error)

	// ApplyPulled absorbs changes pulled from since and stores checkpoint, in
	// one transaction. Changes for entities with queued local edits are
	// skipped. An empty since marks a full snapshot, which replaces every
	// document without queued edits. It returns the number of changes applied.
	ApplyPulled(ctx context.Context, changes []models.Change, since, checkpoint string) (int, error)

	GetCollection(ctx context.Context, id string) (models.CachedCollection, error)

	// ListCollections returns the live collections, most recently changed
	// first.
	ListCollections(ctx context.Context) ([]models.CachedCollection, error)

	Checkpoint(ctx context.Context) (string, error)
	SaveCheckpoint(ctx context.Context, checkpoint string) error
}
