package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/projector"
	"github.com/MKhiriev/go-deck-sync/models"
)

func (s *LocalStore) ApplyLocal(ctx context.Context, change models.Change) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)
	now := s.now().UTC()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyLocal").Msg("failed to begin transaction")
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	docID := documentID(change)
	existing, err := loadDocument(ctx, tx, docID)
	if err != nil {
		return models.QueueEntry{}, err
	}

	doc, err := projector.Absorb(baseDocument(existing), change, 0, now)
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.ApplyLocal").
			Str("entity_id", change.ID).
			Str("document_id", docID).
			Msg("failed to apply local change")
		return models.QueueEntry{}, err
	}

	if doc != nil {
		if err = storeDocument(ctx, tx, *doc, models.LocalPending, now); err != nil {
			return models.QueueEntry{}, err
		}
	}

	entry, err := s.insertEntry(ctx, tx, change, now)
	if err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyLocal").Msg("failed to enqueue local change")
		return models.QueueEntry{}, err
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyLocal").Msg("failed to commit transaction")
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return entry, nil
}

// ApplyPulled implements [LocalCache]. A pull from the empty checkpoint is a
// full snapshot: every cached document without queued entries is dropped
// first and rebuilt from it, which also discards optimistic state left by
// evicted edits.
func (s *LocalStore) ApplyPulled(ctx context.Context, changes []models.Change, since, checkpoint string) (int, error) {
	log := logger.FromContext(ctx)
	now := s.now().UTC()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyPulled").Msg("failed to begin transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if since == "" {
		result, err := tx.ExecContext(ctx, deleteUnqueuedCollections)
		if err != nil {
			log.Err(err).Str("func", "LocalStore.ApplyPulled").Msg("failed to clear cache before full snapshot")
			return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		dropped, _ := result.RowsAffected()
		log.Debug().
			Str("func", "LocalStore.ApplyPulled").
			Int64("dropped", dropped).
			Int("changes", len(changes)).
			Msg("rebuilding cache from full snapshot")
	}

	applied := 0
	for _, change := range changes {
		pending, err := exists(ctx, tx, existsEntryForEntity, change.ID)
		if err != nil {
			return 0, err
		}
		if pending {
			log.Debug().
				Str("func", "LocalStore.ApplyPulled").
				Str("entity_id", change.ID).
				Msg("skipping pulled change for entity with queued local edits")
			continue
		}

		ok, err := applyPulledChange(ctx, tx, change, now)
		if err != nil {
			return 0, err
		}
		if ok {
			applied++
		}
	}

	if _, err = tx.ExecContext(ctx, upsertSyncMeta, checkpointMetaKey, checkpoint); err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyPulled").Msg("failed to save checkpoint")
		return 0, fmt.Errorf("%w: %w", ErrCheckpointNotSaved, err)
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "LocalStore.ApplyPulled").Msg("failed to commit transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return applied, nil
}

// applyPulledChange absorbs one server change. Changes that cannot be
// absorbed (orphans, bad payloads) are skipped with a warning: the server
// already accepted them and the next full pull will repair the cache.
func applyPulledChange(ctx context.Context, tx *sql.Tx, change models.Change, now time.Time) (bool, error) {
	log := logger.FromContext(ctx)
	docID := documentID(change)

	existing, err := loadDocument(ctx, tx, docID)
	if err != nil {
		return false, err
	}

	at := serverTime(change, now)
	var previous *time.Time
	if existing != nil {
		previous = existing.UpdatedAt
	}

	doc, err := projector.Absorb(baseDocument(existing), change, 0, at)
	if errors.Is(err, projector.ErrMissingParent) || errors.Is(err, projector.ErrMalformedChange) {
		log.Warn().Err(err).
			Str("func", "LocalStore.ApplyPulled").
			Str("entity_id", change.ID).
			Str("document_id", docID).
			Msg("skipping pulled change")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	// Children arrive in list order with their own timestamps; the document
	// keeps the newest one.
	if change.IsChild() && previous != nil && previous.After(*doc.UpdatedAt) {
		doc.UpdatedAt = previous
	}

	status := models.LocalConfirmed
	pending, err := exists(ctx, tx, existsEntryForDocument, docID, docID)
	if err != nil {
		return false, err
	}
	if pending {
		status = models.LocalPending
	}

	if err = storeDocument(ctx, tx, *doc, status, at); err != nil {
		return false, err
	}

	return true, nil
}

func (s *LocalStore) GetCollection(ctx context.Context, id string) (models.CachedCollection, error) {
	doc, err := loadDocument(ctx, s.DB, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "LocalStore.GetCollection").
			Str("collection_id", id).
			Msg("failed to load cached collection")
		return models.CachedCollection{}, err
	}
	if doc == nil || doc.Deleted {
		return models.CachedCollection{}, ErrCollectionNotFound
	}

	return *doc, nil
}

func (s *LocalStore) ListCollections(ctx context.Context) ([]models.CachedCollection, error) {
	rows, err := s.DB.QueryContext(ctx, selectCachedCollections)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	docs := make([]models.CachedCollection, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if doc.Deleted {
			continue
		}
		docs = append(docs, doc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return docs, nil
}

func (s *LocalStore) Checkpoint(ctx context.Context) (string, error) {
	var checkpoint string
	err := s.DB.QueryRowContext(ctx, selectSyncMeta, checkpointMetaKey).Scan(&checkpoint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return checkpoint, nil
}

func (s *LocalStore) SaveCheckpoint(ctx context.Context, checkpoint string) error {
	if _, err := s.DB.ExecContext(ctx, upsertSyncMeta, checkpointMetaKey, checkpoint); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointNotSaved, err)
	}
	return nil
}

// documentID returns the id of the collection a change lands in.
func documentID(change models.Change) string {
	if change.IsChild() {
		return change.ParentID
	}
	return change.ID
}

// serverTime returns the change's "updatedAt" stamp, or fallback.
func serverTime(change models.Change, fallback time.Time) time.Time {
	raw, ok := change.Data[models.FieldUpdatedAt].(string)
	if !ok {
		return fallback
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return fallback
	}

	return at.UTC()
}

// loadDocument returns the cached document including deleted ones, or nil
// when the id is unknown.
func loadDocument(ctx context.Context, exec sqlExecutor, id string) (*models.CachedCollection, error) {
	doc, err := scanDocument(exec.QueryRowContext(ctx, selectCachedCollection, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// baseDocument unwraps a cached document for the projector; nil stays nil.
func baseDocument(cached *models.CachedCollection) *models.Collection {
	if cached == nil {
		return nil
	}
	return &cached.Collection
}

func scanDocument(row rowScanner) (models.CachedCollection, error) {
	var (
		document string
		status   string
		doc      models.CachedCollection
	)

	if err := row.Scan(&document, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doc, err
		}
		return doc, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal([]byte(document), &doc.Collection); err != nil {
		return doc, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
	}
	doc.RecountCards()
	doc.Status = models.LocalStatus(status)

	return doc, nil
}

func storeDocument(ctx context.Context, exec sqlExecutor, doc models.Collection, status models.LocalStatus, fallback time.Time) error {
	document, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	updatedAt := fallback
	if doc.UpdatedAt != nil {
		updatedAt = *doc.UpdatedAt
	}

	if _, err = exec.ExecContext(ctx, upsertCachedCollection, doc.ID, string(document), string(status), updatedAt); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
