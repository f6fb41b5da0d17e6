package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/utils"
	"github.com/MKhiriev/go-deck-sync/models"
)

// sqlExecutor is satisfied by both *sql.DB and *sql.Tx.
type sqlExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LocalStore is the SQLite-backed client store. It implements both
// [LocalQueue] and [LocalCache] over one database so that an optimistic
// write and its queue entry commit together.
type LocalStore struct {
	*DB
	logger *logger.Logger

	// drainMu serializes DrainBatch on top of the immediate transaction.
	drainMu sync.Mutex

	ids *utils.UUIDGenerator
	now func() time.Time
}

// NewLocalStore wraps an opened and migrated SQLite database.
func NewLocalStore(db *DB, logger *logger.Logger) *LocalStore {
	return &LocalStore{
		DB:     db,
		logger: logger,
		ids:    utils.NewUUIDGenerator(),
		now:    time.Now,
	}
}

func (s *LocalStore) Enqueue(ctx context.Context, change models.Change) (models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	entry, err := s.insertEntry(ctx, s.DB, change, s.now().UTC())
	if err != nil {
		log.Err(err).
			Str("func", "LocalStore.Enqueue").
			Str("entity_id", change.ID).
			Msg("failed to enqueue change")
		return models.QueueEntry{}, err
	}

	return entry, nil
}

func (s *LocalStore) insertEntry(ctx context.Context, exec sqlExecutor, change models.Change, now time.Time) (models.QueueEntry, error) {
	changeJSON, err := json.Marshal(change)
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrEncodingDocument, err)
	}

	entry := models.QueueEntry{
		ID:        s.ids.Generate(),
		Change:    change,
		CreatedAt: now,
	}

	result, err := exec.ExecContext(ctx, insertQueueEntry, entry.ID, change.ID, change.ParentID, string(changeJSON), now)
	if err != nil {
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if entry.Seq, err = result.LastInsertId(); err != nil {
		return models.QueueEntry{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return entry, nil
}

func (s *LocalStore) DrainBatch(ctx context.Context, max int) ([]models.QueueEntry, error) {
	log := logger.FromContext(ctx)

	if max <= 0 {
		return nil, nil
	}

	s.drainMu.Lock()
	defer s.drainMu.Unlock()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "LocalStore.DrainBatch").Msg("failed to begin transaction")
		return nil, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	entries, err := selectDrainable(ctx, tx, max)
	if err != nil {
		log.Err(err).Str("func", "LocalStore.DrainBatch").Msg("failed to select drainable entries")
		return nil, err
	}

	for i := range entries {
		if _, err = tx.ExecContext(ctx, markEntryInFlight, entries[i].ID); err != nil {
			log.Err(err).
				Str("func", "LocalStore.DrainBatch").
				Str("entry_id", entries[i].ID).
				Msg("failed to mark entry in flight")
			return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		entries[i].InFlight = true
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "LocalStore.DrainBatch").Msg("failed to commit transaction")
		return nil, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return entries, nil
}

func selectDrainable(ctx context.Context, tx *sql.Tx, max int) ([]models.QueueEntry, error) {
	rows, err := tx.QueryContext(ctx, selectDrainableEntries, max)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.QueueEntry, 0, max)
	for rows.Next() {
		var (
			entry         models.QueueEntry
			changeJSON    string
			lastAttemptAt sql.NullTime
		)

		if err = rows.Scan(&entry.Seq, &entry.ID, &changeJSON, &entry.RetryCount, &lastAttemptAt, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err = json.Unmarshal([]byte(changeJSON), &entry.Change); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
		if lastAttemptAt.Valid {
			at := lastAttemptAt.Time
			entry.LastAttemptAt = &at
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return entries, nil
}

func (s *LocalStore) MarkSucceeded(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, deleteQueueEntry, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "LocalStore.MarkSucceeded").
			Str("entry_id", id).
			Msg("failed to delete queue entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return requireAffected(result, ErrQueueEntryNotFound)
}

func (s *LocalStore) IncrementRetry(ctx context.Context, id string) (int, error) {
	var retryCount int
	err := s.DB.QueryRowContext(ctx, incrementEntryRetry, s.now().UTC(), id).Scan(&retryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrQueueEntryNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "LocalStore.IncrementRetry").
			Str("entry_id", id).
			Msg("failed to increment retry count")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return retryCount, nil
}

func (s *LocalStore) Evict(ctx context.Context, id, reason string) error {
	log := logger.FromContext(ctx)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	var (
		changeJSON string
		retryCount int
	)
	err = tx.QueryRowContext(ctx, selectEntryForEviction, id).Scan(&changeJSON, &retryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrQueueEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if _, err = tx.ExecContext(ctx, insertFailedEntry, id, changeJSON, retryCount, reason, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if _, err = tx.ExecContext(ctx, deleteQueueEntry, id); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	// the server never saw the edit, so the optimistic cache state it left
	// behind is only repaired by a full snapshot
	if _, err = tx.ExecContext(ctx, upsertSyncMeta, checkpointMetaKey, ""); err != nil {
		return fmt.Errorf("%w: %w", ErrCheckpointNotSaved, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	log.Warn().
		Str("func", "LocalStore.Evict").
		Str("entry_id", id).
		Str("reason", reason).
		Int("retry_count", retryCount).
		Msg("queue entry evicted")

	return nil
}

func (s *LocalStore) ReleaseInFlight(ctx context.Context) (int64, error) {
	result, err := s.DB.ExecContext(ctx, releaseInFlightEntries)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	released, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return released, nil
}

func (s *LocalStore) Pending(ctx context.Context) (int, error) {
	var count int
	if err := s.DB.QueryRowContext(ctx, countQueueEntries).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return count, nil
}

func (s *LocalStore) HasPendingFor(ctx context.Context, entityID string) (bool, error) {
	return exists(ctx, s.DB, existsEntryForEntity, entityID)
}

func (s *LocalStore) Failures(ctx context.Context) ([]models.FailedEntry, error) {
	rows, err := s.DB.QueryContext(ctx, selectFailedEntries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	failures := make([]models.FailedEntry, 0)
	for rows.Next() {
		var (
			failure    models.FailedEntry
			changeJSON string
		)
		if err = rows.Scan(&failure.ID, &changeJSON, &failure.RetryCount, &failure.Reason, &failure.FailedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if err = json.Unmarshal([]byte(changeJSON), &failure.Change); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecodingDocument, err)
		}
		failures = append(failures, failure)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return failures, nil
}

func exists(ctx context.Context, exec sqlExecutor, query string, args ...any) (bool, error) {
	var found bool
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return found, nil
}

func requireAffected(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
