package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/projector"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	biologyID = "0190a4c2-7c1e-7b3a-9f00-0000000000b1"
	cellID    = "0190a4c2-7c1e-7b3a-9f00-0000000000c1"
	atomID    = "0190a4c2-7c1e-7b3a-9f00-0000000000c2"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()

	cfg := config.ClientDB{DSN: filepath.Join(t.TempDir(), "local.db")}
	db, err := NewConnectSQLite(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewLocalStore(db, logger.Nop())
}

func parentPut(id, title string) models.Change {
	return models.Change{
		Op:   models.OpPut,
		Type: models.EntityParent,
		ID:   id,
		Data: map[string]any{models.FieldTitle: title},
	}
}

func childPut(id, parentID, front string, order int) models.Change {
	return models.Change{
		Op:       models.OpPut,
		Type:     models.EntityChild,
		ID:       id,
		ParentID: parentID,
		Data:     map[string]any{models.FieldFront: front, models.FieldBack: front + "?", models.FieldOrder: order},
	}
}

func TestLocalStore_EnqueueAndDrainInOrder(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	first, err := s.Enqueue(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)
	second, err := s.Enqueue(ctx, childPut(cellID, biologyID, "Cell", 0))
	require.NoError(t, err)
	assert.Less(t, first.Seq, second.Seq)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	batch, err := s.DrainBatch(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, first.ID, batch[0].ID)
	assert.Equal(t, second.ID, batch[1].ID)
	assert.True(t, batch[0].InFlight)
	assert.Equal(t, biologyID, batch[1].Change.ParentID)

	// in-flight entries are not handed out twice
	again, err := s.DrainBatch(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestLocalStore_DrainBatchRespectsMax(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Enqueue(ctx, parentPut(biologyID, "Biology"))
		require.NoError(t, err)
	}

	batch, err := s.DrainBatch(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	none, err := s.DrainBatch(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalStore_ConcurrentDrainsNeverShareEntries(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		_, err := s.Enqueue(ctx, parentPut(biologyID, "Biology"))
		require.NoError(t, err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]int)
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch, err := s.DrainBatch(ctx, 7)
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			for _, entry := range batch {
				seen[entry.ID]++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 20)
	for id, count := range seen {
		assert.Equal(t, 1, count, "entry %s drained more than once", id)
	}
}

func TestLocalStore_MarkSucceeded(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	entry, err := s.Enqueue(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)

	require.NoError(t, s.MarkSucceeded(ctx, entry.ID))
	assert.ErrorIs(t, s.MarkSucceeded(ctx, entry.ID), ErrQueueEntryNotFound)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestLocalStore_IncrementRetryReleasesEntry(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	entry, err := s.Enqueue(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)

	_, err = s.DrainBatch(ctx, 1)
	require.NoError(t, err)

	count, err := s.IncrementRetry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	batch, err := s.DrainBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, 1, batch[0].RetryCount)
	assert.NotNil(t, batch[0].LastAttemptAt)

	count, err = s.IncrementRetry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = s.IncrementRetry(ctx, "missing")
	assert.ErrorIs(t, err, ErrQueueEntryNotFound)
}

func TestLocalStore_EvictRecordsFailure(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	entry, err := s.Enqueue(ctx, childPut(cellID, biologyID, "Cell", 0))
	require.NoError(t, err)
	require.NoError(t, s.SaveCheckpoint(ctx, "cp-4"))

	require.NoError(t, s.Evict(ctx, entry.ID, "parent-not-found"))
	checkpoint, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, checkpoint, "eviction forces a full pull")

	assert.ErrorIs(t, s.Evict(ctx, entry.ID, "again"), ErrQueueEntryNotFound)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	failures, err := s.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, entry.ID, failures[0].ID)
	assert.Equal(t, "parent-not-found", failures[0].Reason)
	assert.Equal(t, cellID, failures[0].Change.ID)
}

func TestLocalStore_ReleaseInFlightAfterRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.db")
	ctx := context.Background()

	db, err := NewConnectSQLite(ctx, config.ClientDB{DSN: path}, logger.Nop())
	require.NoError(t, err)
	s := NewLocalStore(db, logger.Nop())

	_, err = s.Enqueue(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)
	_, err = s.DrainBatch(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewConnectSQLite(ctx, config.ClientDB{DSN: path}, logger.Nop())
	require.NoError(t, err)
	defer db.Close()
	s = NewLocalStore(db, logger.Nop())

	released, err := s.ReleaseInFlight(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	batch, err := s.DrainBatch(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestLocalStore_HasPendingFor(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.Enqueue(ctx, childPut(cellID, biologyID, "Cell", 0))
	require.NoError(t, err)

	found, err := s.HasPendingFor(ctx, cellID)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.HasPendingFor(ctx, biologyID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalStore_ApplyLocalWritesDocumentAndQueue(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.ApplyLocal(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)
	_, err = s.ApplyLocal(ctx, childPut(cellID, biologyID, "Cell", 0))
	require.NoError(t, err)
	_, err = s.ApplyLocal(ctx, childPut(atomID, biologyID, "Atom", 0))
	require.NoError(t, err)

	doc, err := s.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, models.LocalPending, doc.Status)
	assert.Equal(t, "Biology", doc.Title)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, atomID, doc.Cards[0].ID)
	assert.Equal(t, cellID, doc.Cards[1].ID)
	assert.Equal(t, 2, doc.CardCount)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, pending)
}

func TestLocalStore_ApplyLocalChildWithoutParent(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.ApplyLocal(ctx, childPut(cellID, biologyID, "Cell", 0))
	assert.ErrorIs(t, err, projector.ErrMissingParent)

	pending, err := s.Pending(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending, "failed local change must not be queued")
}

func TestLocalStore_DeletedCollectionIsHidden(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.ApplyLocal(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)
	_, err = s.ApplyLocal(ctx, models.Change{Op: models.OpDelete, Type: models.EntityParent, ID: biologyID})
	require.NoError(t, err)

	_, err = s.GetCollection(ctx, biologyID)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	docs, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLocalStore_ApplyPulledBuildsConfirmedDocuments(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	updated := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	parent := parentPut(biologyID, "Biology")
	parent.Data[models.FieldUpdatedAt] = updated.Format(time.RFC3339Nano)

	cell := childPut(cellID, biologyID, "Cell", 0)
	cell.Data[models.FieldUpdatedAt] = updated.Add(-time.Hour).Format(time.RFC3339Nano)
	atom := childPut(atomID, biologyID, "Atom", 1)
	atom.Data[models.FieldUpdatedAt] = updated.Add(-2 * time.Hour).Format(time.RFC3339Nano)

	changes := []models.Change{
		parent,
		cell,
		atom,
		childPut("0190a4c2-7c1e-7b3a-9f00-0000000000c3", "0190a4c2-7c1e-7b3a-9f00-0000000000ff", "Orphan", 0),
	}

	applied, err := s.ApplyPulled(ctx, changes, "", "cp-1")
	require.NoError(t, err)
	assert.Equal(t, 3, applied)

	doc, err := s.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, models.LocalConfirmed, doc.Status)
	require.Len(t, doc.Cards, 2)
	assert.Equal(t, cellID, doc.Cards[0].ID)
	assert.Equal(t, atomID, doc.Cards[1].ID)
	require.NotNil(t, doc.UpdatedAt)
	assert.True(t, doc.UpdatedAt.Equal(updated))

	checkpoint, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cp-1", checkpoint)
}

func TestLocalStore_ApplyPulledSkipsEntitiesWithLocalEdits(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	_, err := s.ApplyPulled(ctx, []models.Change{parentPut(biologyID, "Biology"), childPut(cellID, biologyID, "Cell", 0)}, "", "cp-1")
	require.NoError(t, err)

	_, err = s.ApplyLocal(ctx, models.Change{
		Op:       models.OpPatch,
		Type:     models.EntityChild,
		ID:       cellID,
		ParentID: biologyID,
		Data:     map[string]any{models.FieldBack: "mine"},
	})
	require.NoError(t, err)

	remote := childPut(cellID, biologyID, "Cell", 0)
	remote.Data[models.FieldBack] = "theirs"
	applied, err := s.ApplyPulled(ctx, []models.Change{parentPut(biologyID, "Biology 2"), remote}, "cp-1", "cp-2")
	require.NoError(t, err)
	assert.Equal(t, 1, applied)

	doc, err := s.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, "Biology 2", doc.Title)
	assert.Equal(t, "mine", doc.Cards[0].Back)
	assert.Equal(t, models.LocalPending, doc.Status)
}

func TestLocalStore_FullPullRepairsEvictedEdits(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	const (
		physicsID   = "0190a4c2-7c1e-7b3a-9f00-0000000000b2"
		chemistryID = "0190a4c2-7c1e-7b3a-9f00-0000000000b3"
	)

	snapshot := func() []models.Change {
		parent := parentPut(biologyID, "Biology")
		parent.Data[models.FieldUpdatedAt] = "2026-03-01T10:00:00Z"
		return []models.Change{parent, childPut(cellID, biologyID, "Cell", 0)}
	}

	_, err := s.ApplyPulled(ctx, snapshot(), "", "cp-1")
	require.NoError(t, err)

	// two edits the server will refuse, one it has not seen yet
	_, err = s.ApplyLocal(ctx, models.Change{
		Op:   models.OpPatch,
		Type: models.EntityParent,
		ID:   biologyID,
		Data: map[string]any{models.FieldTitle: "Local only"},
	})
	require.NoError(t, err)
	_, err = s.ApplyLocal(ctx, parentPut(physicsID, "Physics"))
	require.NoError(t, err)

	batch, err := s.DrainBatch(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	_, err = s.ApplyLocal(ctx, parentPut(chemistryID, "Chemistry"))
	require.NoError(t, err)

	for _, entry := range batch {
		require.NoError(t, s.Evict(ctx, entry.ID, "forbidden"))
	}

	doc, err := s.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, "Local only", doc.Title)
	assert.Equal(t, models.LocalPending, doc.Status)

	since, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	require.Empty(t, since)

	applied, err := s.ApplyPulled(ctx, snapshot(), since, "cp-2")
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	doc, err = s.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, "Biology", doc.Title)
	assert.Equal(t, models.LocalConfirmed, doc.Status)
	require.Len(t, doc.Cards, 1)

	_, err = s.GetCollection(ctx, physicsID)
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	chemistry, err := s.GetCollection(ctx, chemistryID)
	require.NoError(t, err)
	assert.Equal(t, models.LocalPending, chemistry.Status)
}

func TestLocalStore_CheckpointDefaultsToEmpty(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	checkpoint, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, checkpoint)

	require.NoError(t, s.SaveCheckpoint(ctx, "cp-9"))
	checkpoint, err = s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cp-9", checkpoint)
}

func TestLocalStore_ListCollectionsNewestFirst(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	_, err := s.ApplyLocal(ctx, parentPut(biologyID, "Biology"))
	require.NoError(t, err)
	_, err = s.ApplyLocal(ctx, parentPut(atomID, "Physics"))
	require.NoError(t, err)

	docs, err := s.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Physics", docs[0].Title)
	assert.Equal(t, "Biology", docs[1].Title)
}
