package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/mock"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestPullService(collections store.CollectionStore, now func() time.Time) *pullService {
	svc := NewPullService(collections, logger.Nop()).(*pullService)
	svc.now = now
	return svc
}

func TestPullService_FullSnapshot(t *testing.T) {
	ctx := context.Background()
	collections := store.NewMemoryCollectionStore()
	clock := ticker(baseTime)

	_, err := newTestPushService(collections, clock).Push(ctx, ownerAlice, []models.Change{
		putCollection(biologyID, "Biology"),
		putCard(cellID, biologyID, "Cell", "Unit of life", 0),
		putCard(atomID, biologyID, "Atom", "Unit of matter", 1),
	})
	require.NoError(t, err)

	resp, err := newTestPullService(collections, clock).Pull(ctx, ownerAlice, "")
	require.NoError(t, err)

	require.Len(t, resp.Changes, 3)
	assert.Equal(t, models.EntityParent, resp.Changes[0].Type)
	assert.Equal(t, biologyID, resp.Changes[0].ID)
	assert.Equal(t, "Biology", resp.Changes[0].Data[models.FieldTitle])
	assert.Equal(t, 2, resp.Changes[0].Data[models.FieldCardCount])
	assert.Equal(t, cellID, resp.Changes[1].ID)
	assert.Equal(t, 0, resp.Changes[1].Data[models.FieldOrder])
	assert.Equal(t, atomID, resp.Changes[2].ID)
	assert.Equal(t, 1, resp.Changes[2].Data[models.FieldOrder])
	assert.NotEmpty(t, resp.Checkpoint)
}

func TestPullService_IncrementalAfterCheckpoint(t *testing.T) {
	ctx := context.Background()
	collections := store.NewMemoryCollectionStore()
	clock := ticker(baseTime)
	pusher := newTestPushService(collections, clock)
	puller := newTestPullService(collections, clock)

	_, err := pusher.Push(ctx, ownerAlice, []models.Change{putCollection(biologyID, "Biology")})
	require.NoError(t, err)

	first, err := puller.Pull(ctx, ownerAlice, "")
	require.NoError(t, err)
	require.Len(t, first.Changes, 1)

	empty, err := puller.Pull(ctx, ownerAlice, first.Checkpoint)
	require.NoError(t, err)
	assert.Empty(t, empty.Changes)

	_, err = pusher.Push(ctx, ownerAlice, []models.Change{putCard(cellID, biologyID, "Cell", "Unit of life", 0)})
	require.NoError(t, err)

	next, err := puller.Pull(ctx, ownerAlice, empty.Checkpoint)
	require.NoError(t, err)
	require.Len(t, next.Changes, 2)
	assert.Equal(t, biologyID, next.Changes[0].ID)
	assert.Equal(t, cellID, next.Changes[1].ID)

	prev, err := models.ParseCheckpoint(empty.Checkpoint)
	require.NoError(t, err)
	cur, err := models.ParseCheckpoint(next.Checkpoint)
	require.NoError(t, err)
	assert.True(t, cur.Time().After(prev.Time()), "checkpoints must advance")
}

func TestPullService_DeletedCollectionIsTombstone(t *testing.T) {
	ctx := context.Background()
	collections := store.NewMemoryCollectionStore()
	clock := ticker(baseTime)
	pusher := newTestPushService(collections, clock)

	_, err := pusher.Push(ctx, ownerAlice, []models.Change{
		putCollection(biologyID, "Biology"),
		putCard(cellID, biologyID, "Cell", "Unit of life", 0),
	})
	require.NoError(t, err)

	checkpoint := models.NewCheckpoint(clock()).String()

	_, err = pusher.Push(ctx, ownerAlice, []models.Change{{Op: models.OpDelete, Type: models.EntityParent, ID: biologyID}})
	require.NoError(t, err)

	resp, err := newTestPullService(collections, clock).Pull(ctx, ownerAlice, checkpoint)
	require.NoError(t, err)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, models.OpDelete, resp.Changes[0].Op)
	assert.Equal(t, true, resp.Changes[0].Data[models.FieldDeleted])
}

func TestPullService_OnlyOwnCollections(t *testing.T) {
	ctx := context.Background()
	collections := store.NewMemoryCollectionStore()
	clock := ticker(baseTime)

	_, err := newTestPushService(collections, clock).Push(ctx, ownerBob, []models.Change{putCollection(biologyID, "Biology")})
	require.NoError(t, err)

	resp, err := newTestPullService(collections, clock).Pull(ctx, ownerAlice, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Changes)
}

func TestPullService_InvalidInput(t *testing.T) {
	svc := newTestPullService(store.NewMemoryCollectionStore(), ticker(baseTime))

	_, err := svc.Pull(context.Background(), 0, "")
	assert.ErrorIs(t, err, ErrInvalidOwnerID)

	_, err = svc.Pull(context.Background(), ownerAlice, "not a checkpoint!")
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)
	assert.ErrorIs(t, err, models.ErrInvalidCheckpoint)
}

func TestPullService_StoreFailureFailsWholePull(t *testing.T) {
	ctrl := gomock.NewController(t)
	collections := mock.NewMockCollectionStore(ctrl)
	svc := newTestPullService(collections, ticker(baseTime))

	collections.EXPECT().
		FindByOwner(gomock.Any(), ownerAlice, time.Time{}).
		Return(nil, store.ErrStoreUnavailable)

	resp, err := svc.Pull(context.Background(), ownerAlice, "")
	assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	assert.Empty(t, resp.Changes)
	assert.Empty(t, resp.Checkpoint)
}

func TestPullService_CheckpointTakenBeforeQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	collections := mock.NewMockCollectionStore(ctrl)
	svc := newTestPullService(collections, func() time.Time { return baseTime })

	collections.EXPECT().
		FindByOwner(gomock.Any(), ownerAlice, time.Time{}).
		Return([]models.Collection{}, nil)

	resp, err := svc.Pull(context.Background(), ownerAlice, "")
	require.NoError(t, err)
	assert.Equal(t, models.NewCheckpoint(baseTime).String(), resp.Checkpoint)
	assert.NotNil(t, resp.Changes)
}
