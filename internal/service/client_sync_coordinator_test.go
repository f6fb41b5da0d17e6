// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/adapter"
	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/mock"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// manualClock never fires its timers; tests drive the coordinator through
// triggers and SyncOnce.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) NewTimer(time.Duration) Timer {
	return manualTimer{ch: make(chan time.Time)}
}

type manualTimer struct {
	ch chan time.Time
}

func (t manualTimer) C() <-chan time.Time { return t.ch }
func (t manualTimer) Stop() bool          { return true }

type coordinatorDeps struct {
	queue   *mock.MockLocalQueue
	cache   *mock.MockLocalCache
	adapter *mock.MockServerAdapter
	clock   *manualClock
}

func newTestCoordinator(t *testing.T) (*SyncCoordinator, coordinatorDeps) {
	ctrl := gomock.NewController(t)
	deps := coordinatorDeps{
		queue:   mock.NewMockLocalQueue(ctrl),
		cache:   mock.NewMockLocalCache(ctrl),
		adapter: mock.NewMockServerAdapter(ctrl),
		clock:   &manualClock{now: baseTime},
	}

	policy := Policy{
		Interval:       time.Minute,
		BatchSize:      10,
		MaxAttempts:    5,
		BaseBackoff:    2 * time.Second,
		MaxBackoff:     time.Minute,
		RequestTimeout: time.Second,
	}

	c := NewSyncCoordinator(deps.queue, deps.cache, deps.adapter, policy, deps.clock, logger.Nop())
	return c, deps
}

// newLocalStore opens a migrated SQLite store in a temp dir.
func newLocalStore(t *testing.T) *store.LocalStore {
	t.Helper()

	db, err := store.NewConnectSQLite(context.Background(), config.ClientDB{DSN: filepath.Join(t.TempDir(), "local.db")}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.NewLocalStore(db, logger.Nop())
}

func queued(id string, change models.Change) models.QueueEntry {
	return models.QueueEntry{ID: id, Change: change, InFlight: true}
}

func (d coordinatorDeps) expectEmptyPull() {
	d.cache.EXPECT().Checkpoint(gomock.Any()).Return("cp-1", nil)
	d.adapter.EXPECT().Pull(gomock.Any(), "cp-1").Return(models.PullResponse{Checkpoint: "cp-2"}, nil)
	d.cache.EXPECT().ApplyPulled(gomock.Any(), gomock.Len(0), "cp-1", "cp-2").Return(0, nil)
}

func (d coordinatorDeps) expectCounters(pending, failures int) {
	d.queue.EXPECT().Pending(gomock.Any()).Return(pending, nil)
	d.queue.EXPECT().Failures(gomock.Any()).Return(make([]models.FailedEntry, failures), nil)
}

func TestSyncCoordinator_EmptyQueuePullsAndGoesIdle(t *testing.T) {
	c, deps := newTestCoordinator(t)

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil)
	deps.expectEmptyPull()
	deps.expectCounters(0, 0)

	require.NoError(t, c.SyncOnce(context.Background()))

	status := c.Status()
	assert.Equal(t, models.SyncIdle, status.State)
	assert.Equal(t, baseTime, status.LastSuccessAt)
	assert.Equal(t, models.HealthSynced, status.Health())
}

func TestSyncCoordinator_PartialFailure(t *testing.T) {
	c, deps := newTestCoordinator(t)

	batch := []models.QueueEntry{
		queued("q1", putCollection(biologyID, "Biology")),
		queued("q2", putCollection(orphanID, "Stolen")),
		queued("q3", putCard(atomID, cellID, "Atom", "Unit of matter", 0)),
	}

	gomock.InOrder(
		deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(batch, nil),
		deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil),
	)
	deps.adapter.EXPECT().Push(gomock.Any(), []models.Change{batch[0].Change, batch[1].Change, batch[2].Change}).
		Return([]models.ChangeResult{
			{EntityID: biologyID, Status: models.StatusApplied},
			{EntityID: orphanID, Status: models.StatusRejected, Reason: app.ReasonForbidden},
			{EntityID: atomID, Status: models.StatusRejected, Reason: app.ReasonParentNotFound},
		}, nil)
	deps.queue.EXPECT().MarkSucceeded(gomock.Any(), "q1").Return(nil)
	deps.queue.EXPECT().Evict(gomock.Any(), "q2", app.ReasonForbidden).Return(nil)
	deps.queue.EXPECT().HasPendingFor(gomock.Any(), cellID).Return(false, nil)
	deps.queue.EXPECT().Evict(gomock.Any(), "q3", app.ReasonParentNotFound).Return(nil)
	deps.expectEmptyPull()
	deps.expectCounters(0, 2)

	require.NoError(t, c.SyncOnce(context.Background()))

	status := c.Status()
	assert.Equal(t, models.SyncIdle, status.State)
	assert.Equal(t, 2, status.PermanentFailures)
	assert.Equal(t, models.HealthDegraded, status.Health())
}

func TestSyncCoordinator_TransportErrorRetriesAndBacksOff(t *testing.T) {
	c, deps := newTestCoordinator(t)

	batch := []models.QueueEntry{
		queued("q1", putCollection(biologyID, "Biology")),
		queued("q2", putCard(cellID, biologyID, "Cell", "Unit of life", 0)),
	}

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(batch, nil)
	deps.adapter.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: connection refused", adapter.ErrTransport))
	deps.queue.EXPECT().IncrementRetry(gomock.Any(), "q1").Return(1, nil)
	deps.queue.EXPECT().IncrementRetry(gomock.Any(), "q2").Return(1, nil)
	deps.cache.EXPECT().Checkpoint(gomock.Any()).Times(0)
	deps.adapter.EXPECT().Pull(gomock.Any(), gomock.Any()).Times(0)
	deps.expectCounters(2, 0)

	err := c.SyncOnce(context.Background())
	require.ErrorIs(t, err, ErrNotSynced)
	assert.ErrorIs(t, err, ErrPushFailed)
	assert.ErrorIs(t, err, adapter.ErrTransport)

	status := c.Status()
	assert.Equal(t, models.SyncBackoffWait, status.State)
	assert.Equal(t, 1, status.ConsecutiveFailures)
	assert.Equal(t, 2, status.Pending)
	assert.Equal(t, "server unreachable", status.LastError)
	assert.True(t, status.NextAttemptAt.After(baseTime))
	assert.Equal(t, models.HealthDegraded, status.Health())
}

func TestSyncCoordinator_RetryCeilingEvicts(t *testing.T) {
	c, deps := newTestCoordinator(t)

	entry := queued("q1", putCollection(biologyID, "Biology"))

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return([]models.QueueEntry{entry}, nil)
	deps.adapter.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: boom", adapter.ErrInternalServerError))
	deps.queue.EXPECT().IncrementRetry(gomock.Any(), "q1").Return(5, nil)
	deps.queue.EXPECT().Evict(gomock.Any(), "q1", app.ReasonRetriesExhausted).Return(nil)
	deps.expectCounters(0, 1)

	err := c.SyncOnce(context.Background())
	require.ErrorIs(t, err, ErrNotSynced)
	assert.Equal(t, 1, c.Status().PermanentFailures)
	assert.Equal(t, "server error, will retry", c.Status().LastError)
}

func TestSyncCoordinator_SucceedsOneAttemptBeforeCeiling(t *testing.T) {
	c, deps := newTestCoordinator(t)
	ctx := context.Background()

	local := newLocalStore(t)
	c.queue, c.cache = local, local

	_, err := local.Enqueue(ctx, putCollection(biologyID, "Biology"))
	require.NoError(t, err)

	transportErr := fmt.Errorf("%w: connection reset", adapter.ErrTransport)
	gomock.InOrder(
		deps.adapter.EXPECT().Push(gomock.Any(), gomock.Len(1)).Return(nil, transportErr).Times(4),
		deps.adapter.EXPECT().Push(gomock.Any(), gomock.Len(1)).
			Return([]models.ChangeResult{{EntityID: biologyID, Status: models.StatusApplied}}, nil),
		deps.adapter.EXPECT().Pull(gomock.Any(), "").
			Return(models.PullResponse{Checkpoint: "cp-1", Changes: []models.Change{putCollection(biologyID, "Biology")}}, nil),
		deps.adapter.EXPECT().Pull(gomock.Any(), "cp-1").Return(models.PullResponse{Checkpoint: "cp-2"}, nil),
	)

	for attempt := 1; attempt < c.policy.MaxAttempts; attempt++ {
		require.ErrorIs(t, c.SyncOnce(ctx), ErrNotSynced, "attempt %d", attempt)
		assert.Equal(t, 1, c.Status().Pending)
		assert.Zero(t, c.Status().PermanentFailures)
	}

	require.NoError(t, c.SyncOnce(ctx))
	status := c.Status()
	assert.Equal(t, models.SyncIdle, status.State)
	assert.Zero(t, status.Pending)
	assert.Zero(t, status.PermanentFailures)

	failures, err := local.Failures(ctx)
	require.NoError(t, err)
	assert.Empty(t, failures)

	doc, err := local.GetCollection(ctx, biologyID)
	require.NoError(t, err)
	assert.Equal(t, models.LocalConfirmed, doc.Status)

	// nothing left to push on the next pass
	require.NoError(t, c.SyncOnce(ctx))
}

func TestSyncCoordinator_AuthFailureReleasesBatch(t *testing.T) {
	c, deps := newTestCoordinator(t)

	entry := queued("q1", putCollection(biologyID, "Biology"))

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return([]models.QueueEntry{entry}, nil)
	deps.adapter.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("%w: %s", adapter.ErrUnauthorized, app.MsgTokenIsExpired))
	deps.queue.EXPECT().ReleaseInFlight(gomock.Any()).Return(int64(1), nil)
	deps.queue.EXPECT().IncrementRetry(gomock.Any(), gomock.Any()).Times(0)
	deps.queue.EXPECT().Evict(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	deps.expectCounters(1, 0)

	err := c.SyncOnce(context.Background())
	require.ErrorIs(t, err, ErrAuthRejected)
	assert.ErrorIs(t, err, ErrTokenIsExpired)

	status := c.Status()
	assert.Equal(t, models.SyncBackoffWait, status.State)
	assert.Equal(t, "session expired, sign in again", status.LastError)
}

func TestSyncCoordinator_ParentStillQueuedIsRetried(t *testing.T) {
	c, deps := newTestCoordinator(t)

	child := queued("q2", putCard(cellID, biologyID, "Cell", "Unit of life", 0))

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return([]models.QueueEntry{child}, nil).Times(1)
	deps.adapter.EXPECT().Push(gomock.Any(), gomock.Any()).
		Return([]models.ChangeResult{{EntityID: cellID, Status: models.StatusRejected, Reason: app.ReasonParentNotFound}}, nil)
	deps.queue.EXPECT().HasPendingFor(gomock.Any(), biologyID).Return(true, nil)
	deps.queue.EXPECT().IncrementRetry(gomock.Any(), "q2").Return(1, nil)
	deps.queue.EXPECT().Evict(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	deps.expectEmptyPull()
	deps.expectCounters(2, 0)

	err := c.SyncOnce(context.Background())
	require.ErrorIs(t, err, ErrNotSynced)
	assert.Equal(t, models.SyncBackoffWait, c.Status().State)
}

func TestSyncCoordinator_BackoffGrowsAndResets(t *testing.T) {
	c, deps := newTestCoordinator(t)
	ctx := context.Background()

	failPass := func() time.Duration {
		deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil)
		deps.cache.EXPECT().Checkpoint(gomock.Any()).Return("", nil)
		deps.adapter.EXPECT().Pull(gomock.Any(), "").Return(models.PullResponse{}, fmt.Errorf("%w: down", adapter.ErrServiceUnavailable))
		deps.expectCounters(0, 0)

		require.Error(t, c.SyncOnce(ctx))
		return c.Status().NextAttemptAt.Sub(baseTime)
	}

	first := failPass()
	second := failPass()
	assert.Greater(t, second, first)
	assert.Equal(t, 2, c.Status().ConsecutiveFailures)

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil)
	deps.expectEmptyPull()
	deps.expectCounters(0, 0)
	require.NoError(t, c.SyncOnce(ctx))

	status := c.Status()
	assert.Equal(t, 0, status.ConsecutiveFailures)
	assert.True(t, status.NextAttemptAt.IsZero())
	assert.Empty(t, status.LastError)

	assert.InDelta(t, float64(first), float64(failPass()), float64(first)/2, "backoff restarts after success")
}

func TestSyncCoordinator_InvalidCheckpointResetsCursor(t *testing.T) {
	c, deps := newTestCoordinator(t)

	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil)
	deps.cache.EXPECT().Checkpoint(gomock.Any()).Return("stale", nil)
	deps.adapter.EXPECT().Pull(gomock.Any(), "stale").
		Return(models.PullResponse{}, fmt.Errorf("%w: %s", adapter.ErrBadRequest, app.MsgInvalidCheckpoint))
	deps.cache.EXPECT().SaveCheckpoint(gomock.Any(), "").Return(nil)
	deps.expectCounters(0, 0)

	err := c.SyncOnce(context.Background())
	assert.ErrorIs(t, err, ErrInvalidCheckpoint)
}

func TestSyncCoordinator_TriggersCoalesce(t *testing.T) {
	c, _ := newTestCoordinator(t)

	c.NotifyLocalChange()
	c.NotifyForeground()
	c.ForceSync()

	assert.Len(t, c.wake, 1)
	assert.Equal(t, triggerLocal|triggerWake|triggerForce, c.takeTriggers())
	assert.Zero(t, c.takeTriggers())
}

func TestSyncCoordinator_ShouldRun(t *testing.T) {
	tests := []struct {
		name   string
		online bool
		state  models.SyncState
		kinds  trigger
		want   bool
	}{
		{name: "local change while idle", online: true, state: models.SyncIdle, kinds: triggerLocal, want: true},
		{name: "local change while backing off", online: true, state: models.SyncBackoffWait, kinds: triggerLocal, want: false},
		{name: "foreground while backing off", online: true, state: models.SyncBackoffWait, kinds: triggerWake, want: true},
		{name: "local change while offline", online: false, state: models.SyncIdle, kinds: triggerLocal, want: false},
		{name: "foreground while offline", online: false, state: models.SyncIdle, kinds: triggerWake, want: false},
		{name: "force while offline", online: false, state: models.SyncBackoffWait, kinds: triggerForce, want: true},
		{name: "nothing pending", online: true, state: models.SyncIdle, kinds: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCoordinator(t)
			c.status.Online = tt.online
			c.status.State = tt.state

			assert.Equal(t, tt.want, c.shouldRun(tt.kinds))
		})
	}
}

func TestSyncCoordinator_ConnectivityEdges(t *testing.T) {
	c, _ := newTestCoordinator(t)
	updates := c.Subscribe()
	<-updates

	c.NotifyOffline()
	status := <-updates
	assert.False(t, status.Online)

	c.NotifyOnline()
	status = <-updates
	assert.True(t, status.Online)
	assert.Len(t, c.wake, 1)
}

func TestSyncCoordinator_SubscribeKeepsLatest(t *testing.T) {
	c, _ := newTestCoordinator(t)
	updates := c.Subscribe()

	c.setState(models.SyncSyncing)
	c.setState(models.SyncIdle)
	c.NotifyOffline()

	status := <-updates
	assert.Equal(t, models.SyncIdle, status.State)
	assert.False(t, status.Online)
	assert.Empty(t, updates)
}

func TestSyncCoordinator_Resync(t *testing.T) {
	c, deps := newTestCoordinator(t)

	deps.cache.EXPECT().SaveCheckpoint(gomock.Any(), "").Return(nil)

	require.NoError(t, c.Resync(context.Background()))
	assert.Equal(t, triggerForce, c.takeTriggers())
}

// countingClock records every timer it hands out. The first fire timers
// expire at once and advance the clock; the one after that runs exhausted.
type countingClock struct {
	mu        sync.Mutex
	now       time.Time
	delays    []time.Duration
	fire      int
	exhausted func()
}

func (c *countingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *countingClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.delays = append(c.delays, d)
	ch := make(chan time.Time, 1)
	if len(c.delays) <= c.fire {
		c.now = c.now.Add(d)
		ch <- c.now
	} else if c.exhausted != nil {
		c.exhausted()
		c.exhausted = nil
	}
	return manualTimer{ch: ch}
}

func TestSyncCoordinator_OfflineBackoffWaitsAnInterval(t *testing.T) {
	c, deps := newTestCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := &countingClock{now: baseTime, fire: 3, exhausted: cancel}
	c.clock = clock
	c.NotifyOffline()

	deps.queue.EXPECT().ReleaseInFlight(gomock.Any()).Return(int64(0), nil)
	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, errors.New("disk I/O error")).Times(1)
	deps.expectCounters(1, 0)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}

	assert.Equal(t, models.SyncBackoffWait, c.Status().State)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute, time.Minute, time.Minute}, clock.delays)
}

func TestSyncCoordinator_NextDelay(t *testing.T) {
	c, deps := newTestCoordinator(t)

	assert.Equal(t, time.Minute, c.nextDelay())

	c.status.State = models.SyncBackoffWait
	c.status.NextAttemptAt = baseTime.Add(8 * time.Second)
	assert.Equal(t, 8*time.Second, c.nextDelay())

	deps.clock.now = baseTime.Add(time.Hour)
	assert.Zero(t, c.nextDelay())

	c.status.Online = false
	assert.Equal(t, time.Minute, c.nextDelay())
}

func TestSyncCoordinator_RunRecoversAndServesForceSync(t *testing.T) {
	c, deps := newTestCoordinator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deps.queue.EXPECT().ReleaseInFlight(gomock.Any()).Return(int64(3), nil)

	passes := 0
	deps.queue.EXPECT().DrainBatch(gomock.Any(), 10).Return(nil, nil).Times(2)
	deps.cache.EXPECT().Checkpoint(gomock.Any()).Return("", nil).Times(2)
	deps.adapter.EXPECT().Pull(gomock.Any(), "").Return(models.PullResponse{}, nil).Times(2)
	deps.cache.EXPECT().ApplyPulled(gomock.Any(), gomock.Any(), "", gomock.Any()).Return(0, nil).Times(2)
	deps.queue.EXPECT().Failures(gomock.Any()).Return(nil, nil).Times(2)
	deps.queue.EXPECT().Pending(gomock.Any()).DoAndReturn(func(context.Context) (int, error) {
		passes++
		if passes == 1 {
			c.ForceSync()
		} else {
			cancel()
		}
		return 0, nil
	}).Times(2)

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not stop")
	}
	assert.Equal(t, 2, passes)
}

func TestPolicy_Defaults(t *testing.T) {
	p := Policy{}.withDefaults()

	assert.Equal(t, defaultSyncInterval, p.Interval)
	assert.Equal(t, defaultBatchSize, p.BatchSize)
	assert.Equal(t, defaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, defaultBaseBackoff, p.BaseBackoff)
	assert.Equal(t, defaultMaxBackoff, p.MaxBackoff)
	assert.Equal(t, defaultRequestTimeout, p.RequestTimeout)
}
