// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-deck-sync/internal/adapter"
	"github.com/MKhiriev/go-deck-sync/internal/app"
	"github.com/MKhiriev/go-deck-sync/internal/config"
	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/store"
	"github.com/MKhiriev/go-deck-sync/models"
	"github.com/sethvargo/go-retry"
)

const (
	defaultSyncInterval   = time.Minute
	defaultBatchSize      = 50
	defaultMaxAttempts    = 5
	defaultBaseBackoff    = 2 * time.Second
	defaultMaxBackoff     = 5 * time.Minute
	defaultRequestTimeout = 15 * time.Second

	backoffJitterPercent = 10
)

// Policy tunes the sync coordinator. Zero fields take their defaults.
type Policy struct {
	Interval       time.Duration
	BatchSize      int
	MaxAttempts    int
	BaseBackoff    time.Duration
	MaxBackoff     time.Duration
	RequestTimeout time.Duration
}

// NewPolicy builds a Policy from the client configuration.
func NewPolicy(workers config.ClientWorkers, adapterCfg config.ClientAdapter) Policy {
	return Policy{
		Interval:       workers.SyncInterval,
		BatchSize:      workers.BatchSize,
		MaxAttempts:    workers.MaxAttempts,
		BaseBackoff:    workers.BaseBackoff,
		MaxBackoff:     workers.MaxBackoff,
		RequestTimeout: adapterCfg.RequestTimeout,
	}
}

func (p Policy) withDefaults() Policy {
	if p.Interval <= 0 {
		p.Interval = defaultSyncInterval
	}
	if p.BatchSize <= 0 {
		p.BatchSize = defaultBatchSize
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.BaseBackoff <= 0 {
		p.BaseBackoff = defaultBaseBackoff
	}
	if p.MaxBackoff < p.BaseBackoff {
		p.MaxBackoff = max(defaultMaxBackoff, p.BaseBackoff)
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = defaultRequestTimeout
	}
	return p
}

// trigger kinds, OR-ed together while a pass is pending.
type trigger uint8

const (
	triggerLocal trigger = 1 << iota
	triggerWake
	triggerForce
)

// SyncCoordinator owns the client's sync state machine:
//
//	Idle --trigger--> Syncing --success--> Idle
//	                  Syncing --failure--> BackoffWait --delay/wake--> Syncing
//
// Passes are serialized. Triggers arriving while a pass runs are coalesced
// into one slot and served right after it.
type SyncCoordinator struct {
	queue   store.LocalQueue
	cache   store.LocalCache
	adapter adapter.ServerAdapter
	policy  Policy
	clock   Clock
	logger  *logger.Logger

	wake chan struct{}

	passMu sync.Mutex

	mu          sync.Mutex
	status      models.SyncStatus
	pending     trigger
	backoff     retry.Backoff
	subscribers []chan models.SyncStatus
}

// NewSyncCoordinator returns a coordinator that starts online and idle.
func NewSyncCoordinator(queue store.LocalQueue, cache store.LocalCache, serverAdapter adapter.ServerAdapter,
	policy Policy, clock Clock, logger *logger.Logger) *SyncCoordinator {
	if clock == nil {
		clock = NewRealClock()
	}

	c := &SyncCoordinator{
		queue:   queue,
		cache:   cache,
		adapter: serverAdapter,
		policy:  policy.withDefaults(),
		clock:   clock,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		status:  models.SyncStatus{State: models.SyncIdle, Online: true},
	}
	c.backoff = c.newBackoff()

	return c
}

func (c *SyncCoordinator) newBackoff() retry.Backoff {
	b := retry.NewExponential(c.policy.BaseBackoff)
	b = retry.WithCappedDuration(c.policy.MaxBackoff, b)
	return retry.WithJitterPercent(backoffJitterPercent, b)
}

// NotifyLocalChange asks for a pass after a local mutation. It is ignored
// while offline or backing off.
func (c *SyncCoordinator) NotifyLocalChange() {
	c.kick(triggerLocal)
}

// NotifyOnline marks the server reachable and wakes the coordinator.
func (c *SyncCoordinator) NotifyOnline() {
	c.mu.Lock()
	wasOnline := c.status.Online
	c.status.Online = true
	snapshot := c.status
	c.mu.Unlock()

	if !wasOnline {
		c.logger.Info().Str("func", "SyncCoordinator.NotifyOnline").Msg("connectivity restored")
		c.publish(snapshot)
	}
	c.kick(triggerWake)
}

// NotifyOffline marks the server unreachable. Scheduled passes are skipped
// until NotifyOnline.
func (c *SyncCoordinator) NotifyOffline() {
	c.mu.Lock()
	wasOnline := c.status.Online
	c.status.Online = false
	snapshot := c.status
	c.mu.Unlock()

	if wasOnline {
		c.logger.Info().Str("func", "SyncCoordinator.NotifyOffline").Msg("connectivity lost")
		c.publish(snapshot)
	}
}

// NotifyForeground asks for a pass when the user returns to the app, cutting
// a backoff wait short.
func (c *SyncCoordinator) NotifyForeground() {
	c.kick(triggerWake)
}

// ForceSync asks for a pass regardless of connectivity and backoff.
func (c *SyncCoordinator) ForceSync() {
	c.kick(triggerForce)
}

// Resync clears the checkpoint and forces a pass, so the next pull downloads
// a full snapshot.
func (c *SyncCoordinator) Resync(ctx context.Context) error {
	if err := c.cache.SaveCheckpoint(ctx, ""); err != nil {
		return fmt.Errorf("reset checkpoint: %w", err)
	}
	c.kick(triggerForce)
	return nil
}

// kick records the trigger and fills the wake slot if it is empty.
func (c *SyncCoordinator) kick(kind trigger) {
	c.mu.Lock()
	c.pending |= kind
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *SyncCoordinator) takeTriggers() trigger {
	c.mu.Lock()
	defer c.mu.Unlock()

	kinds := c.pending
	c.pending = 0
	return kinds
}

// Status returns the current status snapshot.
func (c *SyncCoordinator) Status() models.SyncStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Subscribe returns a channel holding the latest status. A slow reader only
// ever sees the newest snapshot.
func (c *SyncCoordinator) Subscribe() <-chan models.SyncStatus {
	ch := make(chan models.SyncStatus, 1)

	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	ch <- c.status
	c.mu.Unlock()

	return ch
}

// publish replaces whatever snapshot each subscriber has not read yet.
func (c *SyncCoordinator) publish(status models.SyncStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- status:
		default:
		}
	}
}

func (c *SyncCoordinator) Run(ctx context.Context) error {
	log := c.logger.GetChildLogger()

	released, err := c.queue.ReleaseInFlight(ctx)
	if err != nil {
		log.Err(err).Str("func", "SyncCoordinator.Run").Msg("failed to release in-flight entries")
		return fmt.Errorf("release in-flight entries: %w", err)
	}
	if released > 0 {
		log.Info().Str("func", "SyncCoordinator.Run").Int64("released", released).Msg("recovered entries left in flight")
	}

	c.runPass(ctx)

	for {
		timer := c.clock.NewTimer(c.nextDelay())

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Str("func", "SyncCoordinator.Run").Msg("sync coordinator stopped")
			return nil

		case <-c.wake:
			timer.Stop()
			if c.shouldRun(c.takeTriggers()) {
				c.runPass(ctx)
			}

		case <-timer.C():
			if c.Status().Online {
				c.runPass(ctx)
			}
		}
	}
}

// nextDelay is the time until the next scheduled pass: the backoff deadline
// while backing off online, the interval otherwise. An offline coordinator
// never reaches its deadline, so it waits a full interval or for a wake.
func (c *SyncCoordinator) nextDelay() time.Duration {
	status := c.Status()
	if !status.Online || status.State != models.SyncBackoffWait {
		return c.policy.Interval
	}
	return max(status.NextAttemptAt.Sub(c.clock.Now()), 0)
}

func (c *SyncCoordinator) shouldRun(kinds trigger) bool {
	status := c.Status()

	switch {
	case kinds&triggerForce != 0:
		return true
	case !status.Online:
		return false
	case kinds&triggerWake != 0:
		return true
	case kinds&triggerLocal != 0:
		return status.State != models.SyncBackoffWait
	default:
		return false
	}
}

func (c *SyncCoordinator) runPass(ctx context.Context) {
	if err := c.SyncOnce(ctx); err != nil && ctx.Err() == nil {
		c.logger.Warn().Err(err).Str("func", "SyncCoordinator.runPass").Msg("sync pass failed")
	}
}

// SyncOnce runs one episode: push every queued change in batches, then pull.
// The pull is skipped when the push request itself failed.
func (c *SyncCoordinator) SyncOnce(ctx context.Context) error {
	c.passMu.Lock()
	defer c.passMu.Unlock()

	c.setState(models.SyncSyncing)

	err := c.push(ctx)
	if err == nil || (errors.Is(err, ErrNotSynced) && !errors.Is(err, ErrPushFailed)) {
		if pullErr := c.pull(ctx); pullErr != nil {
			err = errors.Join(err, pullErr)
		}
	}

	c.finish(ctx, err)
	return err
}

func (c *SyncCoordinator) setState(state models.SyncState) {
	c.mu.Lock()
	c.status.State = state
	snapshot := c.status
	c.mu.Unlock()

	c.publish(snapshot)
}

// push drains and pushes until the queue is empty. Draining stops after a
// batch that deferred entries, since they would be handed out again at once.
func (c *SyncCoordinator) push(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := c.queue.DrainBatch(ctx, c.policy.BatchSize)
		if err != nil {
			return fmt.Errorf("drain queue: %w", err)
		}
		if len(batch) == 0 {
			return nil
		}

		deferred, err := c.pushBatch(ctx, batch)
		if err != nil {
			return err
		}
		if deferred > 0 {
			return fmt.Errorf("%w: %d changes deferred", ErrNotSynced, deferred)
		}
	}
}

// pushBatch sends one batch and settles every entry. It returns how many
// entries were put back for a later attempt.
func (c *SyncCoordinator) pushBatch(ctx context.Context, batch []models.QueueEntry) (int, error) {
	log := c.logger.GetChildLogger()

	changes := make([]models.Change, len(batch))
	for i, entry := range batch {
		changes[i] = entry.Change
	}

	pushCtx, cancel := context.WithTimeout(ctx, c.policy.RequestTimeout)
	results, err := c.adapter.Push(pushCtx, changes)
	cancel()

	if err != nil {
		mapped := mapAdapterError(err)
		if errors.Is(mapped, ErrAuthRejected) {
			log.Err(err).Str("func", "SyncCoordinator.pushBatch").Msg("server rejected credentials, releasing batch")
			if _, relErr := c.queue.ReleaseInFlight(ctx); relErr != nil {
				return 0, errors.Join(mapped, relErr)
			}
			return 0, mapped
		}

		log.Err(err).Str("func", "SyncCoordinator.pushBatch").Int("batch", len(batch)).Msg("push failed, scheduling retry")
		for _, entry := range batch {
			if retryErr := c.retry(ctx, entry); retryErr != nil {
				return 0, errors.Join(mapped, retryErr)
			}
		}
		return 0, fmt.Errorf("%w: %w: %w", ErrNotSynced, ErrPushFailed, mapped)
	}

	deferred := 0
	for i, result := range results {
		entry := batch[i]

		switch {
		case result.Applied():
			err = c.queue.MarkSucceeded(ctx, entry.ID)

		case result.Reason == app.ReasonParentNotFound:
			var parentQueued bool
			parentQueued, err = c.queue.HasPendingFor(ctx, entry.Change.ParentID)
			if err != nil {
				break
			}
			if parentQueued {
				deferred++
				err = c.retry(ctx, entry)
			} else {
				err = c.evict(ctx, entry, result.Reason)
			}

		default:
			err = c.evict(ctx, entry, result.Reason)
		}

		if err != nil {
			return deferred, fmt.Errorf("settle entry %s: %w", entry.ID, err)
		}
	}

	return deferred, nil
}

// retry counts a failed attempt and evicts the entry at the ceiling.
func (c *SyncCoordinator) retry(ctx context.Context, entry models.QueueEntry) error {
	count, err := c.queue.IncrementRetry(ctx, entry.ID)
	if err != nil {
		return err
	}
	if count >= c.policy.MaxAttempts {
		return c.evict(ctx, entry, app.ReasonRetriesExhausted)
	}
	return nil
}

func (c *SyncCoordinator) evict(ctx context.Context, entry models.QueueEntry, reason string) error {
	c.logger.Warn().
		Str("func", "SyncCoordinator.evict").
		Str("entity_id", entry.Change.ID).
		Str("op", string(entry.Change.Op)).
		Str("reason", reason).
		Msg("change permanently failed")

	return c.queue.Evict(ctx, entry.ID, reason)
}

func (c *SyncCoordinator) pull(ctx context.Context) error {
	log := c.logger.GetChildLogger()

	checkpoint, err := c.cache.Checkpoint(ctx)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	pullCtx, cancel := context.WithTimeout(ctx, c.policy.RequestTimeout)
	resp, err := c.adapter.Pull(pullCtx, checkpoint)
	cancel()

	if err != nil {
		mapped := mapAdapterError(err)
		if errors.Is(mapped, ErrInvalidCheckpoint) {
			log.Warn().Str("func", "SyncCoordinator.pull").Str("checkpoint", checkpoint).Msg("server refused checkpoint, next pull is a full snapshot")
			if saveErr := c.cache.SaveCheckpoint(ctx, ""); saveErr != nil {
				return errors.Join(mapped, saveErr)
			}
		}
		return mapped
	}

	applied, err := c.cache.ApplyPulled(ctx, resp.Changes, checkpoint, resp.Checkpoint)
	if err != nil {
		return fmt.Errorf("apply pulled changes: %w", err)
	}

	log.Debug().
		Str("func", "SyncCoordinator.pull").
		Int("received", len(resp.Changes)).
		Int("applied", applied).
		Bool("full", checkpoint == "").
		Msg("pull applied")

	return nil
}

// finish moves the machine out of Syncing and publishes the new status.
func (c *SyncCoordinator) finish(ctx context.Context, err error) {
	log := c.logger.GetChildLogger()

	// counts are read with a fresh context so that a shutdown mid-pass still
	// leaves an accurate status behind
	countCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.policy.RequestTimeout)
	defer cancel()

	pending, pendingErr := c.queue.Pending(countCtx)
	failures, failuresErr := c.queue.Failures(countCtx)
	if countErr := errors.Join(pendingErr, failuresErr); countErr != nil {
		log.Err(countErr).Str("func", "SyncCoordinator.finish").Msg("failed to refresh queue counters")
	}

	now := c.clock.Now()

	c.mu.Lock()
	switch {
	case err == nil:
		c.status.State = models.SyncIdle
		c.status.ConsecutiveFailures = 0
		c.status.NextAttemptAt = time.Time{}
		c.status.LastSuccessAt = now
		c.status.LastError = ""
		c.backoff = c.newBackoff()

	case ctx.Err() != nil:
		c.status.State = models.SyncIdle

	default:
		delay, stop := c.backoff.Next()
		if stop {
			delay = c.policy.MaxBackoff
		}
		c.status.State = models.SyncBackoffWait
		c.status.ConsecutiveFailures++
		c.status.NextAttemptAt = now.Add(delay)
		c.status.LastError = describeSyncError(err)
	}
	if pendingErr == nil {
		c.status.Pending = pending
	}
	if failuresErr == nil {
		c.status.PermanentFailures = len(failures)
	}
	snapshot := c.status
	c.mu.Unlock()

	c.publish(snapshot)
}
