// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// QueueEntry is a locally durable, not-yet-acknowledged Change.
type QueueEntry struct {
	// ID is the queue-local UUID of the entry.
	ID string

	// Seq is the monotonically increasing enqueue position. Drains are
	// ordered by it.
	Seq int64

	Change Change

	// RetryCount is the number of failed delivery attempts so far.
	RetryCount int

	LastAttemptAt *time.Time

	// InFlight marks entries handed out by a drain and not yet resolved.
	InFlight bool

	CreatedAt time.Time
}

// EntityID returns the id of the entity the entry mutates.
func (q QueueEntry) EntityID() string {
	return q.Change.ID
}

// FailedEntry is a queue entry that was evicted without being applied.
type FailedEntry struct {
	ID         string
	Change     Change
	RetryCount int
	Reason     string
	FailedAt   time.Time
}

// LocalStatus tells whether a cached collection reflects an unconfirmed local
// edit or the last pulled server state.
type LocalStatus string

const (
	LocalPending   LocalStatus = "pending"
	LocalConfirmed LocalStatus = "confirmed"
)

// CachedCollection is a collection as held in the client's local store.
type CachedCollection struct {
	Collection
	Status LocalStatus `json:"-"`
}
