// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// PullResponse is returned by GET /api/sync/pull.
type PullResponse struct {
	// Checkpoint is the token to send on the next pull.
	Checkpoint string `json:"checkpoint"`

	// Changes lists every entity modified after the requested checkpoint,
	// flattened. Parents precede their children.
	Changes []Change `json:"changes"`
}

// PushRequest is the body of POST /api/sync/push.
type PushRequest struct {
	Changes []Change `json:"changes"`

	// Hash is the hex HMAC-SHA256 of the JSON-encoded Changes. Checked only
	// when the server is configured with a hash key.
	Hash string `json:"hash,omitempty"`
}

// PushResponse is returned by POST /api/sync/push. Results are aligned with
// the request's Changes.
type PushResponse struct {
	Results []ChangeResult `json:"results"`
	Length  int            `json:"length"`
}

// SyncState is the coordinator's current phase.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncSyncing
	SyncBackoffWait
)

// String returns the lower-case state name used in logs and the status view.
func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncSyncing:
		return "syncing"
	case SyncBackoffWait:
		return "backoff"
	default:
		return "unknown"
	}
}

// Health is the coarse status shown to the user.
type Health string

const (
	HealthSynced   Health = "synced"
	HealthSyncing  Health = "syncing"
	HealthDegraded Health = "degraded"
)

// SyncStatus is a point-in-time snapshot of the sync coordinator.
type SyncStatus struct {
	State   SyncState
	Online  bool
	Pending int

	// PermanentFailures counts entries evicted from the queue.
	PermanentFailures int

	// ConsecutiveFailures counts failed episodes since the last success.
	ConsecutiveFailures int

	NextAttemptAt time.Time
	LastSuccessAt time.Time
	LastError     string
}

// Health derives the user-facing status from the snapshot.
func (s SyncStatus) Health() Health {
	switch {
	case s.PermanentFailures > 0 || s.State == SyncBackoffWait:
		return HealthDegraded
	case s.State == SyncSyncing || s.Pending > 0:
		return HealthSyncing
	default:
		return HealthSynced
	}
}
