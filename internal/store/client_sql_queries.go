// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	insertQueueEntry = `
		INSERT INTO queue_entries (
			id,
			entity_id,
			parent_id,
			change,
			retry_count,
			in_flight,
			created_at
		) VALUES (?, ?, ?, ?, 0, 0, ?);`

	selectDrainableEntries = `
		SELECT
			seq,
			id,
			change,
			retry_count,
			last_attempt_at,
			created_at
		FROM queue_entries
		WHERE in_flight = 0
		ORDER BY seq
		LIMIT ?;`

	markEntryInFlight = `
		UPDATE queue_entries
		SET in_flight = 1
		WHERE id = ?;`

	deleteQueueEntry = `
		DELETE FROM queue_entries
		WHERE id = ?;`

	incrementEntryRetry = `
		UPDATE queue_entries
		SET retry_count = retry_count + 1,
			in_flight = 0,
			last_attempt_at = ?
		WHERE id = ?
		RETURNING retry_count;`

	selectEntryForEviction = `
		SELECT change, retry_count
		FROM queue_entries
		WHERE id = ?;`

	insertFailedEntry = `
		INSERT INTO failed_entries (id, change, retry_count, reason, failed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			reason = excluded.reason,
			failed_at = excluded.failed_at;`

	releaseInFlightEntries = `
		UPDATE queue_entries
		SET in_flight = 0
		WHERE in_flight = 1;`

	countQueueEntries = `SELECT COUNT(*) FROM queue_entries;`

	existsEntryForEntity = `
		SELECT EXISTS (
			SELECT 1 FROM queue_entries WHERE entity_id = ?
		);`

	existsEntryForDocument = `
		SELECT EXISTS (
			SELECT 1 FROM queue_entries WHERE entity_id = ? OR parent_id = ?
		);`

	selectFailedEntries = `
		SELECT id, change, retry_count, reason, failed_at
		FROM failed_entries
		ORDER BY failed_at;`

	selectCachedCollection = `
		SELECT document, sync_status
		FROM collections
		WHERE id = ?;`

	selectCachedCollections = `
		SELECT document, sync_status
		FROM collections
		ORDER BY updated_at DESC, id;`

	deleteUnqueuedCollections = `
		DELETE FROM collections
		WHERE NOT EXISTS (
			SELECT 1 FROM queue_entries q
			WHERE q.entity_id = collections.id OR q.parent_id = collections.id
		);`

	upsertCachedCollection = `
		INSERT INTO collections (id, document, sync_status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			document = excluded.document,
			sync_status = excluded.sync_status,
			updated_at = excluded.updated_at;`

	selectSyncMeta = `
		SELECT value
		FROM sync_meta
		WHERE key = ?;`

	upsertSyncMeta = `
		INSERT INTO sync_meta (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value;`
)

const checkpointMetaKey = "checkpoint"
