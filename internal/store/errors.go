package store

import "errors"

// Sentinel errors returned by the stores to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrCollectionNotFound is returned when no collection has the requested id.
	ErrCollectionNotFound = errors.New("collection was not found")

	// ErrStoreUnavailable wraps failures that may succeed on retry: lost
	// connections, serialization failures, deadlocks, a server that cannot
	// accept connections yet.
	ErrStoreUnavailable = errors.New("store is unavailable")

	// ErrQueueEntryNotFound is returned when a queue operation targets an
	// entry that has already been removed.
	ErrQueueEntryNotFound = errors.New("queue entry was not found")

	// ErrCheckpointNotSaved is returned when storing the pull checkpoint
	// affects no rows.
	ErrCheckpointNotSaved = errors.New("checkpoint was not saved")
)

// Low-level database operation errors. These are returned (or wrapped) by
// store methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open transaction
	// fails. The transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing an INSERT, UPDATE or
	// DELETE fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single result row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when multi-row iteration fails.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingDocument is returned when a collection or change cannot be
	// encoded to JSON for storage.
	ErrEncodingDocument = errors.New("failed to encode document")

	// ErrDecodingDocument is returned when a stored JSON column cannot be
	// decoded.
	ErrDecodingDocument = errors.New("failed to decode document")
)
