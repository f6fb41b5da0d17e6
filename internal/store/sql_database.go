package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
)

// DB is a database handle shared by the stores of one process together with
// the classifier that decides which driver errors are transient.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// wrapError attaches sentinel to err and, when the classifier considers err
// transient, [ErrStoreUnavailable] as well.
func (db *DB) wrapError(sentinel, err error) error {
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w: %w", ErrStoreUnavailable, sentinel, err)
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
