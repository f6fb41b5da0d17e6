package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification tells whether a failed database call may succeed when
// the client retries the whole sync pass.
type ErrorClassification int

const (
	NonRetryable ErrorClassification = iota
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] for pgx errors.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify reports server errors by SQLSTATE class and treats every failure
// to reach the server (dial errors, dropped connections, deadlines) as
// [Retryable].
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	if err == nil {
		return NonRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ClassifyPgError(pgErr)
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error
	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded):
		return Retryable
	}

	return NonRetryable
}

// ClassifyPgError marks these SQLSTATE classes as transient:
//
//	08 connection exception
//	40 transaction rollback (serialization failure, deadlock)
//	53 insufficient resources (too many connections, out of memory)
//	57 operator intervention (admin shutdown, cannot connect now)
//
// Everything else, constraint violations and data exceptions included, would
// fail the same way again.
func ClassifyPgError(pgErr *pgconn.PgError) ErrorClassification {
	code := pgErr.Code
	if pgerrcode.IsConnectionException(code) ||
		pgerrcode.IsTransactionRollback(code) ||
		pgerrcode.IsInsufficientResources(code) ||
		pgerrcode.IsOperatorIntervention(code) {
		return Retryable
	}

	return NonRetryable
}
