package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// SQLSTATE codes the adapter maps onto ledger errors.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// sqlState extracts the SQLSTATE from a lib/pq error, or "" for anything else.
func sqlState(err error) string {
	var pe *pq.Error
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return sqlState(err) == codeForeignKeyViolation
}

// isContention reports lock timeouts, serialization failures and deadlocks.
func isContention(err error) bool {
	switch sqlState(err) {
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

// classify maps lock contention to model.ErrConcurrencyConflict.
func classify(op string, err error) error {
	if isContention(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrConcurrencyConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
