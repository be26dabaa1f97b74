package driven

import (
	"context"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// Ledger is the unit of work for transfers.
type Ledger interface {
	// RunInTx runs fn inside one store transaction. The transaction commits
	// when fn returns nil and rolls back on every other path, including a
	// panic in fn. A commit failure is returned as-is.
	RunInTx(ctx context.Context, fn func(tx LedgerTx) error) error
}

// LedgerTx is the transaction handle passed to Ledger.RunInTx. It must not
// be retained after fn returns.
type LedgerTx interface {
	// LockCards locks the existing cards among numbers in ascending card ID
	// order and returns them keyed by number, as read inside the transaction.
	// Numbers with no card are absent from the map. Waiting for a lock honors
	// ctx; lock contention surfaces as model.ErrConcurrencyConflict.
	LockCards(ctx context.Context, numbers ...string) (map[string]model.Card, error)

	// FindByIdempotencyKey returns the transaction previously committed by
	// principalID under key, or nil when there is none.
	FindByIdempotencyKey(ctx context.Context, principalID int64, key string) (*model.Transaction, error)

	// AdjustBalance adds delta to a locked card's balance. A result below
	// zero fails with model.ErrInsufficientFunds and changes nothing.
	AdjustBalance(ctx context.Context, cardID int64, delta int64) error

	// AppendTransaction records txn and returns it with ID and CreatedAt set.
	// A duplicate (principal, idempotency key) fails with
	// model.ErrConcurrencyConflict.
	AppendTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error)
}
