package driven

import (
	"context"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// TransactionLog defines the read side of the append-only transaction log.
// Appends only happen inside a transfer through LedgerTx.AppendTransaction.
// Records are never updated or deleted.
type TransactionLog interface {
	// History returns every transaction the card sent or received, ordered by
	// creation time then ID, each tagged with its direction.
	History(ctx context.Context, cardNumber string) ([]model.HistoryEntry, error)
}
