package driven

import (
	"context"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// CardDirectory defines the driven port for card persistence outside of a
// transfer. Reads inside a transfer go through LedgerTx.LockCards instead.
//
// Add returns model.ErrDuplicateCardNumber when the number is taken and
// model.ErrPrincipalNotFound when the owner does not exist.
// Lookup returns model.ErrCardNotFound when no card has the number.
type CardDirectory interface {
	Add(ctx context.Context, card model.Card) (model.Card, error)
	Lookup(ctx context.Context, number string) (*model.Card, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Card, error)
}
