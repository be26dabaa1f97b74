package driven

import (
	"context"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// PrincipalStore defines the driven port for principal persistence.
// Create returns model.ErrDuplicateEmail for an email already registered.
// GetByID and Delete return model.ErrPrincipalNotFound for an unknown ID.
// Delete cascades to the principal's cards and their transactions and waits
// for in-flight transfers on those cards to finish first.
type PrincipalStore interface {
	Create(ctx context.Context, p model.Principal) (model.Principal, error)
	GetByID(ctx context.Context, id int64) (*model.Principal, error)
	Delete(ctx context.Context, id int64) error
}
