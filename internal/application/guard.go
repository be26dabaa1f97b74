package application

import "github.com/ericfisherdev/cardledger/internal/domain/model"

// AuthorizationGuard decides whether a principal may debit a card. It never
// tells a caller whether a card it does not own exists: a missing card, a
// foreign card and wrong card secrets all yield model.ErrNotOwner.
type AuthorizationGuard struct {
	secrets       *SecretHasher
	verifySecrets bool
}

// NewAuthorizationGuard creates a guard. When verifySecrets is false,
// VerifySecrets accepts any CVV and PIN.
func NewAuthorizationGuard(secrets *SecretHasher, verifySecrets bool) *AuthorizationGuard {
	return &AuthorizationGuard{secrets: secrets, verifySecrets: verifySecrets}
}

// Authorize returns nil iff card is owned by principalID.
func (g *AuthorizationGuard) Authorize(principalID int64, card *model.Card) error {
	if card == nil || card.OwnerID != principalID {
		return model.ErrNotOwner
	}
	return nil
}

// VerifySecrets checks the presented CVV and PIN against the card's digests.
// Both are always compared so a mismatch takes the same time either way.
func (g *AuthorizationGuard) VerifySecrets(card *model.Card, cvv, pin string) error {
	if !g.verifySecrets {
		return nil
	}
	if card == nil {
		return model.ErrNotOwner
	}

	cvvOK := g.secrets.Verify(secretCVV, card.Number, cvv, card.CVVHash)
	pinOK := g.secrets.Verify(secretPIN, card.Number, pin, card.PINHash)
	if !cvvOK || !pinOK {
		return model.ErrNotOwner
	}
	return nil
}
