package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// DefaultInitialBalance is the balance a newly registered card starts with.
const DefaultInitialBalance int64 = 32000

// CardService registers and lists cards. Network classification happens here,
// once, and the result is stored with the card.
type CardService struct {
	cards          driven.CardDirectory
	secrets        *SecretHasher
	initialBalance int64
	now            func() time.Time
	logger         *slog.Logger
}

// NewCardService creates a CardService.
func NewCardService(cards driven.CardDirectory, secrets *SecretHasher, initialBalance int64, logger *slog.Logger) *CardService {
	return &CardService{
		cards:          cards,
		secrets:        secrets,
		initialBalance: initialBalance,
		now:            time.Now,
		logger:         logger,
	}
}

// AddCard validates the input, classifies the network and registers the card
// under in.OwnerID with the initial balance.
func (s *CardService) AddCard(ctx context.Context, in model.NewCard) (model.Card, error) {
	number := model.NormalizeNumber(in.Number)
	if len(number) != model.CardNumberLength || !model.IsDigits(number) {
		return model.Card{}, model.ValidationError("card_number", fmt.Sprintf("must be %d digits", model.CardNumberLength))
	}
	if len(in.CVV) != 3 || !model.IsDigits(in.CVV) {
		return model.Card{}, model.ValidationError("cvv", "must be 3 digits")
	}
	if len(in.PIN) != 4 || !model.IsDigits(in.PIN) {
		return model.Card{}, model.ValidationError("pin", "must be 4 digits")
	}

	expiry, err := model.ParseExpiry(in.Expiry)
	if err != nil {
		return model.Card{}, err
	}
	if expiry.ExpiredAt(s.now()) {
		return model.Card{}, model.ValidationError("expiry", "card has expired")
	}

	card, err := s.cards.Add(ctx, model.Card{
		Number:  number,
		CVVHash: s.secrets.Hash(secretCVV, number, in.CVV),
		PINHash: s.secrets.Hash(secretPIN, number, in.PIN),
		Expiry:  expiry,
		Network: model.ClassifyNetwork(number),
		Balance: s.initialBalance,
		OwnerID: in.OwnerID,
	})
	if err != nil {
		return model.Card{}, fmt.Errorf("add card: %w", err)
	}

	s.logger.Info("card registered",
		"principal_id", card.OwnerID,
		"card", model.MaskNumber(card.Number),
		"network", card.Network,
	)
	return card, nil
}

// ListCards returns the principal's cards ordered by ID.
func (s *CardService) ListCards(ctx context.Context, principalID int64) ([]model.Card, error) {
	cards, err := s.cards.ListByOwner(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}
