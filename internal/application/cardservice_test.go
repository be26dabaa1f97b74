package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

func TestAddCard_ClassifiesAndHashes(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	p := f.principal(t, "alice")

	card, err := f.cards.AddCard(context.Background(), model.NewCard{
		OwnerID: p.ID,
		Number:  "5555 5555 5555 4444",
		CVV:     "321",
		PIN:     "9876",
		Expiry:  "07/28",
	})
	require.NoError(t, err)

	assert.Equal(t, "5555555555554444", card.Number)
	assert.Equal(t, model.NetworkMastercard, card.Network)
	assert.Equal(t, DefaultInitialBalance, card.Balance)
	assert.Equal(t, model.Expiry{Month: 7, Year: 2028}, card.Expiry)
	assert.NotEqual(t, "321", card.CVVHash)
	assert.NotEqual(t, "9876", card.PINHash)
	assert.True(t, f.cards.secrets.Verify(secretCVV, card.Number, "321", card.CVVHash))
	assert.False(t, f.cards.secrets.Verify(secretPIN, card.Number, "321", card.CVVHash))
}

func TestAddCard_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input model.NewCard
		field string
	}{
		{name: "short number", input: model.NewCard{Number: "411111111111111", CVV: "123", PIN: "1234", Expiry: "12/29"}, field: "card_number"},
		{name: "letters in number", input: model.NewCard{Number: "41111111111111aa", CVV: "123", PIN: "1234", Expiry: "12/29"}, field: "card_number"},
		{name: "short cvv", input: model.NewCard{Number: visaNumber, CVV: "12", PIN: "1234", Expiry: "12/29"}, field: "cvv"},
		{name: "non digit pin", input: model.NewCard{Number: visaNumber, CVV: "123", PIN: "12a4", Expiry: "12/29"}, field: "pin"},
		{name: "long pin", input: model.NewCard{Number: visaNumber, CVV: "123", PIN: "12345", Expiry: "12/29"}, field: "pin"},
		{name: "bad expiry", input: model.NewCard{Number: visaNumber, CVV: "123", PIN: "1234", Expiry: "13/29"}, field: "expiry"},
		{name: "expired card", input: model.NewCard{Number: visaNumber, CVV: "123", PIN: "1234", Expiry: "12/25"}, field: "expiry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t, EngineOptions{})
			p := f.principal(t, "alice")
			tt.input.OwnerID = p.ID

			_, err := f.cards.AddCard(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestAddCard_DuplicateNumber(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	p1, p2 := f.principal(t, "alice"), f.principal(t, "bob")
	f.card(t, p1, visaNumber)

	_, err := f.cards.AddCard(context.Background(), model.NewCard{
		OwnerID: p2.ID, Number: visaNumber, CVV: "123", PIN: "1234", Expiry: "12/29",
	})
	require.ErrorIs(t, err, model.ErrDuplicateCardNumber)
}

func TestAddCard_UnknownOwner(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})

	_, err := f.cards.AddCard(context.Background(), model.NewCard{
		OwnerID: 42, Number: visaNumber, CVV: "123", PIN: "1234", Expiry: "12/29",
	})
	require.ErrorIs(t, err, model.ErrPrincipalNotFound)
}

func TestListCards_OnlyOwnCards(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	p1, p2 := f.principal(t, "alice"), f.principal(t, "bob")
	f.card(t, p1, visaNumber)
	f.card(t, p2, masterNumber)
	f.card(t, p1, thirdNumber)

	cards, err := f.cards.ListCards(context.Background(), p1.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, visaNumber, cards[0].Number)
	assert.Equal(t, thirdNumber, cards[1].Number)
}

func TestAuthorizationGuard(t *testing.T) {
	hasher := NewSecretHasher(testKey)
	guard := NewAuthorizationGuard(hasher, true)
	card := &model.Card{
		Number:  visaNumber,
		OwnerID: 7,
		CVVHash: hasher.Hash(secretCVV, visaNumber, "123"),
		PINHash: hasher.Hash(secretPIN, visaNumber, "4321"),
	}

	assert.NoError(t, guard.Authorize(7, card))
	assert.ErrorIs(t, guard.Authorize(8, card), model.ErrNotOwner)
	assert.ErrorIs(t, guard.Authorize(7, nil), model.ErrNotOwner)

	assert.NoError(t, guard.VerifySecrets(card, "123", "4321"))
	assert.ErrorIs(t, guard.VerifySecrets(card, "124", "4321"), model.ErrNotOwner)
	assert.ErrorIs(t, guard.VerifySecrets(card, "123", "4320"), model.ErrNotOwner)
	assert.ErrorIs(t, guard.VerifySecrets(nil, "123", "4321"), model.ErrNotOwner)

	other := NewSecretHasher([]byte("another-key"))
	assert.NotEqual(t, hasher.Hash(secretCVV, visaNumber, "123"), other.Hash(secretCVV, visaNumber, "123"))
	assert.NotEqual(t, hasher.Hash(secretCVV, visaNumber, "123"), hasher.Hash(secretCVV, masterNumber, "123"))
}
