package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

func TestGetHistory_MergesSentAndReceived(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	ctx := context.Background()
	p1, p2 := f.principal(t, "alice"), f.principal(t, "bob")
	c1, c2 := f.card(t, p1, visaNumber), f.card(t, p2, masterNumber)
	c3 := f.card(t, p1, thirdNumber)

	_, err := f.engine.Transfer(ctx, transferReq(p1, c1, c2, 100))
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, transferReq(p2, c2, c1, 40))
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, transferReq(p1, c1, c3, 5))
	require.NoError(t, err)

	history, err := f.history.GetHistory(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)

	first := history[0]
	assert.Equal(t, visaNumber, first.Card.Number)
	require.Len(t, first.Entries, 3)
	assert.Equal(t, model.DirectionSent, first.Entries[0].Direction)
	assert.Equal(t, masterNumber, first.Entries[0].CounterpartyNumber)
	assert.Equal(t, model.DirectionReceived, first.Entries[1].Direction)
	assert.Equal(t, int64(40), first.Entries[1].Amount)
	assert.Equal(t, model.DirectionSent, first.Entries[2].Direction)
	assert.Equal(t, thirdNumber, first.Entries[2].CounterpartyNumber)

	second := history[1]
	assert.Equal(t, thirdNumber, second.Card.Number)
	require.Len(t, second.Entries, 1)
	assert.Equal(t, model.DirectionReceived, second.Entries[0].Direction)
}

func TestGetHistory_NoCards(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	p := f.principal(t, "alice")

	history, err := f.history.GetHistory(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPrincipalService_CreateValidation(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	ctx := context.Background()

	tests := []struct {
		name string
		p    model.Principal
	}{
		{name: "bad email", p: model.Principal{Email: "nope", FirstName: "Al", LastName: "Ice"}},
		{name: "short first name", p: model.Principal{Email: "a@example.com", FirstName: "A", LastName: "Ice"}},
		{name: "long last name", p: model.Principal{Email: "a@example.com", FirstName: "Al", LastName: "Abcdefghijklmnopqrstuvwxyzabcde"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.principals.Create(ctx, tt.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))
		})
	}

	f.principal(t, "alice")
	_, err := f.principals.Create(ctx, model.Principal{Email: "ALICE@example.com", FirstName: "Al", LastName: "Ice"})
	require.ErrorIs(t, err, model.ErrDuplicateEmail)
}

func TestPrincipalService_DeleteCascades(t *testing.T) {
	f := newLedgerFixture(t, EngineOptions{})
	ctx := context.Background()
	p1, p2 := f.principal(t, "alice"), f.principal(t, "bob")
	c1, c2 := f.card(t, p1, visaNumber), f.card(t, p2, masterNumber)

	_, err := f.engine.Transfer(ctx, transferReq(p1, c1, c2, 100))
	require.NoError(t, err)
	_, err = f.engine.Transfer(ctx, transferReq(p2, c2, c1, 30))
	require.NoError(t, err)

	require.NoError(t, f.principals.Delete(ctx, p1.ID))

	_, err = f.principals.Get(ctx, p1.ID)
	require.ErrorIs(t, err, model.ErrPrincipalNotFound)
	_, err = f.store.Lookup(ctx, visaNumber)
	require.ErrorIs(t, err, model.ErrCardNotFound)

	// The transfer c1 sent went with c1; the one c2 sent stays in c2's history.
	entries, err := f.store.History(ctx, masterNumber)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.DirectionSent, entries[0].Direction)
	assert.Equal(t, visaNumber, entries[0].CounterpartyNumber)

	require.ErrorIs(t, f.principals.Delete(ctx, p1.ID), model.ErrPrincipalNotFound)
}
