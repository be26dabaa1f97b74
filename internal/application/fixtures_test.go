package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/adapter/driven/memory"
	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

const (
	testCVV = "123"
	testPIN = "4321"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ledgerFixture wires the services around one in-memory store.
type ledgerFixture struct {
	store      *memory.Store
	cards      *CardService
	engine     *LedgerEngine
	history    *HistoryService
	principals *PrincipalService
}

func newLedgerFixture(t *testing.T, opts EngineOptions) *ledgerFixture {
	t.Helper()

	store := memory.NewStore()
	hasher := NewSecretHasher(testKey)
	logger := discardLogger()

	cards := NewCardService(store, hasher, DefaultInitialBalance, logger)
	cards.now = func() time.Time { return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC) }

	return &ledgerFixture{
		store:      store,
		cards:      cards,
		engine:     NewLedgerEngine(store, NewAuthorizationGuard(hasher, true), opts, logger),
		history:    NewHistoryService(store, store),
		principals: NewPrincipalService(store, logger),
	}
}

func (f *ledgerFixture) principal(t *testing.T, name string) model.Principal {
	t.Helper()
	p, err := f.principals.Create(context.Background(), model.Principal{
		Email:     name + "@example.com",
		FirstName: name,
		LastName:  "Tester",
	})
	require.NoError(t, err)
	return p
}

func (f *ledgerFixture) card(t *testing.T, owner model.Principal, number string) model.Card {
	t.Helper()
	c, err := f.cards.AddCard(context.Background(), model.NewCard{
		OwnerID: owner.ID,
		Number:  number,
		CVV:     testCVV,
		PIN:     testPIN,
		Expiry:  "12/29",
	})
	require.NoError(t, err)
	return c
}

func (f *ledgerFixture) balance(t *testing.T, number string) int64 {
	t.Helper()
	c, err := f.store.Lookup(context.Background(), number)
	require.NoError(t, err)
	return c.Balance
}

var keySeq int

func transferReq(p model.Principal, from, to model.Card, amount int64) model.TransferRequest {
	keySeq++
	return model.TransferRequest{
		PrincipalID:        p.ID,
		SenderCardNumber:   from.Number,
		ReceiverCardNumber: to.Number,
		Amount:             amount,
		CVV:                testCVV,
		PIN:                testPIN,
		IdempotencyKey:     fmt.Sprintf("key-%d", keySeq),
	}
}
