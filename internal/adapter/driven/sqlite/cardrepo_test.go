package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

func TestCardRepo_AddAndLookup(t *testing.T) {
	db := setupTestDB(t)
	p, added := seedCard(t, db, "alice@example.com", "4111111111111111", 32000)
	repo := NewCardRepo(db)

	got, err := repo.Lookup(context.Background(), "4111111111111111")
	require.NoError(t, err)

	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, p.ID, got.OwnerID)
	assert.Equal(t, model.NetworkVisa, got.Network)
	assert.Equal(t, model.Expiry{Month: 12, Year: 2029}, got.Expiry)
	assert.Equal(t, int64(32000), got.Balance)
	assert.Equal(t, "cvv", got.CVVHash)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCardRepo_LookupMissing(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewCardRepo(db).Lookup(context.Background(), "4111111111111111")
	require.ErrorIs(t, err, model.ErrCardNotFound)
}

func TestCardRepo_AddConstraints(t *testing.T) {
	db := setupTestDB(t)
	p, card := seedCard(t, db, "alice@example.com", "4111111111111111", 32000)
	repo := NewCardRepo(db)
	ctx := context.Background()

	dup := card
	dup.ID = 0
	_, err := repo.Add(ctx, dup)
	require.ErrorIs(t, err, model.ErrDuplicateCardNumber)

	orphan := card
	orphan.Number = "5555555555554444"
	orphan.OwnerID = p.ID + 100
	_, err = repo.Add(ctx, orphan)
	require.ErrorIs(t, err, model.ErrPrincipalNotFound)

	negative := card
	negative.Number = "5555555555554444"
	negative.Balance = -1
	_, err = repo.Add(ctx, negative)
	require.Error(t, err, "balance CHECK constraint must reject negative balances")
}

func TestCardRepo_ListByOwner(t *testing.T) {
	db := setupTestDB(t)
	p, _ := seedCard(t, db, "alice@example.com", "4111111111111111", 32000)
	seedCard(t, db, "bob@example.com", "5555555555554444", 32000)
	repo := NewCardRepo(db)
	ctx := context.Background()

	_, err := repo.Add(ctx, model.Card{
		Number: "4012888888881881", CVVHash: "c", PINHash: "p",
		Expiry: model.Expiry{Month: 1, Year: 2030}, Network: model.NetworkVisa,
		Balance: 5, OwnerID: p.ID,
	})
	require.NoError(t, err)

	cards, err := repo.ListByOwner(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "4111111111111111", cards[0].Number)
	assert.Equal(t, "4012888888881881", cards[1].Number)

	none, err := repo.ListByOwner(ctx, p.ID+100)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPrincipalRepo_CreateGetDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPrincipalRepo(db)
	ctx := context.Background()

	p, err := repo.Create(ctx, model.Principal{Email: "alice@example.com", FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	_, err = repo.Create(ctx, model.Principal{Email: "Alice@Example.com", FirstName: "Al", LastName: "Li"})
	require.ErrorIs(t, err, model.ErrDuplicateEmail)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.FirstName)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	require.ErrorIs(t, err, model.ErrPrincipalNotFound)
	require.ErrorIs(t, repo.Delete(ctx, p.ID), model.ErrPrincipalNotFound)
}
