package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() keeps tests isolated.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it cannot be read as DSN query parameters.
	// WAL mode does not apply to in-memory databases.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(t.Name()), dsnPragmas)

	db, err := open(context.Background(), dsn, dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedCard inserts a principal and a card with the given balance.
func seedCard(t *testing.T, db *DB, email, number string, balance int64) (model.Principal, model.Card) {
	t.Helper()
	ctx := context.Background()

	p, err := NewPrincipalRepo(db).Create(ctx, model.Principal{Email: email, FirstName: "Test", LastName: "Owner"})
	require.NoError(t, err)

	c, err := NewCardRepo(db).Add(ctx, model.Card{
		Number:  number,
		CVVHash: "cvv",
		PINHash: "pin",
		Expiry:  model.Expiry{Month: 12, Year: 2029},
		Network: model.ClassifyNetwork(number),
		Balance: balance,
		OwnerID: p.ID,
	})
	require.NoError(t, err)

	return p, c
}
