package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/cardledger/internal/config"
	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "memory", cfg: &config.Config{Store: config.StoreMemory}},
		{name: "sqlite file", cfg: &config.Config{Store: config.StoreSQLite, DBPath: filepath.Join(t.TempDir(), "ledger.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			set, err := Open(ctx, tt.cfg, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = set.Close() })

			require.NoError(t, set.Pinger.Ping(ctx))

			p, err := set.Principals.Create(ctx, model.Principal{Email: "alice@example.com", FirstName: "Alice", LastName: "Liddell"})
			require.NoError(t, err)

			cards, err := set.Cards.ListByOwner(ctx, p.ID)
			require.NoError(t, err)
			assert.Empty(t, cards)
		})
	}
}

func TestOpen_SQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreSQLite, DBPath: filepath.Join(t.TempDir(), "ledger.db")}

	set, err := Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	p, err := set.Principals.Create(ctx, model.Principal{Email: "alice@example.com", FirstName: "Alice", LastName: "Liddell"})
	require.NoError(t, err)
	require.NoError(t, set.Close())

	// Migrations are skipped on the second open.
	set, err = Open(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = set.Close() })

	got, err := set.Principals.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
}

func TestOpen_UnknownStore(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: "redis"}, discardLogger())
	require.Error(t, err)
}
