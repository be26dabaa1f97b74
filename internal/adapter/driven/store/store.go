// Package store opens the configured persistence backend and exposes it
// through the driven ports.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/cardledger/internal/adapter/driven/memory"
	"github.com/ericfisherdev/cardledger/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/cardledger/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/cardledger/internal/config"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// Set bundles the ports of one backend.
type Set struct {
	Principals driven.PrincipalStore
	Cards      driven.CardDirectory
	Log        driven.TransactionLog
	Ledger     driven.Ledger
	Pinger     driven.Pinger

	close func() error
}

// Close releases the backend's connections.
func (s *Set) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open opens the backend named by cfg.Store and runs its migrations.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Set, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := sqlite.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("sqlite store opened", "path", cfg.DBPath)

		return &Set{
			Principals: sqlite.NewPrincipalRepo(db),
			Cards:      sqlite.NewCardRepo(db),
			Log:        sqlite.NewTransactionRepo(db),
			Ledger:     sqlite.NewLedgerRepo(db),
			Pinger:     db,
			close:      db.Close,
		}, nil

	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(db.Pool); err != nil {
			_ = db.Close()
			return nil, err
		}
		logger.Info("postgres store opened", "host", cfg.PostgresHost, "database", cfg.PostgresDatabase)

		return &Set{
			Principals: postgres.NewPrincipalRepo(db),
			Cards:      postgres.NewCardRepo(db),
			Log:        postgres.NewTransactionRepo(db),
			Ledger:     postgres.NewLedgerRepo(db),
			Pinger:     db,
			close:      db.Close,
		}, nil

	case config.StoreMemory:
		s := memory.NewStore()
		logger.Warn("memory store in use, state is lost on exit")

		return &Set{
			Principals: s,
			Cards:      s,
			Log:        s,
			Ledger:     s,
			Pinger:     s,
		}, nil
	}

	return nil, fmt.Errorf("unsupported store %q", cfg.Store)
}
