// Package postgres implements the ledger ports on PostgreSQL through lib/pq.
// Transfers lock card rows with SELECT ... FOR UPDATE, so writers on
// different cards proceed in parallel.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps the connection pool shared by all repositories.
type DB struct {
	Pool *sql.DB
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.SetMaxIdleConns(5)
	pool.SetMaxOpenConns(10)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.PingContext(ctx)
}

// Close closes the pool.
func (db *DB) Close() error {
	return db.Pool.Close()
}
