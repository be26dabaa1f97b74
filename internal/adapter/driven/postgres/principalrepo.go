package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

var _ driven.PrincipalStore = (*PrincipalRepo)(nil)

// PrincipalRepo is the PostgreSQL implementation of the PrincipalStore port.
type PrincipalRepo struct {
	db *DB
}

// NewPrincipalRepo creates a new PrincipalRepo backed by the given DB.
func NewPrincipalRepo(db *DB) *PrincipalRepo {
	return &PrincipalRepo{db: db}
}

// Create inserts a principal and returns it with ID and CreatedAt set.
func (r *PrincipalRepo) Create(ctx context.Context, p model.Principal) (model.Principal, error) {
	const query = `
		INSERT INTO principals (email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.Pool.QueryRowContext(ctx, query, p.Email, p.FirstName, p.LastName, p.PasswordHash).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Principal{}, model.ErrDuplicateEmail
		}
		return model.Principal{}, classify("create principal", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return p, nil
}

// GetByID returns the principal with the given ID.
func (r *PrincipalRepo) GetByID(ctx context.Context, id int64) (*model.Principal, error) {
	const query = `SELECT id, email, first_name, last_name, password_hash, created_at FROM principals WHERE id = $1`

	var p model.Principal
	err := r.db.Pool.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get principal %d: %w", id, err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// Delete removes the principal and, by cascade, its cards and their
// transactions. The owner's card rows are locked first in ID order, the
// same order transfers use, so an in-flight transfer finishes before its
// cards disappear.
func (r *PrincipalRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Pool.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin delete principal", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `SELECT id FROM cards WHERE owner_id = $1 ORDER BY id FOR UPDATE`, id)
	if err != nil {
		return classify("lock principal cards", err)
	}
	for rows.Next() {
		var cardID int64
		if err := rows.Scan(&cardID); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan card id: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return classify("lock principal cards", err)
	}
	_ = rows.Close()

	res, err := tx.ExecContext(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return classify(fmt.Sprintf("delete principal %d", id), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrPrincipalNotFound
	}

	if err := tx.Commit(); err != nil {
		return classify("commit delete principal", err)
	}
	return nil
}
