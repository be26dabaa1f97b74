package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PrincipalStore = (*PrincipalRepo)(nil)

// PrincipalRepo is the SQLite implementation of the PrincipalStore port.
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
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`

	var createdAt string
	err := r.db.Writer.QueryRowContext(ctx, query, p.Email, p.FirstName, p.LastName, p.PasswordHash).
		Scan(&p.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Principal{}, model.ErrDuplicateEmail
		}
		return model.Principal{}, classify("create principal", err)
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Principal{}, fmt.Errorf("parse created_at: %w", err)
	}
	return p, nil
}

// GetByID returns the principal with the given ID.
func (r *PrincipalRepo) GetByID(ctx context.Context, id int64) (*model.Principal, error) {
	const query = `SELECT id, email, first_name, last_name, password_hash, created_at FROM principals WHERE id = ?`

	var p model.Principal
	var createdAt string
	err := r.db.Reader.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get principal %d: %w", id, err)
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &p, nil
}

// Delete removes the principal. Foreign keys cascade the delete to cards and
// their transactions. Running on the writer serializes it with transfers.
func (r *PrincipalRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin delete principal", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM principals WHERE id = ?`, id)
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
