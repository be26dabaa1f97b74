package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Ledger = (*LedgerRepo)(nil)

// LedgerRepo is the SQLite implementation of the Ledger port. A transfer
// holds the single writer connection and the database write lock for its
// whole duration, so the cards it reads cannot change under it.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// RunInTx runs fn inside an IMMEDIATE write transaction on the writer.
func (r *LedgerRepo) RunInTx(ctx context.Context, fn func(tx driven.LedgerTx) error) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin ledger tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit ledger tx", err)
	}
	return nil
}

type ledgerTx struct {
	tx *sql.Tx
}

// LockCards reads the existing cards among numbers in ascending ID order.
func (l *ledgerTx) LockCards(ctx context.Context, numbers ...string) (map[string]model.Card, error) {
	if len(numbers) == 0 {
		return map[string]model.Card{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(numbers)), ", ")
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_num IN (` + placeholders + `) ORDER BY id`

	args := make([]any, len(numbers))
	for i, n := range numbers {
		args[i] = n
	}

	cards, err := queryCards(ctx, l.tx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lock cards: %w", err)
	}

	byNumber := make(map[string]model.Card, len(cards))
	for _, c := range cards {
		byNumber[c.Number] = c
	}
	return byNumber, nil
}

// FindByIdempotencyKey returns the transaction committed under the key, if any.
func (l *ledgerTx) FindByIdempotencyKey(ctx context.Context, principalID int64, key string) (*model.Transaction, error) {
	query := transactionSelect + ` WHERE t.principal_id = ? AND t.idempotency_key = ?`

	txn, err := scanTransaction(l.tx.QueryRowContext(ctx, query, principalID, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("find by idempotency key", err)
	}
	return &txn, nil
}

// AdjustBalance applies delta only if the balance stays non-negative.
func (l *ledgerTx) AdjustBalance(ctx context.Context, cardID int64, delta int64) error {
	const query = `UPDATE cards SET balance = balance + ? WHERE id = ? AND balance + ? >= 0`

	res, err := l.tx.ExecContext(ctx, query, delta, cardID, delta)
	if err != nil {
		return classify(fmt.Sprintf("adjust balance of card %d", cardID), err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return model.ErrInsufficientFunds
	}
	return nil
}

// AppendTransaction inserts txn and returns it with ID and CreatedAt set.
func (l *ledgerTx) AppendTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	const query = `
		INSERT INTO transactions (card_id, receiver_card_num, transfer_sum, status, principal_id, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	var createdAt string
	err := l.tx.QueryRowContext(ctx, query,
		txn.CardID,
		txn.ReceiverCardNumber,
		txn.Amount,
		string(txn.Status),
		txn.PrincipalID,
		txn.IdempotencyKey,
	).Scan(&txn.ID, &createdAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Transaction{}, fmt.Errorf("append transaction: %w", model.ErrConcurrencyConflict)
		}
		return model.Transaction{}, classify("append transaction", err)
	}

	txn.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse created_at: %w", err)
	}

	if err := l.tx.QueryRowContext(ctx, `SELECT card_num FROM cards WHERE id = ?`, txn.CardID).
		Scan(&txn.SenderCardNumber); err != nil {
		return model.Transaction{}, classify("resolve sender card", err)
	}
	return txn, nil
}
