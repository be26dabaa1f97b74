package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

var _ driven.Ledger = (*LedgerRepo)(nil)

// LedgerRepo is the PostgreSQL implementation of the Ledger port.
type LedgerRepo struct {
	db *DB
}

// NewLedgerRepo creates a new LedgerRepo backed by the given DB.
func NewLedgerRepo(db *DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

// RunInTx runs fn in a READ COMMITTED transaction. When ctx carries a
// deadline the remaining time becomes the transaction's lock_timeout, so a
// blocked row lock fails with 55P03 instead of waiting past the deadline.
func (r *LedgerRepo) RunInTx(ctx context.Context, fn func(tx driven.LedgerTx) error) error {
	tx, err := r.db.Pool.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return classify("begin ledger tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if deadline, ok := ctx.Deadline(); ok {
		ms := time.Until(deadline).Milliseconds()
		if ms < 1 {
			ms = 1
		}
		if _, err := tx.ExecContext(ctx, `SELECT set_config('lock_timeout', $1, true)`, fmt.Sprintf("%dms", ms)); err != nil {
			return classify("set lock timeout", err)
		}
	}

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

// LockCards takes row locks on the existing cards among numbers in ascending
// ID order.
func (l *ledgerTx) LockCards(ctx context.Context, numbers ...string) (map[string]model.Card, error) {
	if len(numbers) == 0 {
		return map[string]model.Card{}, nil
	}

	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_num = ANY($1) ORDER BY id FOR UPDATE`

	cards, err := queryCards(ctx, l.tx, query, pq.Array(numbers))
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
	query := transactionSelect + ` WHERE t.principal_id = $1 AND t.idempotency_key = $2`

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
	const query = `UPDATE cards SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0`

	res, err := l.tx.ExecContext(ctx, query, delta, cardID)
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

// AppendTransaction inserts txn and returns it with ID, CreatedAt and the
// sender card number set.
func (l *ledgerTx) AppendTransaction(ctx context.Context, txn model.Transaction) (model.Transaction, error) {
	const query = `
		WITH inserted AS (
			INSERT INTO transactions (card_id, receiver_card_num, transfer_sum, status, principal_id, idempotency_key)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, card_id, created_at
		)
		SELECT i.id, i.created_at, c.card_num
		FROM inserted i
		JOIN cards c ON c.id = i.card_id`

	err := l.tx.QueryRowContext(ctx, query,
		txn.CardID,
		txn.ReceiverCardNumber,
		txn.Amount,
		string(txn.Status),
		txn.PrincipalID,
		txn.IdempotencyKey,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.SenderCardNumber)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Transaction{}, fmt.Errorf("append transaction: %w", model.ErrConcurrencyConflict)
		}
		return model.Transaction{}, classify("append transaction", err)
	}
	txn.CreatedAt = txn.CreatedAt.UTC()
	return txn, nil
}
