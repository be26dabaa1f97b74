package postgres

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

var _ driven.TransactionLog = (*TransactionRepo)(nil)

const transactionSelect = `
	SELECT t.id, t.card_id, s.card_num, t.receiver_card_num, t.transfer_sum,
	       t.status, t.principal_id, t.idempotency_key, t.created_at
	FROM transactions t
	JOIN cards s ON s.id = t.card_id`

// TransactionRepo is the PostgreSQL implementation of the TransactionLog port.
type TransactionRepo struct {
	db *DB
}

// NewTransactionRepo creates a new TransactionRepo backed by the given DB.
func NewTransactionRepo(db *DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// History returns the transactions the card sent or received, oldest first.
func (r *TransactionRepo) History(ctx context.Context, cardNumber string) ([]model.HistoryEntry, error) {
	query := transactionSelect + `
	WHERE s.card_num = $1 OR t.receiver_card_num = $1
	ORDER BY t.created_at, t.id`

	rows, err := r.db.Pool.QueryContext(ctx, query, cardNumber)
	if err != nil {
		return nil, classify("query history", err)
	}
	defer rows.Close()

	var entries []model.HistoryEntry
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		entries = append(entries, model.NewHistoryEntry(txn, cardNumber))
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate history", err)
	}
	return entries, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var status string

	if err := row.Scan(
		&txn.ID,
		&txn.CardID,
		&txn.SenderCardNumber,
		&txn.ReceiverCardNumber,
		&txn.Amount,
		&status,
		&txn.PrincipalID,
		&txn.IdempotencyKey,
		&txn.CreatedAt,
	); err != nil {
		return model.Transaction{}, err
	}
	txn.Status = model.TransactionStatus(status)
	txn.CreatedAt = txn.CreatedAt.UTC()
	return txn, nil
}
