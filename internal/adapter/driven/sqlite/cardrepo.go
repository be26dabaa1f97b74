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
var _ driven.CardDirectory = (*CardRepo)(nil)

const cardColumns = `id, card_num, cvv_hash, pin_hash, exp_date, network, balance, owner_id, created_at`

// CardRepo is the SQLite implementation of the CardDirectory port.
type CardRepo struct {
	db *DB
}

// NewCardRepo creates a new CardRepo backed by the given DB.
func NewCardRepo(db *DB) *CardRepo {
	return &CardRepo{db: db}
}

// Add inserts a card and returns it with ID and CreatedAt set.
func (r *CardRepo) Add(ctx context.Context, card model.Card) (model.Card, error) {
	const query = `
		INSERT INTO cards (card_num, cvv_hash, pin_hash, exp_date, network, balance, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`

	var createdAt string
	err := r.db.Writer.QueryRowContext(ctx, query,
		card.Number,
		card.CVVHash,
		card.PINHash,
		card.Expiry.String(),
		string(card.Network),
		card.Balance,
		card.OwnerID,
	).Scan(&card.ID, &createdAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return model.Card{}, model.ErrDuplicateCardNumber
		case isForeignKeyViolation(err):
			return model.Card{}, model.ErrPrincipalNotFound
		}
		return model.Card{}, classify("add card", err)
	}

	card.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Card{}, fmt.Errorf("parse created_at: %w", err)
	}
	return card, nil
}

// Lookup returns the card with the given number.
func (r *CardRepo) Lookup(ctx context.Context, number string) (*model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE card_num = ?`

	card, err := scanCard(r.db.Reader.QueryRowContext(ctx, query, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup card: %w", err)
	}
	return &card, nil
}

// ListByOwner returns the owner's cards ordered by ID.
func (r *CardRepo) ListByOwner(ctx context.Context, ownerID int64) ([]model.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE owner_id = ? ORDER BY id`
	return queryCards(ctx, r.db.Reader, query, ownerID)
}

func queryCards(ctx context.Context, q queryer, query string, args ...any) ([]model.Card, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("query cards", err)
	}
	defer rows.Close()

	var cards []model.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate cards", err)
	}

	return cards, nil
}

func scanCard(row rowScanner) (model.Card, error) {
	var card model.Card
	var expiry, network, createdAt string

	if err := row.Scan(
		&card.ID,
		&card.Number,
		&card.CVVHash,
		&card.PINHash,
		&expiry,
		&network,
		&card.Balance,
		&card.OwnerID,
		&createdAt,
	); err != nil {
		return model.Card{}, err
	}

	var err error
	card.Expiry, err = model.ParseExpiry(expiry)
	if err != nil {
		return model.Card{}, fmt.Errorf("parse exp_date of card %d: %w", card.ID, err)
	}
	card.Network = model.Network(network)

	card.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return model.Card{}, fmt.Errorf("parse created_at: %w", err)
	}
	return card, nil
}
