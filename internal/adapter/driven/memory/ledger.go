package memory

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// memTx stages balance changes and appended transactions until commit. Card
// locks taken through LockCards are held until RunInTx returns.
type memTx struct {
	store    *Store
	held     []chan struct{}
	locked   map[int64]bool
	deltas   map[int64]int64
	appended []model.Transaction
}

// RunInTx runs fn and applies its staged writes atomically when it returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(tx driven.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{
		store:  s,
		locked: make(map[int64]bool),
		deltas: make(map[int64]int64),
	}
	defer func() { s.release(tx.held) }()

	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, txn := range tx.appended {
		if _, ok := s.byKey[idempotencyKey{principalID: txn.PrincipalID, key: txn.IdempotencyKey}]; ok {
			return fmt.Errorf("append transaction: duplicate idempotency key: %w", model.ErrConcurrencyConflict)
		}
	}
	for cardID, delta := range tx.deltas {
		c, ok := s.cards[cardID]
		if !ok || c.Balance+delta < 0 {
			return fmt.Errorf("commit card %d: %w", cardID, model.ErrConcurrencyConflict)
		}
	}

	for cardID, delta := range tx.deltas {
		c := s.cards[cardID]
		c.Balance += delta
		s.cards[cardID] = c
	}
	for _, txn := range tx.appended {
		s.byKey[idempotencyKey{principalID: txn.PrincipalID, key: txn.IdempotencyKey}] = txn.ID
		s.txns = append(s.txns, txn)
	}
	return nil
}

// LockCards locks the existing cards among numbers in ascending ID order.
func (tx *memTx) LockCards(ctx context.Context, numbers ...string) (map[string]model.Card, error) {
	s := tx.store

	s.mu.Lock()
	var ids []int64
	for _, n := range numbers {
		if id, ok := s.byNumber[n]; ok && !tx.locked[id] {
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	held, err := s.acquire(ctx, ids)
	tx.held = append(tx.held, held...)
	if err != nil {
		return nil, fmt.Errorf("lock cards: %w", err)
	}
	for _, id := range ids {
		tx.locked[id] = true
	}

	// Re-read after locking: a card deleted while we waited is gone.
	s.mu.Lock()
	defer s.mu.Unlock()

	cards := make(map[string]model.Card, len(numbers))
	for _, n := range numbers {
		id, ok := s.byNumber[n]
		if !ok || !tx.locked[id] {
			continue
		}
		c := s.cards[id]
		c.Balance += tx.deltas[id]
		cards[n] = c
	}
	return cards, nil
}

// FindByIdempotencyKey returns the committed transaction for the key, if any.
func (tx *memTx) FindByIdempotencyKey(_ context.Context, principalID int64, key string) (*model.Transaction, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[idempotencyKey{principalID: principalID, key: key}]
	if !ok {
		return nil, nil
	}
	for _, txn := range s.txns {
		if txn.ID == id {
			found := txn
			return &found, nil
		}
	}
	return nil, nil
}

// AdjustBalance stages delta for a card locked by this transaction.
func (tx *memTx) AdjustBalance(_ context.Context, cardID int64, delta int64) error {
	if !tx.locked[cardID] {
		return fmt.Errorf("adjust balance of card %d: card not locked", cardID)
	}

	s := tx.store
	s.mu.Lock()
	c, ok := s.cards[cardID]
	s.mu.Unlock()
	if !ok {
		return model.ErrCardNotFound
	}

	if c.Balance+tx.deltas[cardID]+delta < 0 {
		return model.ErrInsufficientFunds
	}
	tx.deltas[cardID] += delta
	return nil
}

// AppendTransaction stages txn. The ID is assigned immediately and is not
// reused if the transaction rolls back.
func (tx *memTx) AppendTransaction(_ context.Context, txn model.Transaction) (model.Transaction, error) {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.cards[txn.CardID]
	if !ok {
		return model.Transaction{}, model.ErrCardNotFound
	}

	s.nextTxnID++
	txn.ID = s.nextTxnID
	txn.SenderCardNumber = sender.Number
	txn.CreatedAt = s.now()
	tx.appended = append(tx.appended, txn)
	return txn, nil
}
