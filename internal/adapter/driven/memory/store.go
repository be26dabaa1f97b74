// Package memory is an in-process implementation of the ledger ports. It is
// used in tests and for single-process demos; state is lost on exit.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.PrincipalStore = (*Store)(nil)
	_ driven.CardDirectory  = (*Store)(nil)
	_ driven.TransactionLog = (*Store)(nil)
	_ driven.Ledger         = (*Store)(nil)
	_ driven.Pinger         = (*Store)(nil)
)

type idempotencyKey struct {
	principalID int64
	key         string
}

// Store holds all ledger state behind one mutex for bookkeeping plus one
// lock per card for transfers. Card locks are always taken in ascending card
// ID order, and mu is never held while waiting for a card lock.
type Store struct {
	mu         sync.Mutex
	principals map[int64]model.Principal
	emails     map[string]int64
	cards      map[int64]model.Card
	byNumber   map[string]int64
	cardLocks  map[int64]chan struct{}
	txns       []model.Transaction
	byKey      map[idempotencyKey]int64

	nextPrincipalID int64
	nextCardID      int64
	nextTxnID       int64

	now func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		principals: make(map[int64]model.Principal),
		emails:     make(map[string]int64),
		cards:      make(map[int64]model.Card),
		byNumber:   make(map[string]int64),
		cardLocks:  make(map[int64]chan struct{}),
		byKey:      make(map[idempotencyKey]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error { return nil }

// Create registers a new principal.
func (s *Store) Create(_ context.Context, p model.Principal) (model.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(p.Email)
	if _, ok := s.emails[email]; ok {
		return model.Principal{}, model.ErrDuplicateEmail
	}

	s.nextPrincipalID++
	p.ID = s.nextPrincipalID
	p.CreatedAt = s.now()
	s.principals[p.ID] = p
	s.emails[email] = p.ID
	return p, nil
}

// GetByID returns the principal with the given ID.
func (s *Store) GetByID(_ context.Context, id int64) (*model.Principal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[id]
	if !ok {
		return nil, model.ErrPrincipalNotFound
	}
	return &p, nil
}

// Delete removes the principal, its cards and the transactions those cards
// sent. It holds every card lock of the principal while deleting.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.principals[id]; !ok {
		s.mu.Unlock()
		return model.ErrPrincipalNotFound
	}
	var owned []int64
	for cardID, c := range s.cards {
		if c.OwnerID == id {
			owned = append(owned, cardID)
		}
	}
	s.mu.Unlock()

	held, err := s.acquire(ctx, owned)
	defer s.release(held)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.principals[id]
	if !ok {
		return model.ErrPrincipalNotFound
	}

	removed := make(map[int64]bool)
	for cardID, c := range s.cards {
		if c.OwnerID != id {
			continue
		}
		removed[cardID] = true
		delete(s.byNumber, c.Number)
		delete(s.cards, cardID)
		delete(s.cardLocks, cardID)
	}

	kept := s.txns[:0]
	for _, txn := range s.txns {
		if removed[txn.CardID] {
			delete(s.byKey, idempotencyKey{principalID: txn.PrincipalID, key: txn.IdempotencyKey})
			continue
		}
		kept = append(kept, txn)
	}
	s.txns = kept

	delete(s.emails, strings.ToLower(p.Email))
	delete(s.principals, id)
	return nil
}

// Add registers a new card.
func (s *Store) Add(_ context.Context, card model.Card) (model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.principals[card.OwnerID]; !ok {
		return model.Card{}, model.ErrPrincipalNotFound
	}
	if _, ok := s.byNumber[card.Number]; ok {
		return model.Card{}, model.ErrDuplicateCardNumber
	}

	s.nextCardID++
	card.ID = s.nextCardID
	card.CreatedAt = s.now()
	s.cards[card.ID] = card
	s.byNumber[card.Number] = card.ID
	s.cardLocks[card.ID] = make(chan struct{}, 1)
	return card, nil
}

// Lookup returns the card with the given number.
func (s *Store) Lookup(_ context.Context, number string) (*model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byNumber[number]
	if !ok {
		return nil, model.ErrCardNotFound
	}
	c := s.cards[id]
	return &c, nil
}

// ListByOwner returns the owner's cards ordered by ID.
func (s *Store) ListByOwner(_ context.Context, ownerID int64) ([]model.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cards []model.Card
	for _, c := range s.cards {
		if c.OwnerID == ownerID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

// History returns the sent and received transactions of a card.
func (s *Store) History(_ context.Context, cardNumber string) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []model.HistoryEntry
	for _, txn := range s.txns {
		if txn.SenderCardNumber == cardNumber || txn.ReceiverCardNumber == cardNumber {
			entries = append(entries, model.NewHistoryEntry(txn, cardNumber))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// acquire takes the card locks for ids in ascending order. On error the
// returned slice holds the locks acquired so far and must still be released.
func (s *Store) acquire(ctx context.Context, ids []int64) ([]chan struct{}, error) {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	held := make([]chan struct{}, 0, len(sorted))
	for _, id := range sorted {
		s.mu.Lock()
		lock, ok := s.cardLocks[id]
		s.mu.Unlock()
		if !ok {
			continue
		}

		select {
		case lock <- struct{}{}:
			held = append(held, lock)
		case <-ctx.Done():
			return held, ctx.Err()
		}
	}
	return held, nil
}

func (s *Store) release(held []chan struct{}) {
	for i := len(held) - 1; i >= 0; i-- {
		<-held[i]
	}
}
