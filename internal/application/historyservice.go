package application

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// HistoryService assembles per-card transaction history for a principal.
type HistoryService struct {
	cards driven.CardDirectory
	log   driven.TransactionLog
}

// NewHistoryService creates a HistoryService.
func NewHistoryService(cards driven.CardDirectory, log driven.TransactionLog) *HistoryService {
	return &HistoryService{cards: cards, log: log}
}

// GetHistory returns, for every card the principal owns, the merged sent and
// received transactions of that card. Each card is read separately, so the
// result is not a single snapshot across cards.
func (s *HistoryService) GetHistory(ctx context.Context, principalID int64) ([]model.CardHistory, error) {
	cards, err := s.cards.ListByOwner(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	history := make([]model.CardHistory, 0, len(cards))
	for _, card := range cards {
		entries, err := s.log.History(ctx, card.Number)
		if err != nil {
			return nil, fmt.Errorf("history of card %d: %w", card.ID, err)
		}
		if entries == nil {
			entries = []model.HistoryEntry{}
		}
		history = append(history, model.CardHistory{Card: card, Entries: entries})
	}
	return history, nil
}
