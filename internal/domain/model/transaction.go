package model

import "time"

// TransactionStatus is the outcome recorded for a transfer.
type TransactionStatus string

const (
	TransactionStatusComplete TransactionStatus = "COMPLETE"
	TransactionStatusFailed   TransactionStatus = "FAILED"
)

// Direction tags a history entry relative to the card being viewed.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Transaction is an immutable ledger record. SenderCardNumber is resolved from
// CardID on read; ReceiverCardNumber is a denormalized copy taken at commit.
type Transaction struct {
	ID                 int64
	CardID             int64
	SenderCardNumber   string
	ReceiverCardNumber string
	Amount             int64
	Status             TransactionStatus
	PrincipalID        int64
	IdempotencyKey     string
	CreatedAt          time.Time
}

// HistoryEntry is one transaction as seen from a particular card.
type HistoryEntry struct {
	Transaction
	Direction          Direction
	CounterpartyNumber string
}

// NewHistoryEntry tags txn relative to cardNumber.
func NewHistoryEntry(txn Transaction, cardNumber string) HistoryEntry {
	if txn.SenderCardNumber == cardNumber {
		return HistoryEntry{Transaction: txn, Direction: DirectionSent, CounterpartyNumber: txn.ReceiverCardNumber}
	}
	return HistoryEntry{Transaction: txn, Direction: DirectionReceived, CounterpartyNumber: txn.SenderCardNumber}
}

// CardHistory groups the history of one card with the card itself.
type CardHistory struct {
	Card    Card
	Entries []HistoryEntry
}
