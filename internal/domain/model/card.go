package model

import "time"

// Card is a payment card owned by a principal. Number is immutable once
// registered and Balance is only ever mutated by a committed transfer.
type Card struct {
	ID        int64
	Number    string
	CVVHash   string
	PINHash   string
	Expiry    Expiry
	Network   Network
	Balance   int64
	OwnerID   int64
	CreatedAt time.Time
}

// NewCard is the raw input for registering a card. CVV and PIN are plaintext
// here and never leave the application layer unhashed.
type NewCard struct {
	OwnerID int64
	Number  string
	CVV     string
	PIN     string
	Expiry  string
}
