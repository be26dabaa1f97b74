package model

import "time"

// Principal is an authenticated identity that owns cards. Credentials are
// opaque to the ledger; PasswordHash is stored but never interpreted.
type Principal struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}
