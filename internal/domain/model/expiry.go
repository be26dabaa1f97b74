package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Expiry is a card expiry month. Year is the full four-digit year.
type Expiry struct {
	Month int
	Year  int
}

// ParseExpiry accepts the card face format "MM/YY" (or "MMYY").
func ParseExpiry(in string) (Expiry, error) {
	s := strings.ReplaceAll(strings.TrimSpace(in), "/", "")
	if len(s) != 4 || !IsDigits(s) {
		return Expiry{}, ValidationError("expiry", "must be MM/YY")
	}

	mm, _ := strconv.Atoi(s[:2])
	yy, _ := strconv.Atoi(s[2:])
	if mm < 1 || mm > 12 {
		return Expiry{}, ValidationError("expiry", "month must be 01..12")
	}

	return Expiry{Month: mm, Year: 2000 + yy}, nil
}

// String formats the expiry as printed on the card face.
func (e Expiry) String() string {
	return fmt.Sprintf("%02d/%02d", e.Month, e.Year%100)
}

// EndOfMonth returns the last instant of the expiry month in UTC.
func (e Expiry) EndOfMonth() time.Time {
	firstNext := time.Date(e.Year, time.Month(e.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstNext.Add(-time.Nanosecond)
}

// ExpiredAt reports whether at is strictly after the end of the expiry month.
func (e Expiry) ExpiredAt(at time.Time) bool {
	return at.UTC().After(e.EndOfMonth())
}
