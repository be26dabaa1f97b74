package model

import "strings"

// CardNumberLength is the number of digits a registered card number carries.
const CardNumberLength = 16

// NormalizeNumber strips spaces and dashes from a card number as printed on
// the card face.
func NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, s)
}

// IsDigits reports whether s is non-empty and consists only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MaskNumber keeps the first six and last four digits and masks the rest.
// Card numbers only appear in logs through this function.
func MaskNumber(number string) string {
	if len(number) <= 10 {
		return strings.Repeat("*", len(number))
	}
	return number[:6] + strings.Repeat("*", len(number)-10) + number[len(number)-4:]
}
