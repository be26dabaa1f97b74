package model

import "strconv"

// Network is the card scheme derived from the card number.
type Network string

const (
	NetworkVisa       Network = "VISA"
	NetworkMastercard Network = "MASTERCARD"
	NetworkAmex       Network = "AMEX"
	NetworkUnknown    Network = "UNKNOWN"
)

// ClassifyNetwork derives the card network from the issuer prefix and length
// of number. It never fails: anything unrecognized, including non-numeric
// input, is NetworkUnknown.
func ClassifyNetwork(number string) Network {
	if !IsDigits(number) {
		return NetworkUnknown
	}

	n := len(number)
	switch {
	case number[0] == '4' && (n == 13 || n == 16 || n == 19):
		return NetworkVisa
	case n == 16 && isMastercardPrefix(number):
		return NetworkMastercard
	case n == 15 && (number[:2] == "34" || number[:2] == "37"):
		return NetworkAmex
	}
	return NetworkUnknown
}

func isMastercardPrefix(number string) bool {
	two, _ := strconv.Atoi(number[:2])
	if two >= 51 && two <= 55 {
		return true
	}
	four, _ := strconv.Atoi(number[:4])
	return four >= 2221 && four <= 2720
}
