package application

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Secret kinds bound into the keyed hash so a CVV hash never verifies as a PIN.
const (
	secretCVV = "cvv"
	secretPIN = "pin"
)

// SecretHasher derives keyed HMAC-SHA256 digests of card secrets. The digest
// is bound to the card number, so equal CVVs on different cards hash apart.
type SecretHasher struct {
	key []byte
}

// NewSecretHasher creates a SecretHasher using key as the HMAC pepper.
func NewSecretHasher(key []byte) *SecretHasher {
	return &SecretHasher{key: key}
}

// Hash returns the hex digest of value for the given kind and card number.
func (h *SecretHasher) Hash(kind, cardNumber, value string) string {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(kind))
	mac.Write([]byte{0})
	mac.Write([]byte(cardNumber))
	mac.Write([]byte{0})
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares value against a stored digest in constant time.
func (h *SecretHasher) Verify(kind, cardNumber, value, digest string) bool {
	return hmac.Equal([]byte(h.Hash(kind, cardNumber, value)), []byte(digest))
}
