package model

import "errors"

// Error classes. Every error surfaced by the ledger core wraps exactly one of
// these, so callers can branch on the class with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrAuthorization       = errors.New("not authorized")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrPersistence         = errors.New("persistence failure")
)

// Error is a specific ledger error that belongs to one class.
type Error struct {
	class error
	msg   string
}

func (e *Error) Error() string { return e.msg }

// Unwrap returns the class so errors.Is(err, ErrValidation) matches.
func (e *Error) Unwrap() error { return e.class }

func newError(class error, msg string) *Error {
	return &Error{class: class, msg: msg}
}

// Specific errors.
var (
	ErrInvalidAmount         = newError(ErrValidation, "amount must be greater than zero")
	ErrSameCardTransfer      = newError(ErrValidation, "sender and receiver card must differ")
	ErrMissingIdempotencyKey = newError(ErrValidation, "idempotency key is required")
	ErrIdempotencyKeyReuse   = newError(ErrValidation, "idempotency key already used for a different transfer")
	ErrBalanceLimit          = newError(ErrValidation, "receiver balance limit exceeded")
	ErrDuplicateCardNumber   = newError(ErrValidation, "card number already registered")
	ErrDuplicateEmail        = newError(ErrValidation, "email already registered")

	ErrCardNotFound      = newError(ErrNotFound, "card not found")
	ErrPrincipalNotFound = newError(ErrNotFound, "principal not found")

	// ErrSenderCardNotFound and ErrReceiverCardNotFound carry the role of the
	// missing card. Both match ErrCardNotFound.
	ErrSenderCardNotFound   = newError(ErrCardNotFound, "sender card not found")
	ErrReceiverCardNotFound = newError(ErrCardNotFound, "receiver card not found")

	ErrNotOwner = newError(ErrAuthorization, "card is not owned by principal")
)

// ValidationError returns a validation-class error naming the offending field.
func ValidationError(field, msg string) error {
	return newError(ErrValidation, field+": "+msg)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) || errors.Is(err, ErrPersistence)
}

// IsClassified reports whether err already belongs to one of the error classes.
func IsClassified(err error) bool {
	for _, class := range []error{
		ErrValidation, ErrNotFound, ErrAuthorization,
		ErrInsufficientFunds, ErrConcurrencyConflict, ErrPersistence,
	} {
		if errors.Is(err, class) {
			return true
		}
	}
	return false
}
