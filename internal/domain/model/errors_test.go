package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		class error
	}{
		{name: "invalid amount", err: ErrInvalidAmount, class: ErrValidation},
		{name: "same card", err: ErrSameCardTransfer, class: ErrValidation},
		{name: "key reuse", err: ErrIdempotencyKeyReuse, class: ErrValidation},
		{name: "sender missing", err: ErrSenderCardNotFound, class: ErrNotFound},
		{name: "receiver missing", err: ErrReceiverCardNotFound, class: ErrNotFound},
		{name: "not owner", err: ErrNotOwner, class: ErrAuthorization},
		{name: "field", err: ValidationError("cvv", "must be 3 digits"), class: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("transfer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.class)
			assert.ErrorIs(t, wrapped, tt.err)
			assert.True(t, IsClassified(wrapped))
		})
	}

	assert.ErrorIs(t, ErrSenderCardNotFound, ErrCardNotFound)
	assert.NotErrorIs(t, ErrSenderCardNotFound, ErrReceiverCardNotFound)
	assert.Equal(t, "cvv: must be 3 digits", ValidationError("cvv", "must be 3 digits").Error())
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(fmt.Errorf("lock: %w", ErrConcurrencyConflict)))
	assert.True(t, IsTransient(ErrPersistence))
	assert.False(t, IsTransient(ErrInsufficientFunds))
	assert.False(t, IsTransient(ErrNotOwner))
	assert.False(t, IsClassified(errors.New("disk on fire")))
}
