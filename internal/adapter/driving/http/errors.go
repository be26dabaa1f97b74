package httphandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// retryAfterSeconds is sent with 503 responses caused by lock contention.
const retryAfterSeconds = 1

// forbiddenMessage is the single body for every denial involving the sender
// card, whether the card is missing or belongs to someone else.
const forbiddenMessage = "card not accessible"

// statusFor maps a ledger error onto an HTTP status and a client-safe message.
// Order matters: specific errors are checked before their classes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrSenderCardNotFound), errors.Is(err, model.ErrNotOwner):
		return http.StatusForbidden, forbiddenMessage
	case errors.Is(err, model.ErrIdempotencyKeyReuse):
		return http.StatusUnprocessableEntity, model.ErrIdempotencyKeyReuse.Error()
	case errors.Is(err, model.ErrDuplicateCardNumber), errors.Is(err, model.ErrDuplicateEmail):
		return http.StatusConflict, classMessage(err, model.ErrValidation)
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, classMessage(err, model.ErrValidation)
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, classMessage(err, model.ErrNotFound)
	case errors.Is(err, model.ErrAuthorization):
		return http.StatusForbidden, forbiddenMessage
	case errors.Is(err, model.ErrInsufficientFunds):
		return http.StatusConflict, model.ErrInsufficientFunds.Error()
	case errors.Is(err, model.ErrConcurrencyConflict):
		return http.StatusServiceUnavailable, "ledger busy, retry later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// classMessage returns the message of the specific ledger error inside err,
// falling back to the class message. Wrapping context is never exposed.
func classMessage(err error, class error) string {
	var le *model.Error
	if errors.As(err, &le) {
		return le.Error()
	}
	return class.Error()
}

// writeDomainError writes the response for err and logs server-side failures.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := statusFor(err)

	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		h.logger.Error(op+" failed", "request_id", requestIDFrom(r.Context()), "error", err)
	case status == http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		h.logger.Warn(op+" contended", "request_id", requestIDFrom(r.Context()), "error", err)
	}

	writeError(w, status, msg)
}
