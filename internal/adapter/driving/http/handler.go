package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ericfisherdev/cardledger/internal/application"
	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// IdempotencyKeyHeader names the request header that carries a transfer's
// idempotency key.
const IdempotencyKeyHeader = "Idempotency-Key"

// maxBodyBytes caps request bodies; every request body here is a small form.
const maxBodyBytes = 1 << 16

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	cards      *application.CardService
	engine     *application.LedgerEngine
	history    *application.HistoryService
	principals *application.PrincipalService
	store      driven.Pinger
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	cards *application.CardService,
	engine *application.LedgerEngine,
	history *application.HistoryService,
	principals *application.PrincipalService,
	store driven.Pinger,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		cards:      cards,
		engine:     engine,
		history:    history,
		principals: principals,
		store:      store,
		logger:     logger,
	}
}

// NewRouter creates an http.Handler with all routes registered. Every route
// except the health check requires a session resolved by sessions.
func NewRouter(h *Handler, sessions driven.SessionProvider, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	// Recovery inside logging so a panic is still logged as a 500.
	r.Use(recoveryMiddleware(logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(sessions, logger))
			r.Use(middleware.AllowContentType("application/json"))

			r.Get("/cards", h.ListCards)
			r.Post("/cards", h.AddCard)
			r.Post("/transfers", h.Transfer)
			r.Get("/history", h.GetHistory)
			r.Delete("/principals/me", h.DeletePrincipal)
		})
	})

	return r
}

// AddCard registers a card for the calling principal.
func (h *Handler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	card, err := h.cards.AddCard(r.Context(), model.NewCard{
		OwnerID: principalFrom(r.Context()),
		Number:  req.CardNumber,
		CVV:     req.CVV,
		PIN:     req.PIN,
		Expiry:  req.Expiry,
	})
	if err != nil {
		h.writeDomainError(w, r, "add card", err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardResponse(card))
}

// ListCards returns the calling principal's cards.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListCards(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, "list cards", err)
		return
	}

	resp := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, toCardResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transfer moves funds between two cards. A replayed request answers 200
// with the original transaction instead of 201.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.engine.Transfer(r.Context(), model.TransferRequest{
		PrincipalID:        principalFrom(r.Context()),
		SenderCardNumber:   req.SenderCardNumber,
		ReceiverCardNumber: req.ReceiverCardNumber,
		Amount:             req.Amount,
		CVV:                req.CVV,
		PIN:                req.PIN,
		IdempotencyKey:     r.Header.Get(IdempotencyKeyHeader),
	})
	if err != nil {
		h.writeDomainError(w, r, "transfer", err)
		return
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, toTransferResponse(res))
}

// GetHistory returns every card of the calling principal with its
// transaction history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.history.GetHistory(r.Context(), principalFrom(r.Context()))
	if err != nil {
		h.writeDomainError(w, r, "get history", err)
		return
	}

	resp := make([]CardHistoryResponse, 0, len(history))
	for _, ch := range history {
		resp = append(resp, toCardHistoryResponse(ch))
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeletePrincipal removes the calling principal with its cards and their
// transactions.
func (h *Handler) DeletePrincipal(w http.ResponseWriter, r *http.Request) {
	if err := h.principals.Delete(r.Context(), principalFrom(r.Context())); err != nil {
		h.writeDomainError(w, r, "delete principal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health reports whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Time: now})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Time: now})
}

// decodeBody decodes a JSON body into v, writing a 400 and returning false
// when the body is malformed.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		msg := "invalid request body"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			msg = "invalid request body: " + strings.ToLower(typeErr.Field) + " has the wrong type"
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}
