package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AddCardRequest is the JSON body for the add card endpoint.
type AddCardRequest struct {
	CardNumber string `json:"card_number"`
	CVV        string `json:"cvv"`
	PIN        string `json:"pin"`
	Expiry     string `json:"expiry"`
}

// TransferRequest is the JSON body for the transfer endpoint. The
// idempotency key travels in the Idempotency-Key header.
type TransferRequest struct {
	SenderCardNumber   string `json:"sender_card_number"`
	ReceiverCardNumber string `json:"receiver_card_number"`
	Amount             int64  `json:"amount"`
	CVV                string `json:"cvv"`
	PIN                string `json:"pin"`
}

// CardResponse is the JSON representation of a card. Secrets are never sent.
type CardResponse struct {
	ID         int64  `json:"id"`
	CardNumber string `json:"card_number"`
	Network    string `json:"network"`
	Expiry     string `json:"expiry"`
	Balance    int64  `json:"balance"`
	CreatedAt  string `json:"created_at"`
}

// TransferResponse is the JSON representation of a committed transfer.
type TransferResponse struct {
	TransactionID      int64  `json:"transaction_id"`
	SenderCardNumber   string `json:"sender_card_number"`
	ReceiverCardNumber string `json:"receiver_card_number"`
	Amount             int64  `json:"amount"`
	Status             string `json:"status"`
	CreatedAt          string `json:"created_at"`
	Replayed           bool   `json:"replayed"`
}

// HistoryEntryResponse is one transaction as seen from a card.
type HistoryEntryResponse struct {
	TransactionID int64  `json:"transaction_id"`
	Direction     string `json:"direction"`
	Counterparty  string `json:"counterparty_card_number"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

// CardHistoryResponse groups a card with its transactions, oldest first.
type CardHistoryResponse struct {
	Card         CardResponse           `json:"card"`
	Transactions []HistoryEntryResponse `json:"transactions"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toCardResponse(c model.Card) CardResponse {
	return CardResponse{
		ID:         c.ID,
		CardNumber: c.Number,
		Network:    string(c.Network),
		Expiry:     c.Expiry.String(),
		Balance:    c.Balance,
		CreatedAt:  formatTime(c.CreatedAt),
	}
}

func toTransferResponse(res model.TransferResult) TransferResponse {
	txn := res.Transaction
	return TransferResponse{
		TransactionID:      txn.ID,
		SenderCardNumber:   txn.SenderCardNumber,
		ReceiverCardNumber: txn.ReceiverCardNumber,
		Amount:             txn.Amount,
		Status:             string(txn.Status),
		CreatedAt:          formatTime(txn.CreatedAt),
		Replayed:           res.Replayed,
	}
}

// toCardHistoryResponse always emits a transactions array, never null.
func toCardHistoryResponse(ch model.CardHistory) CardHistoryResponse {
	entries := make([]HistoryEntryResponse, 0, len(ch.Entries))
	for _, e := range ch.Entries {
		entries = append(entries, HistoryEntryResponse{
			TransactionID: e.ID,
			Direction:     string(e.Direction),
			Counterparty:  e.CounterpartyNumber,
			Amount:        e.Amount,
			Status:        string(e.Status),
			CreatedAt:     formatTime(e.CreatedAt),
		})
	}
	return CardHistoryResponse{Card: toCardResponse(ch.Card), Transactions: entries}
}
