package model

// TransferRequest asks the ledger to move Amount from the sender card to the
// receiver card on behalf of PrincipalID.
type TransferRequest struct {
	PrincipalID        int64
	SenderCardNumber   string
	ReceiverCardNumber string
	Amount             int64
	CVV                string
	PIN                string
	IdempotencyKey     string
}

// Normalized returns a copy with both card numbers normalized.
func (r TransferRequest) Normalized() TransferRequest {
	r.SenderCardNumber = NormalizeNumber(r.SenderCardNumber)
	r.ReceiverCardNumber = NormalizeNumber(r.ReceiverCardNumber)
	return r
}

// Matches reports whether txn records the same transfer this request asks for.
func (r TransferRequest) Matches(txn Transaction) bool {
	return txn.SenderCardNumber == r.SenderCardNumber &&
		txn.ReceiverCardNumber == r.ReceiverCardNumber &&
		txn.Amount == r.Amount
}

// TransferResult is the committed transaction. Replayed is true when the
// idempotency key matched an earlier transfer and nothing was mutated.
type TransferResult struct {
	Transaction Transaction
	Replayed    bool
}
