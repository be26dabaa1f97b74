// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/cardledger/internal/domain/model"
	"github.com/ericfisherdev/cardledger/internal/domain/port/driven"
)

// Default engine limits.
const (
	DefaultLockTimeout = 2 * time.Second
	DefaultMaxAttempts = 4
)

// EngineOptions bounds how long a transfer may wait and how often it retries.
type EngineOptions struct {
	// LockTimeout bounds a single attempt, including waiting for card locks.
	LockTimeout time.Duration
	// MaxAttempts is the total number of attempts for transient failures.
	MaxAttempts int
}

// LedgerEngine executes transfers. Each attempt runs in one store transaction
// that locks both cards, checks every precondition against the locked rows,
// moves the funds and appends one COMPLETE transaction. Nothing is written
// when a precondition fails.
type LedgerEngine struct {
	ledger     driven.Ledger
	guard      *AuthorizationGuard
	opts       EngineOptions
	group      singleflight.Group
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

// NewLedgerEngine creates a LedgerEngine. Zero options fall back to the defaults.
func NewLedgerEngine(ledger driven.Ledger, guard *AuthorizationGuard, opts EngineOptions, logger *slog.Logger) *LedgerEngine {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}

	return &LedgerEngine{
		ledger:     ledger,
		guard:      guard,
		opts:       opts,
		newBackOff: defaultBackOff,
		logger:     logger,
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.Multiplier = 2
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Transfer moves req.Amount from the sender card to the receiver card.
//
// Preconditions are checked in order and each fails with its own error:
// a positive amount, distinct cards, an idempotency key, an existing sender,
// sender ownership plus matching card secrets, an existing receiver, and
// sufficient funds. A request whose idempotency key was already committed by
// the same principal returns the stored transaction with Replayed set, or
// model.ErrIdempotencyKeyReuse when the parameters differ.
func (e *LedgerEngine) Transfer(ctx context.Context, req model.TransferRequest) (model.TransferResult, error) {
	req = req.Normalized()
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)

	if err := validateTransfer(req); err != nil {
		e.logRejected(req, err)
		return model.TransferResult{}, err
	}

	// Concurrent duplicates inside this process share one execution; the
	// unique (principal, key) index covers duplicates across processes.
	flightKey := strings.Join([]string{
		strconv.FormatInt(req.PrincipalID, 10),
		req.IdempotencyKey,
		req.SenderCardNumber,
		req.ReceiverCardNumber,
		strconv.FormatInt(req.Amount, 10),
	}, "\x00")

	leader := false
	v, err, _ := e.group.Do(flightKey, func() (any, error) {
		leader = true
		return e.transferWithRetry(ctx, req)
	})
	if !leader {
		if err != nil && isContextErr(err) && ctx.Err() == nil {
			// The leader's caller went away; this caller is still waiting.
			v, err = e.transferWithRetry(ctx, req)
		} else if err == nil {
			res := v.(model.TransferResult)
			res.Replayed = true
			v = res
		}
	}

	if err != nil {
		e.logRejected(req, err)
		return model.TransferResult{}, err
	}

	res := v.(model.TransferResult)
	if res.Replayed {
		e.logger.Info("transfer replayed",
			"principal_id", req.PrincipalID,
			"transaction_id", res.Transaction.ID,
			"idempotency_key", req.IdempotencyKey,
		)
	} else {
		e.logger.Info("transfer committed",
			"principal_id", req.PrincipalID,
			"transaction_id", res.Transaction.ID,
			"sender", model.MaskNumber(req.SenderCardNumber),
			"receiver", model.MaskNumber(req.ReceiverCardNumber),
			"amount", req.Amount,
		)
	}
	return res, nil
}

func validateTransfer(req model.TransferRequest) error {
	if req.Amount <= 0 {
		return model.ErrInvalidAmount
	}
	if req.SenderCardNumber == req.ReceiverCardNumber {
		return model.ErrSameCardTransfer
	}
	if req.IdempotencyKey == "" {
		return model.ErrMissingIdempotencyKey
	}
	return nil
}

// transferWithRetry reruns whole attempts while they fail transiently.
func (e *LedgerEngine) transferWithRetry(ctx context.Context, req model.TransferRequest) (any, error) {
	var result model.TransferResult
	attempt := 0

	op := func() error {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.LockTimeout)
		defer cancel()

		res, err := e.attempt(attemptCtx, req)
		if err != nil {
			err = classifyAttemptError(ctx, err)
			if model.IsTransient(err) {
				e.logger.Debug("transfer attempt failed, retrying",
					"principal_id", req.PrincipalID,
					"attempt", attempt,
					"error", err,
				)
				return err
			}
			return backoff.Permanent(err)
		}

		result = res
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), uint64(e.opts.MaxAttempts-1)), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *LedgerEngine) attempt(ctx context.Context, req model.TransferRequest) (model.TransferResult, error) {
	var out model.TransferResult

	err := e.ledger.RunInTx(ctx, func(tx driven.LedgerTx) error {
		cards, err := tx.LockCards(ctx, req.SenderCardNumber, req.ReceiverCardNumber)
		if err != nil {
			return err
		}

		prior, err := tx.FindByIdempotencyKey(ctx, req.PrincipalID, req.IdempotencyKey)
		if err != nil {
			return err
		}
		if prior != nil {
			if !req.Matches(*prior) {
				return model.ErrIdempotencyKeyReuse
			}
			out = model.TransferResult{Transaction: *prior, Replayed: true}
			return nil
		}

		sender, ok := cards[req.SenderCardNumber]
		if !ok {
			return model.ErrSenderCardNotFound
		}

		// The sender must pass the guard before the receiver's existence is
		// reported, or a missing receiver would reveal that a foreign card exists.
		if err := e.guard.Authorize(req.PrincipalID, &sender); err != nil {
			return err
		}
		if err := e.guard.VerifySecrets(&sender, req.CVV, req.PIN); err != nil {
			return err
		}

		receiver, ok := cards[req.ReceiverCardNumber]
		if !ok {
			return model.ErrReceiverCardNotFound
		}

		if sender.Balance < req.Amount {
			return model.ErrInsufficientFunds
		}
		if receiver.Balance > math.MaxInt64-req.Amount {
			return model.ErrBalanceLimit
		}

		if err := tx.AdjustBalance(ctx, sender.ID, -req.Amount); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, receiver.ID, req.Amount); err != nil {
			return err
		}

		txn, err := tx.AppendTransaction(ctx, model.Transaction{
			CardID:             sender.ID,
			ReceiverCardNumber: receiver.Number,
			Amount:             req.Amount,
			Status:             model.TransactionStatusComplete,
			PrincipalID:        req.PrincipalID,
			IdempotencyKey:     req.IdempotencyKey,
		})
		if err != nil {
			return err
		}

		out = model.TransferResult{Transaction: txn}
		return nil
	})
	if err != nil {
		return model.TransferResult{}, err
	}
	return out, nil
}

// classifyAttemptError maps an attempt failure onto the error classes. parent
// is the caller's context, which outlives the per-attempt timeout.
func classifyAttemptError(parent context.Context, err error) error {
	switch {
	case parent.Err() != nil:
		return fmt.Errorf("transfer aborted: %w", parent.Err())
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("card lock wait timed out: %w", model.ErrConcurrencyConflict)
	case model.IsClassified(err):
		return err
	default:
		return fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// logRejected logs a transfer that did not commit. Card numbers are masked.
func (e *LedgerEngine) logRejected(req model.TransferRequest, err error) {
	level := slog.LevelWarn
	if errors.Is(err, model.ErrPersistence) {
		level = slog.LevelError
	}
	e.logger.Log(context.Background(), level, "transfer rejected",
		"principal_id", req.PrincipalID,
		"sender", model.MaskNumber(req.SenderCardNumber),
		"receiver", model.MaskNumber(req.ReceiverCardNumber),
		"amount", req.Amount,
		"error", err,
	)
}
