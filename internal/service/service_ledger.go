package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/models"
)

// ledgerService is the concrete implementation of LedgerService. The
// atomicity of every balance mutation lives in the CreditRepository;
// this layer adds grant idempotency and the transaction-failure
// classification the HTTP surface maps to a retryable 500.
type ledgerService struct {
	creditRepository store.CreditRepository

	logger *logger.Logger
}

// NewLedgerService constructs a LedgerService backed by the given
// CreditRepository.
func NewLedgerService(creditRepository store.CreditRepository, logger *logger.Logger) LedgerService {
	return &ledgerService{
		creditRepository: creditRepository,
		logger:           logger,
	}
}

// GetBalance returns the user's current balance. A user without an
// account reads 0; the account is never created by a read.
func (l *ledgerService) GetBalance(ctx context.Context, userID string) (int64, error) {
	balance, err := l.creditRepository.GetBalance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("balance lookup failed: %w", err)
	}

	return balance, nil
}

// Deduct spends cost tokens for the given reason and returns the new
// balance.
//
// Business refusals pass through typed: an underfunded account yields
// [store.InsufficientFundsError] and a non-positive cost yields
// [store.ErrNonPositiveAmount], both without state change. Any other
// failure is wrapped in [ErrTokenTransaction] since the write may not
// have committed and the caller may retry.
func (l *ledgerService) Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error) {
	log := logger.FromContext(ctx)

	balance, err := l.creditRepository.Deduct(ctx, userID, cost, reason)
	if err != nil {
		if errors.Is(err, store.ErrInsufficientFunds) || errors.Is(err, store.ErrNonPositiveAmount) {
			return 0, err
		}

		log.Err(err).
			Str("func", "ledgerService.Deduct").
			Str("user_id", userID).
			Int64("cost", cost).
			Msg("token deduction failed in the backing store")
		return 0, fmt.Errorf("%w: %w", ErrTokenTransaction, err)
	}

	return balance, nil
}

// Grant adds grant.Amount tokens to the user's account, creating it on
// first grant, and returns the new balance.
//
// A grant carrying an already recorded stripe payment id is the payment
// pipeline retrying a delivery: it is acknowledged as a success without
// applying the grant again, and the current balance is returned
// unchanged.
func (l *ledgerService) Grant(ctx context.Context, grant models.GrantRequest) (int64, error) {
	log := logger.FromContext(ctx)

	balance, err := l.creditRepository.Grant(ctx, grant)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTransaction) {
			log.Info().
				Str("func", "ledgerService.Grant").
				Str("user_id", grant.UserID).
				Str("stripe_payment_id", grant.StripePaymentID).
				Msg("duplicate grant acknowledged without applying")
			return l.GetBalance(ctx, grant.UserID)
		}

		if errors.Is(err, store.ErrNonPositiveAmount) {
			return 0, err
		}

		log.Err(err).
			Str("func", "ledgerService.Grant").
			Str("user_id", grant.UserID).
			Int64("amount", grant.Amount).
			Msg("token grant failed in the backing store")
		return 0, fmt.Errorf("%w: %w", ErrTokenTransaction, err)
	}

	return balance, nil
}

// History returns the user's ledger entries, newest first. txType narrows
// to "purchase" or "use" entries when non-empty; limit caps the result
// when positive.
func (l *ledgerService) History(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error) {
	transactions, err := l.creditRepository.History(ctx, userID, limit, txType)
	if err != nil {
		return nil, fmt.Errorf("history lookup failed: %w", err)
	}

	return transactions, nil
}
