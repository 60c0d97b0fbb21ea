package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// creditRepository is the SQL-backed implementation of [CreditRepository].
// It maintains the "credit_accounts" balance table and the append-only
// "credit_transactions" ledger together, inside one transaction per write.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type creditRepository struct {
	logger *logger.Logger
	db     *DB
	uuid   *utils.UUIDGenerator
}

// NewCreditRepository constructs a [CreditRepository] backed by the provided
// database connection and logger.
func NewCreditRepository(db *DB, logger *logger.Logger) CreditRepository {
	logger.Debug().Msg("creating credit repository")
	return &creditRepository{
		db:     db,
		logger: logger,
		uuid:   utils.NewUUIDGenerator(),
	}
}

// GetBalance reads the current token balance. A user without an account row
// reports a balance of 0; reading never creates the row.
func (r *creditRepository) GetBalance(ctx context.Context, userID string) (int64, error) {
	log := logger.FromContext(ctx)

	var balance int64
	err := r.db.QueryRowContext(ctx, selectBalance, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.GetBalance").
			Str("user_id", userID).
			Msg("failed to read balance")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return balance, nil
}

// Deduct spends cost tokens and records a "use" ledger entry in the same
// transaction.
//
// The balance check rides inside the UPDATE itself (WHERE balance >= cost),
// so two racing deducts can never both succeed on the same tokens: the loser
// sees zero updated rows and is rejected. A rejected deduct is reported as
// [InsufficientFundsError] carrying the balance observed inside the same
// transaction, 0 when the account does not exist.
func (r *creditRepository) Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error) {
	log := logger.FromContext(ctx)

	if cost <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNonPositiveAmount, cost)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.Deduct").
			Str("user_id", userID).
			Msg("failed to begin transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// spend tokens only when the guarded balance check holds
	var newBalance int64
	err = tx.QueryRowContext(ctx, deductBalance, cost, cost, userID, cost).Scan(&newBalance)
	if errors.Is(err, sql.ErrNoRows) {
		// the guard rejected the update: missing account or not enough tokens
		var balance int64
		balanceErr := tx.QueryRowContext(ctx, selectBalance, userID).Scan(&balance)
		if balanceErr != nil && !errors.Is(balanceErr, sql.ErrNoRows) {
			log.Err(balanceErr).
				Str("func", "creditRepository.Deduct").
				Str("user_id", userID).
				Msg("failed to read balance after rejected deduct")
			return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, balanceErr)
		}

		log.Warn().
			Str("func", "creditRepository.Deduct").
			Str("user_id", userID).
			Int64("balance", balance).
			Int64("cost", cost).
			Msg("deduct rejected: insufficient token balance")
		return 0, &InsufficientFundsError{Balance: balance, Required: cost}
	}
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.Deduct").
			Str("user_id", userID).
			Msg("failed to execute deduct query")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	// record the ledger entry next to the balance change
	_, err = tx.ExecContext(ctx, insertTransaction,
		r.uuid.Generate(), userID, models.TransactionUse, -cost, newBalance, reason, sql.NullString{})
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.Deduct").
			Str("user_id", userID).
			Msg("failed to insert use transaction")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "creditRepository.Deduct").
			Str("user_id", userID).
			Msg("failed to commit transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "creditRepository.Deduct").
		Str("user_id", userID).
		Int64("cost", cost).
		Int64("balance", newBalance).
		Msg("tokens deducted")

	return newBalance, nil
}

// Grant adds tokens and records a "purchase" ledger entry in the same
// transaction, creating the account row on first grant.
//
// When the grant carries a Stripe payment id, the unique index on the ledger
// rejects a second insert with the same id. The transaction rolls back, the
// balance keeps its previous value and [ErrDuplicateTransaction] is returned,
// which makes webhook re-delivery harmless.
func (r *creditRepository) Grant(ctx context.Context, grant models.GrantRequest) (int64, error) {
	log := logger.FromContext(ctx)

	if grant.Amount <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrNonPositiveAmount, grant.Amount)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.Grant").
			Str("user_id", grant.UserID).
			Msg("failed to begin transaction")
		return 0, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	// add tokens, creating the account on first grant
	var newBalance int64
	err = tx.QueryRowContext(ctx, grantCredits, grant.UserID, grant.Amount, grant.Amount).Scan(&newBalance)
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.Grant").
			Str("user_id", grant.UserID).
			Msg("failed to execute grant query")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	stripePaymentID := sql.NullString{String: grant.StripePaymentID, Valid: grant.StripePaymentID != ""}
	_, err = tx.ExecContext(ctx, insertTransaction,
		r.uuid.Generate(), grant.UserID, models.TransactionPurchase, grant.Amount, newBalance, grant.Description, stripePaymentID)
	if err != nil {
		// same payment id seen before: the rollback undoes the balance change
		if r.db.errorClassificator.IsUniqueViolation(err) {
			log.Warn().
				Str("func", "creditRepository.Grant").
				Str("user_id", grant.UserID).
				Str("stripe_payment_id", grant.StripePaymentID).
				Msg("grant rejected: payment already recorded")
			return 0, ErrDuplicateTransaction
		}

		log.Err(err).
			Str("func", "creditRepository.Grant").
			Str("user_id", grant.UserID).
			Msg("failed to insert purchase transaction")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "creditRepository.Grant").
			Str("user_id", grant.UserID).
			Msg("failed to commit transaction")
		return 0, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	log.Info().
		Str("func", "creditRepository.Grant").
		Str("user_id", grant.UserID).
		Int64("amount", grant.Amount).
		Int64("balance", newBalance).
		Msg("tokens granted")

	return newBalance, nil
}

// History retrieves the user's ledger entries, newest first, optionally
// filtered by transaction type. A limit of 0 or less returns all entries.
func (r *creditRepository) History(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildHistoryQuery(userID, limit, txType)
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.History").
			Str("user_id", userID).
			Msg("failed to create query")
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "creditRepository.History").
			Str("user_id", userID).
			Msg("failed to execute history query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	results := make([]models.CreditTransaction, 0, 50)

	for rows.Next() {
		var entry models.CreditTransaction
		var stripePaymentID sql.NullString

		scanErr := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Type,
			&entry.Amount,
			&entry.BalanceAfter,
			&entry.Description,
			&stripePaymentID,
			&entry.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "creditRepository.History").
				Str("user_id", userID).
				Msg("failed to scan transaction row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entry.StripePaymentID = stripePaymentID.String
		results = append(results, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "creditRepository.History").
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return results, nil
}
