package store

import (
	"context"
	"fmt"

	"github.com/tacoworks/tollgate/internal/logger"
)

// subscriptionRepository is the SQL-backed implementation of
// [SubscriptionRepository]. The "subscriptions" table is written by the
// billing pipeline; this repository only reads it.
type subscriptionRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewSubscriptionRepository constructs a [SubscriptionRepository] backed by
// the provided database connection and logger.
func NewSubscriptionRepository(db *DB, logger *logger.Logger) SubscriptionRepository {
	logger.Debug().Msg("creating subscription repository")
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// GetProducts returns the distinct products held through an active or
// trialing subscription. Every call hits the database so that a revoked
// subscription stops granting access immediately.
func (r *subscriptionRepository) GetProducts(ctx context.Context, userID string) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, selectActiveProducts, userID)
	if err != nil {
		log.Err(err).
			Str("func", "subscriptionRepository.GetProducts").
			Str("user_id", userID).
			Msg("failed to execute products query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	products := make([]string, 0, 4)

	for rows.Next() {
		var product string
		if scanErr := rows.Scan(&product); scanErr != nil {
			log.Err(scanErr).
				Str("func", "subscriptionRepository.GetProducts").
				Str("user_id", userID).
				Msg("failed to scan product row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		products = append(products, product)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "subscriptionRepository.GetProducts").
			Str("user_id", userID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return products, nil
}
