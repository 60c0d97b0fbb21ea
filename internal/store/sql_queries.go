package store

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

const (
	deductBalance = `UPDATE credit_accounts
	SET balance = balance - $1, lifetime_used = lifetime_used + $2, updated_at = CURRENT_TIMESTAMP
	WHERE user_id = $3 AND balance >= $4
	RETURNING balance;`

	selectBalance = `SELECT balance
	FROM credit_accounts
	WHERE user_id = $1;`

	grantCredits = `INSERT INTO credit_accounts (user_id, balance, lifetime_purchased, updated_at)
	VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
	ON CONFLICT (user_id) DO UPDATE
	SET balance = credit_accounts.balance + excluded.balance,
		lifetime_purchased = credit_accounts.lifetime_purchased + excluded.lifetime_purchased,
		updated_at = CURRENT_TIMESTAMP
	RETURNING balance;`

	insertTransaction = `INSERT INTO credit_transactions (
			id,
			user_id,
			type,
			amount,
			balance_after,
			description,
			stripe_payment_id,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP);`

	selectActiveProducts = `SELECT DISTINCT product
	FROM subscriptions
	WHERE user_id = $1 AND status IN ('active', 'trialing')
	ORDER BY product;`
)

// buildHistoryQuery dynamically builds the transaction history SELECT with an
// optional type filter. Rows come back newest first, with the time-ordered id
// as a tiebreak for transactions created in the same instant.
func buildHistoryQuery(userID string, limit int, txType string) (string, []any, error) {
	builder := squirrel.
		Select("id", "user_id", "type", "amount", "balance_after", "description", "stripe_payment_id", "created_at").
		From("credit_transactions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(squirrel.Dollar)

	if txType != "" {
		builder = builder.Where(squirrel.Eq{"type": txType})
	}
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}
