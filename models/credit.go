package models

import "time"

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	// TransactionPurchase adds tokens to the balance (positive amount).
	TransactionPurchase TransactionType = "purchase"

	// TransactionUse spends tokens from the balance (negative amount).
	TransactionUse TransactionType = "use"
)

// CreditAccount is the authoritative per-user token balance row.
//
// Balance is the only mutable authoritative field; the lifetime
// counters are monotonically increasing audit aggregates. The ledger
// maintains the invariant Balance == LifetimePurchased - LifetimeUsed
// at all times.
type CreditAccount struct {
	UserID            string    `json:"user_id"`
	Balance           int64     `json:"balance"`
	LifetimePurchased int64     `json:"lifetime_purchased"`
	LifetimeUsed      int64     `json:"lifetime_used"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreditTransaction is one append-only ledger entry. Rows are created
// once and never mutated or deleted.
//
// Amount is signed: positive for purchases, negative for use.
// BalanceAfter equals the account balance at the instant the entry
// was committed, which makes the log independently reconcilable.
type CreditTransaction struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Type            TransactionType `json:"type"`
	Amount          int64           `json:"amount"`
	BalanceAfter    int64           `json:"balance_after"`
	Description     string          `json:"description,omitempty"`
	StripePaymentID string          `json:"stripe_payment_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
