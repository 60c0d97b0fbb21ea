package store

import (
	"context"
	"encoding/json"

	"github.com/tacoworks/tollgate/models"
)

// CreditRepository is the persistence contract for token credit accounts.
// Deduct and Grant are atomic: the balance check and the write happen in one
// guarded statement, so two racing deducts can never both succeed on the
// same tokens.
type CreditRepository interface {
	// GetBalance returns the current balance, or 0 for a user without an
	// account. Reading never creates the account.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// Deduct removes cost tokens and records a "use" transaction, returning
	// the new balance. A missing account or one holding fewer than cost
	// tokens yields an [InsufficientFundsError] and no writes.
	Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error)

	// Grant adds tokens and records a "purchase" transaction, creating the
	// account on first grant. A replayed StripePaymentID yields
	// [ErrDuplicateTransaction] and no writes.
	Grant(ctx context.Context, grant models.GrantRequest) (int64, error)

	// History returns the newest transactions first, optionally filtered
	// by type.
	History(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error)
}

// SubscriptionRepository reads the externally managed subscription table.
type SubscriptionRepository interface {
	// GetProducts returns the distinct products the user currently holds
	// through an active or trialing subscription. Every call hits the
	// database; results are never cached.
	GetProducts(ctx context.Context, userID string) ([]string, error)
}

// SyncRepository is the persistence contract for sync documents. Each
// implementation owns the whole write contract: the version compare, the
// snapshot of the previous payload, the current/meta swap and the history
// prune commit together or not at all.
type SyncRepository interface {
	// Read returns the current payload with its metadata.
	Read(ctx context.Context, userID, app string) (models.SyncDocument, error)

	// ReadMeta returns the metadata alone.
	ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error)

	// ReadSnapshot returns the payload archived for one historical version.
	ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error)

	// Write persists doc.Data as the new current payload. doc.Meta carries
	// the writer's device id, checksum and size; the repository assigns
	// Version and LastModified. A non-nil expectedVersion that does not
	// match the stored version yields [ErrVersionConflict] and no writes.
	Write(ctx context.Context, userID, app string, doc models.SyncDocument, expectedVersion *int64) (models.SyncMeta, error)
}

// ErrorClassificator maps driver-specific errors to conditions the
// repositories act on.
type ErrorClassificator interface {
	// IsUniqueViolation reports whether err is a unique constraint
	// violation.
	IsUniqueViolation(err error) bool
}
