package service

import (
	"context"
	"encoding/json"

	"github.com/tacoworks/tollgate/models"
)

// AuthService validates session credentials and answers capability
// questions about the resulting identity.
type AuthService interface {
	// Validate checks the raw Authorization header value and returns the
	// authenticated identity with its subscription set re-read from the
	// backing store. Failures are one of [ErrMissingAuth],
	// [ErrInvalidToken] or [ErrSessionExpired].
	Validate(ctx context.Context, authorization string) (models.Identity, error)

	// HasCapability reports whether the identity may use a feature gated
	// by requiredProducts. An identity holding taco_club is allowed for
	// anything; on refusal the result names the first requested product.
	HasCapability(identity models.Identity, requiredProducts []string) models.Capability

	// HasAppSyncSubscription reports whether the subscription set unlocks
	// sync for the given application: taco_club, sync_all, or the
	// app-specific sync product.
	HasAppSyncSubscription(subscriptions []string, app string) bool
}

// LedgerService owns token balances and the append-only transaction log.
type LedgerService interface {
	// GetBalance returns the current balance; a user without an account
	// reads 0.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// Deduct atomically spends cost tokens, returning the new balance.
	// A balance below cost yields [store.InsufficientFundsError] with no
	// state change.
	Deduct(ctx context.Context, userID string, cost int64, reason string) (int64, error)

	// Grant atomically adds tokens, creating the account on first grant.
	// A grant replaying an already recorded payment id is acknowledged
	// without applying and returns the current balance.
	Grant(ctx context.Context, grant models.GrantRequest) (int64, error)

	// History returns the newest ledger entries first, optionally
	// filtered by transaction type and capped at limit when positive.
	History(ctx context.Context, userID string, limit int, txType string) ([]models.CreditTransaction, error)
}

// FeatureService runs the composite authorization flows that gate paid
// features, sequencing credential validation, the subscription check and
// the optional token deduction into one decision.
type FeatureService interface {
	// Authorize resolves resourceName against the feature registry and
	// dispatches to the token or the subscription flow. Unknown names
	// yield [ErrUnknownResource].
	Authorize(ctx context.Context, authorization, resourceName string) (models.Decision, error)

	// AuthorizeTokenFeature validates the credential, applies the
	// subscription gate and deducts request.TokenCost. Identities holding
	// taco_club bypass metering entirely and report an unlimited balance.
	AuthorizeTokenFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error)

	// AuthorizeSubscriptionFeature applies the same identity and
	// subscription gate without any deduction.
	AuthorizeSubscriptionFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error)
}

// SyncService moves one user's per-application document between devices
// with integrity verification and bounded history. It is
// subscription-agnostic: callers confirm sync capability first.
type SyncService interface {
	// Read returns the current payload with its meta after verifying the
	// stored checksum. A diverged checksum yields [ErrChecksumMismatch].
	Read(ctx context.Context, userID, app string) (models.SyncDocument, error)

	// ReadMeta returns the stored meta alone.
	ReadMeta(ctx context.Context, userID, app string) (models.SyncMeta, error)

	// ReadSnapshot returns the payload archived for one historical
	// version.
	ReadSnapshot(ctx context.Context, userID, app string, version int64) (json.RawMessage, error)

	// Write stores a new current payload, stamping checksum and size. An
	// oversized payload is rejected before any write; a stale
	// req.ExpectedVersion yields [VersionConflictError] with no side
	// effects.
	Write(ctx context.Context, userID, app string, req models.SyncWriteRequest) (models.SyncMeta, error)
}

// AppInfoService reports the build metadata stamped into the binary.
type AppInfoService interface {
	GetBuildInfo(ctx context.Context) models.AppBuildInfo
}
