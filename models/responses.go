package models

import "encoding/json"

// ErrorResponse is the uniform failure body of the HTTP surface:
// a human-readable message, a stable machine code, and per-kind
// extra fields the caller can act on.
type ErrorResponse struct {
	// Error is the human-readable message.
	Error string `json:"error"`

	// Code is the stable error kind (MISSING_AUTH, INSUFFICIENT_TOKENS, ...).
	Code string `json:"code"`

	// Balance and Required accompany INSUFFICIENT_TOKENS so the
	// caller can offer a top-up path.
	Balance  *int64 `json:"balance,omitempty"`
	Required *int64 `json:"required,omitempty"`

	// Missing accompanies SUBSCRIPTION_REQUIRED and names the product
	// that would unlock the feature.
	Missing string `json:"missing,omitempty"`

	// Size and Max accompany SIZE_EXCEEDED.
	Size *int64 `json:"size,omitempty"`
	Max  *int64 `json:"max,omitempty"`

	// Version accompanies VERSION_CONFLICT and reports the version
	// currently stored, so the caller can re-fetch and resolve.
	Version *int64 `json:"version,omitempty"`
}

// VersionResponse reports the server build identity.
type VersionResponse struct {
	Version     string `json:"version"`
	BuildDate   string `json:"build_date"`
	BuildCommit string `json:"build_commit"`
}

// BalanceResponse reports a user's balance. Unlimited identities see
// the string "unlimited" instead of a number.
type BalanceResponse struct {
	Balance Balance `json:"balance"`
}

// GrantResponse reports the post-grant balance. Grants always act on
// a metered account, so the value is a plain number.
type GrantResponse struct {
	Balance int64 `json:"balance"`
}

// HistoryResponse lists a user's ledger entries, newest first.
type HistoryResponse struct {
	Transactions []CreditTransaction `json:"transactions"`

	// Length is the total number of entries in Transactions.
	Length int `json:"length"`
}

// AuthorizeResponse is the success body of a feature authorization:
// who the caller is and what balance remains after any deduction.
type AuthorizeResponse struct {
	UserID  string  `json:"user_id"`
	Email   string  `json:"email,omitempty"`
	Balance Balance `json:"balance"`
}

// SyncWriteResponse reports the meta produced by an accepted write.
type SyncWriteResponse struct {
	Meta SyncMeta `json:"meta"`
}

// SyncMetaResponse reports the stored meta without the payload.
type SyncMetaResponse struct {
	Meta SyncMeta `json:"meta"`
}

// SnapshotResponse carries one immutable history snapshot.
type SnapshotResponse struct {
	Data    json.RawMessage `json:"data"`
	Version int64           `json:"version"`
}
