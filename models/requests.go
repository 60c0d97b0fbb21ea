package models

import "encoding/json"

// GrantRequest asks the ledger to add tokens to a user's account.
// It arrives from the payment pipeline (the Stripe webhook handler),
// never directly from end users.
type GrantRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`

	// Description is the human-readable reason recorded on the
	// transaction ("token purchase", "signup bonus", ...).
	Description string `json:"description,omitempty"`

	// StripePaymentID deduplicates grants: a repeated payment
	// identifier is acknowledged without applying the grant twice.
	StripePaymentID string `json:"stripe_payment_id,omitempty"`
}

// AuthorizeRequest names the resource a caller wants to use. The
// gating policy (required products, token cost) is resolved from the
// server-side feature registry, never taken from the request.
type AuthorizeRequest struct {
	ResourceName string `json:"resource_name"`

	// DeviceID optionally identifies the calling device. It is recorded
	// in the access log and carries no authorization weight.
	DeviceID string `json:"device_id,omitempty"`
}

// SyncWriteRequest carries one sync write.
type SyncWriteRequest struct {
	// Data is the opaque payload to store under current.
	Data json.RawMessage `json:"data"`

	// DeviceID identifies the writing device and is stamped into
	// the resulting meta.
	DeviceID string `json:"device_id"`

	// ExpectedVersion, when present, is the version the writer
	// believes is current. A mismatch is a version conflict and the
	// write is rejected without side effects. When absent the write
	// targets the observed head.
	ExpectedVersion *int64 `json:"expected_version,omitempty"`
}
