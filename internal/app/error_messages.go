// Package app contains shared application-layer constants used across the
// tollgate server handlers and middleware.
//
// Code* constants are the stable machine-readable error kinds written into
// the "code" field of every failure response. Msg* constants are the
// human-readable counterparts written into the "error" field. Keeping both
// in one place ensures consistent wording throughout the API.
package app

// Stable error codes of the HTTP surface. Clients branch on these;
// the wording of the paired message may change, the code may not.
const (
	// CodeMissingAuth: no Authorization header, or one that is not a
	// well-formed bearer credential.
	CodeMissingAuth = "MISSING_AUTH"

	// CodeInvalidToken: the credential is structurally invalid, carries
	// a wrong signature, or declares a non-session purpose.
	CodeInvalidToken = "INVALID_TOKEN"

	// CodeSessionExpired: the credential is well-formed but its expiry
	// has passed; the caller should refresh the session.
	CodeSessionExpired = "SESSION_EXPIRED"

	// CodeSubscriptionRequired: the identity lacks every product that
	// would unlock the feature.
	CodeSubscriptionRequired = "SUBSCRIPTION_REQUIRED"

	// CodeInsufficientTokens: the metered balance does not cover the
	// feature's token cost.
	CodeInsufficientTokens = "INSUFFICIENT_TOKENS"

	// CodeTokenTransactionError: the atomic ledger write failed in the
	// backing store. Safe for the caller to retry.
	CodeTokenTransactionError = "TOKEN_TRANSACTION_ERROR"

	// CodeSizeExceeded: the sync payload is larger than the configured
	// maximum; nothing was written.
	CodeSizeExceeded = "SIZE_EXCEEDED"

	// CodeVersionConflict: the writer's expected version is stale; the
	// caller must re-fetch current state and resolve.
	CodeVersionConflict = "VERSION_CONFLICT"

	// CodeChecksumMismatch: the stored payload does not match its
	// recorded checksum; store-level corruption, not a conflict.
	CodeChecksumMismatch = "CHECKSUM_MISMATCH"

	// CodeAccessDenied: the caller lacks permission for the endpoint
	// (e.g. the internal grant surface).
	CodeAccessDenied = "ACCESS_DENIED"

	// CodeNotFound: the requested resource, app, or snapshot does not exist.
	CodeNotFound = "NOT_FOUND"

	// CodeInvalidRequest: the request body or parameters are malformed.
	CodeInvalidRequest = "INVALID_REQUEST"

	// CodeInternalError: any other unexpected server-side failure.
	CodeInternalError = "INTERNAL_ERROR"
)

// Human-readable messages paired with the codes above.
const (
	MsgMissingAuth          = "missing or malformed authorization header"
	MsgInvalidToken         = "session token is invalid"
	MsgSessionExpired       = "session is expired, please sign in again"
	MsgSubscriptionRequired = "an active subscription is required for this feature"
	MsgInsufficientTokens   = "not enough tokens for this feature"
	MsgTokenTransaction     = "token transaction failed, please retry"
	MsgSizeExceeded         = "payload exceeds the maximum sync size"
	MsgVersionConflict      = "sync version conflict, please re-fetch and retry"
	MsgChecksumMismatch     = "stored payload failed its integrity check"
	MsgAccessDenied         = "access denied"
	MsgNotFound             = "not found"
	MsgInvalidDataProvided  = "invalid data provided"
	MsgInternalServerError  = "internal server error"
)
