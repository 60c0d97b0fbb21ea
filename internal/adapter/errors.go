package adapter

import "errors"

// Transport-agnostic failures surfaced to the command layer. mapHTTPError
// wraps these around the server's error message, so callers can branch
// with errors.Is while still printing what the server said.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientTokens  = errors.New("insufficient tokens")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrVersionConflict     = errors.New("version conflict")
	ErrPayloadTooLarge     = errors.New("payload too large")
	ErrInternalServerError = errors.New("internal server error")
)

// ErrChecksumMismatch reports that a pulled payload does not hash to the
// checksum in its meta. It is raised locally, never by the server.
var ErrChecksumMismatch = errors.New("pulled payload failed checksum verification")
