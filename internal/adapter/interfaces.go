// Package adapter provides transport-layer access to a tollgate server
// for the headless CLI.
//
// The primary abstraction is [ServerAdapter], which decouples the client
// command layer from the underlying protocol. The package ships an
// HTTP/REST implementation ([NewHTTPServerAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrVersionConflict] for 409, [ErrUnauthorized]
// for 401).
package adapter

import (
	"context"

	"github.com/tacoworks/tollgate/models"
)

// ServerAdapter defines transport-agnostic communication with a tollgate
// server. Implementations are responsible for serialization, bearer
// header management, and mapping transport-level failures to the
// sentinel values defined in this package.
type ServerAdapter interface {
	// SetToken stores the bearer credential (whitespace-trimmed) that is
	// attached to all subsequent authenticated requests.
	SetToken(token string)

	// Token returns the bearer credential currently held by the adapter,
	// or an empty string if none has been set.
	Token() string

	// GetBalance fetches the caller's current token balance, which is
	// either a metered amount or unlimited.
	GetBalance(ctx context.Context) (models.Balance, error)

	// GetHistory fetches the caller's ledger entries, newest first.
	// limit caps the number of entries when positive; txType narrows the
	// listing to "purchase" or "use" when non-empty.
	GetHistory(ctx context.Context, limit int, txType string) ([]models.CreditTransaction, error)

	// Authorize runs the full authorization flow for req.ResourceName
	// and returns the caller's identity and remaining balance.
	// [ErrInsufficientTokens] (wrapped) reports a metered refusal,
	// [ErrForbidden] a missing subscription.
	Authorize(ctx context.Context, req models.AuthorizeRequest) (models.AuthorizeResponse, error)

	// ReadSync fetches the current document for app and verifies the
	// payload against the checksum in its meta before returning it.
	// Returns [ErrChecksumMismatch] when the bytes do not hash to the
	// advertised checksum.
	ReadSync(ctx context.Context, app string) (models.SyncDocument, error)

	// WriteSync pushes a new payload for app and returns the stored
	// meta. Returns [ErrVersionConflict] (wrapped) when
	// req.ExpectedVersion is stale.
	WriteSync(ctx context.Context, app string, req models.SyncWriteRequest) (models.SyncMeta, error)

	// ReadSyncMeta fetches the version/checksum header for app without
	// the payload.
	ReadSyncMeta(ctx context.Context, app string) (models.SyncMeta, error)

	// ReadSyncSnapshot fetches the immutable history payload archived
	// under the given version.
	ReadSyncSnapshot(ctx context.Context, app string, version int64) (models.SnapshotResponse, error)
}
