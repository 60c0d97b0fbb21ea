package service

import (
	"errors"
	"fmt"

	"github.com/tacoworks/tollgate/internal/store"
)

// Authentication outcomes of [AuthService.Validate]. The three kinds are
// deliberately distinct: a caller without a credential, a caller with a
// broken one, and a caller whose session simply ran out each need a
// different reaction on the client side.
var (
	// ErrMissingAuth: no credential was presented, or the Authorization
	// header is not a well-formed bearer value.
	ErrMissingAuth = errors.New("missing or malformed authorization credential")

	// ErrInvalidToken: the credential is structurally broken, carries a
	// wrong signature or issuer, or declares a non-session purpose.
	ErrInvalidToken = errors.New("session token is invalid")

	// ErrSessionExpired: the credential is well-formed but past its
	// expiry; the caller should refresh the session and retry.
	ErrSessionExpired = errors.New("session is expired")
)

var (
	// ErrSubscriptionRequired is returned when the identity holds none of
	// the products that unlock a feature.
	ErrSubscriptionRequired = errors.New("subscription required")

	// ErrSizeExceeded is returned when a sync payload is larger than the
	// configured maximum. Nothing is written.
	ErrSizeExceeded = errors.New("payload exceeds the maximum sync size")

	// ErrChecksumMismatch is returned when a stored payload no longer
	// hashes to its recorded checksum. Corruption, not a conflict.
	ErrChecksumMismatch = errors.New("stored payload does not match its checksum")

	// ErrTokenTransaction is returned when an atomic ledger write failed
	// in the backing store. The caller may retry.
	ErrTokenTransaction = errors.New("token transaction failed")

	// ErrUnknownResource is returned when an authorize request names a
	// resource absent from the feature registry.
	ErrUnknownResource = errors.New("unknown resource name")

	// ErrUnknownApp is returned when a sync request names an application
	// outside the configured allow-list.
	ErrUnknownApp = errors.New("app is not eligible for sync")
)

// SubscriptionRequiredError reports a failed capability check together
// with the product that would unlock the feature. errors.Is matches
// [ErrSubscriptionRequired].
type SubscriptionRequiredError struct {
	// Missing is the first product the feature asked for, so the caller
	// can point the user at a concrete upgrade.
	Missing string
}

func (e *SubscriptionRequiredError) Error() string {
	if e.Missing == "" {
		return ErrSubscriptionRequired.Error()
	}
	return fmt.Sprintf("subscription required: missing product %q", e.Missing)
}

func (e *SubscriptionRequiredError) Is(target error) bool {
	return target == ErrSubscriptionRequired
}

// SizeExceededError reports a rejected oversized sync payload. errors.Is
// matches [ErrSizeExceeded].
type SizeExceededError struct {
	Size int64
	Max  int64
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds the maximum sync size of %d", e.Size, e.Max)
}

func (e *SizeExceededError) Is(target error) bool {
	return target == ErrSizeExceeded
}

// VersionConflictError reports a sync write that lost the optimistic
// lock, carrying the version currently stored so the writer can
// re-fetch and resolve. errors.Is matches [store.ErrVersionConflict].
type VersionConflictError struct {
	// Version is the stored version at the time the conflict was
	// observed. Zero when the current meta could not be read.
	Version int64
}

func (e *VersionConflictError) Error() string {
	if e.Version == 0 {
		return store.ErrVersionConflict.Error()
	}
	return fmt.Sprintf("sync version conflict: stored version is %d", e.Version)
}

func (e *VersionConflictError) Is(target error) bool {
	return target == store.ErrVersionConflict
}
