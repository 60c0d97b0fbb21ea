package models

// Product identifiers with special meaning to the gate. Every other
// product string is opaque to this system.
const (
	// ProductTacoClub is the all-access subscription: it passes every
	// capability check and its holders are never metered.
	ProductTacoClub = "taco_club"

	// ProductSyncAll unlocks sync for every application.
	ProductSyncAll = "sync_all"

	// ProductSyncPrefix prefixes per-application sync products:
	// "sync_tempo" unlocks sync for the "tempo" app only.
	ProductSyncPrefix = "sync_"
)

// Identity is the authenticated user context derived from a validated
// session credential. It is produced fresh on every request and never
// persisted: the subscription set is re-read from the backing store at
// validation time, so stale claims embedded in the token are ignored.
type Identity struct {
	// UserID is the opaque identifier issued by the external identity
	// provider; it is the "sub" claim of the session token.
	UserID string `json:"user_id"`

	// Email is the user's email address as carried in the token claims.
	Email string `json:"email,omitempty"`

	// Subscriptions is the deduplicated set of active or trialing
	// product identifiers the user currently holds.
	Subscriptions []string `json:"subscriptions"`
}

// HasProduct reports whether the identity holds the given product.
func (i Identity) HasProduct(product string) bool {
	for _, p := range i.Subscriptions {
		if p == product {
			return true
		}
	}
	return false
}
