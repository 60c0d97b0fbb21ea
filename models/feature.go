package models

// FeatureSpec is one entry of the server-side feature registry: the
// policy a resource is gated by. The registry comes from deployment
// configuration, never from request content.
type FeatureSpec struct {
	// RequiredProducts lists the products any one of which unlocks
	// the resource.
	RequiredProducts []string `json:"required_products"`

	// TokenCost is the metered price of one use. Zero means the
	// resource is flat-rate: gated by subscription only, never
	// touching the ledger.
	TokenCost int64 `json:"token_cost"`
}

// FeatureRequest is the resolved authorization input for one resource.
type FeatureRequest struct {
	ResourceName     string
	RequiredProducts []string
	TokenCost        int64
}

// Capability is the outcome of a subscription gate check.
type Capability struct {
	// Allowed reports whether the identity may use the feature.
	Allowed bool

	// Missing names the first requested product when Allowed is
	// false, so the caller can point the user at an upgrade path.
	Missing string
}

// Decision is the outcome of a composite authorization flow: the
// validated identity plus the balance after any deduction.
type Decision struct {
	Identity Identity
	Balance  Balance
}
