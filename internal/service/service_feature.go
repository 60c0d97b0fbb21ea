package service

import (
	"context"

	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/models"
)

// featureService is the concrete implementation of FeatureService. It
// owns the gating policy lookup: required products and token costs come
// from the server-side registry keyed by resource name, never from
// request content.
type featureService struct {
	auth   AuthService
	ledger LedgerService

	// features is the registry of gated resources, fixed at startup.
	features map[string]models.FeatureSpec

	logger *logger.Logger
}

// NewFeatureService constructs a FeatureService on top of the auth and
// ledger services, gating the resources listed in features.
func NewFeatureService(auth AuthService, ledger LedgerService, features map[string]models.FeatureSpec, logger *logger.Logger) FeatureService {
	return &featureService{
		auth:     auth,
		ledger:   ledger,
		features: features,
		logger:   logger,
	}
}

// Authorize resolves resourceName against the feature registry and runs
// the matching flow: resources with a token cost go through
// AuthorizeTokenFeature, flat-rate resources through
// AuthorizeSubscriptionFeature.
func (f *featureService) Authorize(ctx context.Context, authorization, resourceName string) (models.Decision, error) {
	log := logger.FromContext(ctx)

	spec, ok := f.features[resourceName]
	if !ok {
		log.Warn().
			Str("func", "featureService.Authorize").
			Str("resource", resourceName).
			Msg("authorize request names an unregistered resource")
		return models.Decision{}, ErrUnknownResource
	}

	request := models.FeatureRequest{
		ResourceName:     resourceName,
		RequiredProducts: spec.RequiredProducts,
		TokenCost:        spec.TokenCost,
	}

	if spec.TokenCost > 0 {
		return f.AuthorizeTokenFeature(ctx, authorization, request)
	}

	return f.AuthorizeSubscriptionFeature(ctx, authorization, request)
}

// AuthorizeTokenFeature runs the metered flow: validate the credential,
// apply the subscription gate, then deduct the token cost. The sequence
// is fixed; a caller failing an earlier step never reaches a later one.
//
// An identity holding taco_club short-circuits after validation: it is
// never metered and the decision reports an unlimited balance. For
// everyone else the decision carries the balance remaining after the
// deduction.
func (f *featureService) AuthorizeTokenFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error) {
	log := logger.FromContext(ctx)

	identity, err := f.auth.Validate(ctx, authorization)
	if err != nil {
		return models.Decision{}, err
	}

	if identity.HasProduct(models.ProductTacoClub) {
		log.Debug().
			Str("func", "featureService.AuthorizeTokenFeature").
			Str("user_id", identity.UserID).
			Str("resource", request.ResourceName).
			Msg("metering bypassed for all-access subscription")
		return models.Decision{Identity: identity, Balance: models.UnlimitedBalance()}, nil
	}

	if capability := f.auth.HasCapability(identity, request.RequiredProducts); !capability.Allowed {
		log.Info().
			Str("func", "featureService.AuthorizeTokenFeature").
			Str("user_id", identity.UserID).
			Str("resource", request.ResourceName).
			Str("missing", capability.Missing).
			Msg("feature refused: no qualifying subscription")
		return models.Decision{}, &SubscriptionRequiredError{Missing: capability.Missing}
	}

	balance, err := f.ledger.Deduct(ctx, identity.UserID, request.TokenCost, request.ResourceName)
	if err != nil {
		return models.Decision{}, err
	}

	return models.Decision{Identity: identity, Balance: models.Metered(balance)}, nil
}

// AuthorizeSubscriptionFeature runs the flat-rate flow: validate the
// credential and apply the subscription gate. The ledger is never
// debited; the decision reports the caller's current balance read as-is
// (unlimited for taco_club holders) so the authorize response keeps one
// shape across both flows.
func (f *featureService) AuthorizeSubscriptionFeature(ctx context.Context, authorization string, request models.FeatureRequest) (models.Decision, error) {
	log := logger.FromContext(ctx)

	identity, err := f.auth.Validate(ctx, authorization)
	if err != nil {
		return models.Decision{}, err
	}

	if identity.HasProduct(models.ProductTacoClub) {
		return models.Decision{Identity: identity, Balance: models.UnlimitedBalance()}, nil
	}

	if capability := f.auth.HasCapability(identity, request.RequiredProducts); !capability.Allowed {
		log.Info().
			Str("func", "featureService.AuthorizeSubscriptionFeature").
			Str("user_id", identity.UserID).
			Str("resource", request.ResourceName).
			Str("missing", capability.Missing).
			Msg("feature refused: no qualifying subscription")
		return models.Decision{}, &SubscriptionRequiredError{Missing: capability.Missing}
	}

	balance, err := f.ledger.GetBalance(ctx, identity.UserID)
	if err != nil {
		return models.Decision{}, err
	}

	return models.Decision{Identity: identity, Balance: models.Metered(balance)}, nil
}
