package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tacoworks/tollgate/internal/config"
	"github.com/tacoworks/tollgate/internal/logger"
	"github.com/tacoworks/tollgate/internal/store"
	"github.com/tacoworks/tollgate/internal/utils"
	"github.com/tacoworks/tollgate/models"
)

// authService is the concrete implementation of AuthService.
// It verifies session JWTs against the deployment's signing secret and
// resolves the holder's subscriptions through a SubscriptionRepository.
type authService struct {
	// subscriptionRepository reads the externally managed subscription
	// table. Hit on every validation so revocations take effect
	// immediately; token claims are never trusted for entitlements.
	subscriptionRepository store.SubscriptionRepository

	// tokenSecret is the HMAC secret session tokens are verified
	// against. Selected once at process start from the deployment
	// environment, never per request.
	tokenSecret string

	// tokenIssuer is the "iss" claim expected on every session token.
	tokenIssuer string

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs an AuthService wired to the given
// SubscriptionRepository. The effective signing secret for the configured
// environment is captured here, at construction time.
//
// The returned service is safe for concurrent use; all state is read-only
// after construction.
func NewAuthService(subscriptionRepository store.SubscriptionRepository, cfg *config.StructuredConfig, logger *logger.Logger) AuthService {
	return &authService{
		subscriptionRepository: subscriptionRepository,
		tokenSecret:            cfg.TokenSecret(),
		tokenIssuer:            cfg.Auth.TokenIssuer,
		logger:                 logger,
	}
}

// Validate authenticates one request.
//
// authorization is the raw Authorization header value. The credential is
// accepted only when it is a well-formed bearer token, carries a valid
// HMAC signature from the configured secret, names the configured
// issuer, has not expired, and declares the "session" purpose. On
// success the user's current active and trialing subscription products
// are re-read from the backing store and returned deduplicated.
//
// Returns:
//   - ErrMissingAuth for an absent or malformed bearer header.
//   - ErrSessionExpired for a well-formed token past its expiry.
//   - ErrInvalidToken for every other verification failure, including a
//     non-session purpose.
//   - A wrapped storage error if the subscription lookup fails.
func (a *authService) Validate(ctx context.Context, authorization string) (models.Identity, error) {
	log := logger.FromContext(ctx)

	credential, err := utils.ParseBearerToken(authorization)
	if err != nil {
		return models.Identity{}, ErrMissingAuth
	}

	claims, err := utils.ValidateSessionToken(credential, a.tokenSecret, a.tokenIssuer)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug().
				Str("func", "authService.Validate").
				Msg("session token is expired")
			return models.Identity{}, ErrSessionExpired
		}

		log.Warn().
			Str("func", "authService.Validate").
			Err(err).
			Msg("session token failed verification")
		return models.Identity{}, ErrInvalidToken
	}

	if claims.Purpose != models.PurposeSession {
		log.Warn().
			Str("func", "authService.Validate").
			Str("purpose", claims.Purpose).
			Msg("token declares a non-session purpose")
		return models.Identity{}, ErrInvalidToken
	}

	products, err := a.subscriptionRepository.GetProducts(ctx, claims.UserID())
	if err != nil {
		log.Err(err).
			Str("func", "authService.Validate").
			Str("user_id", claims.UserID()).
			Msg("subscription lookup failed")
		return models.Identity{}, fmt.Errorf("subscription lookup failed: %w", err)
	}

	return models.Identity{
		UserID:        claims.UserID(),
		Email:         claims.Email,
		Subscriptions: products,
	}, nil
}

// HasCapability applies the subscription gate for one feature.
//
// An identity holding taco_club is allowed for anything. Otherwise the
// identity's subscription set must intersect requiredProducts. On
// refusal the result names the first requested product as the missing
// one, so callers can surface a concrete upgrade path.
func (a *authService) HasCapability(identity models.Identity, requiredProducts []string) models.Capability {
	if identity.HasProduct(models.ProductTacoClub) {
		return models.Capability{Allowed: true}
	}

	for _, product := range requiredProducts {
		if identity.HasProduct(product) {
			return models.Capability{Allowed: true}
		}
	}

	capability := models.Capability{}
	if len(requiredProducts) > 0 {
		capability.Missing = requiredProducts[0]
	}

	return capability
}

// HasAppSyncSubscription reports whether the subscription set unlocks
// sync for app: taco_club and sync_all unlock every application, and
// sync_{app} unlocks that application alone.
func (a *authService) HasAppSyncSubscription(subscriptions []string, app string) bool {
	for _, product := range subscriptions {
		switch product {
		case models.ProductTacoClub, models.ProductSyncAll, models.ProductSyncPrefix + app:
			return true
		}
	}

	return false
}
