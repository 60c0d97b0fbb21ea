package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tacoworks/tollgate/models"
)

// GenerateSessionToken creates a signed HMAC-SHA256 session JWT.
//
// The token carries the standard claims (iss, sub, iat, exp) plus the
// email and the "session" purpose that [ValidateSessionToken] requires.
// The real identity provider mints production tokens; this generator
// exists for tests and for the dev CLI.
//
// Parameters:
//
//	issuer   - identifier of the token issuer (e.g. service name)
//	userID   - ID of the user the token is issued for
//	email    - email stamped into the claims, may be empty
//	ttl      - how long the token remains valid
//	signKey  - secret key used to sign the token with HMAC-SHA256
//
// Returns the compact signed string, or an error if any required
// parameter is empty or signing fails.
func GenerateSessionToken(issuer, userID, email string, ttl time.Duration, signKey string) (string, error) {
	if issuer == "" || userID == "" || ttl == 0 || signKey == "" {
		return "", errors.New("invalid params for generating session token")
	}

	now := time.Now()
	claims := &models.SessionClaims{
		Email:   email,
		Purpose: models.PurposeSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing session token: %w", err)
	}

	return tokenString, nil
}

// ValidateSessionToken verifies the given session JWT and extracts its
// claims.
//
// Validation includes:
//   - HMAC signing method check (anything else is rejected)
//   - signature verification against signKey
//   - issuer (iss) claim check against issuer
//   - expiration (exp) claim check
//   - subject (sub) claim presence
//
// The underlying jwt errors are preserved in the wrap chain, so callers
// can distinguish expiry via errors.Is(err, jwt.ErrTokenExpired).
//
// Note: the purpose claim is NOT checked here; callers decide what
// purposes they accept. The auth service requires "session".
func ValidateSessionToken(tokenString, signKey, issuer string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(signKey), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("empty subject error")
	}

	return claims, nil
}

// ParseBearerToken extracts the credential from an Authorization header
// of the form "Bearer <token>".
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
