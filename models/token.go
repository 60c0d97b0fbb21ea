package models

import "github.com/golang-jwt/jwt/v5"

// PurposeSession is the only token purpose accepted by the gate.
// Tokens minted for any other purpose (password reset, email
// verification, API keys) must never grant session access.
const PurposeSession = "session"

// SessionClaims is the claim set of a session JWT.
//
// It embeds [jwt.RegisteredClaims] for the standard claim set
// (sub, exp, iat, iss) and adds the fields the identity provider
// stamps into every session token.
type SessionClaims struct {
	// Email is the user's email address at token issue time.
	Email string `json:"email,omitempty"`

	// Purpose declares what the token is for. Validation rejects
	// anything other than [PurposeSession].
	Purpose string `json:"purpose"`

	jwt.RegisteredClaims
}

// UserID returns the owner identifier carried in the "sub" claim.
func (c *SessionClaims) UserID() string {
	return c.Subject
}
