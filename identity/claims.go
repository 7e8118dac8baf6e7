package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/sessions"
)

// TokenClaims are the claims the client reads from a provider token
type TokenClaims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Principal builds a principal from the token subject and profile claims
func (c *TokenClaims) Principal() *sessions.Principal {
	return &sessions.Principal{
		ID:          c.Subject,
		Email:       c.Email,
		DisplayName: c.Name,
		PhotoURL:    c.Picture,
	}
}

// Expiry returns the token expiry, or the zero time if the token has none
func (c *TokenClaims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ParseTokenClaims reads the claims of a JWT without verifying its signature.
// It is only for local bookkeeping; the backend does the verification.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "parse token claims: %v", err)
	}
	return claims, nil
}
