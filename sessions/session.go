package sessions

import (
	"time"

	"github.com/jrsteele09/localchef-bazaar/users"
)

// Principal is the signed-in identity as reported by the identity provider.
type Principal struct {
	ID          string `json:"id"`                    // Opaque provider identifier
	Email       string `json:"email"`                 // Provider email
	DisplayName string `json:"displayName,omitempty"` // Provider display name, may be empty
	PhotoURL    string `json:"photoURL,omitempty"`    // Provider avatar, may be empty
}

// Session is the client-side record of an authenticated user. It is created on
// provider sign-in, refreshed whenever the provider credential changes and
// destroyed on sign-out or on a backend authorization failure.
type Session struct {
	Principal   Principal      `json:"principal"`
	Token       string         `json:"token"`                 // Short-lived bearer credential
	TokenExpiry time.Time      `json:"tokenExpiry,omitempty"` // Zero when the provider did not say
	Profile     *users.Profile `json:"profile,omitempty"`     // Backend record, merged after sign-in
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// DisplayName prefers the provider value and falls back to the backend profile.
func (s Session) DisplayName() string {
	if s.Principal.DisplayName != "" {
		return s.Principal.DisplayName
	}
	if s.Profile != nil {
		return s.Profile.DisplayName
	}
	return ""
}

// PhotoURL prefers the provider value and falls back to the backend profile.
func (s Session) PhotoURL() string {
	if s.Principal.PhotoURL != "" {
		return s.Principal.PhotoURL
	}
	if s.Profile != nil {
		return s.Profile.PhotoURL
	}
	return ""
}

// Email returns the provider email, or the profile email if the provider has none.
func (s Session) Email() string {
	if s.Principal.Email != "" {
		return s.Principal.Email
	}
	if s.Profile != nil {
		return s.Profile.Email
	}
	return ""
}

func (s Session) Role() users.Role {
	return s.Profile.EffectiveRole()
}

// TokenExpired reports whether the token expiry is known and has passed.
func (s Session) TokenExpired(now time.Time) bool {
	return !s.TokenExpiry.IsZero() && !now.Before(s.TokenExpiry)
}

// clone copies the session so callers never share the profile pointer with the store.
func (s Session) clone() Session {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
