// Package identity is the boundary to the external identity provider. The
// provider owns credentials and tokens; the rest of the client only sees a
// principal, a bearer token and state change notifications.
package identity

import (
	"context"
	"time"

	"github.com/jrsteele09/localchef-bazaar/sessions"
)

// Registration is the data needed to create a new account
type Registration struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

// ProfileUpdate changes provider-held profile fields. Nil fields are left alone.
type ProfileUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	PhotoURL    *string `json:"photoURL,omitempty"`
}

// Token is a bearer credential issued by the provider
type Token struct {
	Value  string
	Expiry time.Time // Zero when unknown
}

// StateListener receives the signed-in principal, or nil after sign-out.
type StateListener func(principal *sessions.Principal)

// Provider is the identity provider as the client consumes it.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*sessions.Principal, error)

	// FederatedAuthURL returns the URL that starts a federated sign-in. The
	// verifier is a PKCE code verifier the caller keeps for SignInWithFederated.
	FederatedAuthURL(state, verifier string) string
	SignInWithFederated(ctx context.Context, code, verifier string) (*sessions.Principal, error)

	// Register creates the account and signs it in
	Register(ctx context.Context, reg Registration) (*sessions.Principal, error)

	// SignOut ends the provider session. Signing out twice is not an error.
	SignOut(ctx context.Context) error

	UpdateProfile(ctx context.Context, update ProfileUpdate) error
	UpdatePassword(ctx context.Context, newPassword string) error
	SendPasswordReset(ctx context.Context, email string) error

	// Token returns the current bearer token, refreshing it first if it has
	// expired or forceRefresh is set. Without a session it returns errors.ErrNoSession.
	Token(ctx context.Context, forceRefresh bool) (Token, error)

	// OnAuthStateChanged calls fn with the current principal straight away and
	// again after every sign-in, sign-out and token change.
	OnAuthStateChanged(fn StateListener) (unsubscribe func())
}
