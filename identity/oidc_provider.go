package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/localchef-bazaar/gateway"
	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// OIDCConfig configures an OIDCProvider
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Account management endpoints, outside the OIDC standard
	SignupURL         string
	PasswordResetURL  string
	ProfileURL        string
	ChangePasswordURL string

	HTTPClient *http.Client
}

var _ Provider = (*OIDCProvider)(nil)

// OIDCProvider talks to an OpenID Connect provider. Tokens are obtained with
// the password grant or a PKCE authorization code exchange and refreshed with
// the refresh token.
type OIDCProvider struct {
	cfg        OIDCConfig
	provider   *oidc.Provider
	oauth2     *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	httpClient *http.Client

	lock      sync.RWMutex
	token     *oauth2.Token
	principal *sessions.Principal
	listeners Listeners
}

// NewOIDCProvider runs OIDC discovery against the issuer
func NewOIDCProvider(ctx context.Context, cfg OIDCConfig) (*OIDCProvider, error) {
	if cfg.IssuerURL == "" {
		return nil, fmt.Errorf("[NewOIDCProvider] issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("[NewOIDCProvider] client ID is required")
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}

	provider, err := oidc.NewProvider(oidc.ClientContext(ctx, hc), cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &OIDCProvider{
		cfg:      cfg,
		provider: provider,
		oauth2: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		httpClient: hc,
	}, nil
}

func (p *OIDCProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func (p *OIDCProvider) SignIn(ctx context.Context, email, password string) (*sessions.Principal, error) {
	tok, err := p.oauth2.PasswordCredentialsToken(p.clientContext(ctx), email, password)
	if err != nil {
		return nil, mapGrantError(err)
	}
	return p.adopt(ctx, tok)
}

func (p *OIDCProvider) FederatedAuthURL(state, verifier string) string {
	return p.oauth2.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
}

func (p *OIDCProvider) SignInWithFederated(ctx context.Context, code, verifier string) (*sessions.Principal, error) {
	tok, err := p.oauth2.Exchange(p.clientContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", mapGrantError(err))
	}
	return p.adopt(ctx, tok)
}

// adopt verifies the ID token, keeps the token set and announces the principal
func (p *OIDCProvider) adopt(ctx context.Context, tok *oauth2.Token) (*sessions.Principal, error) {
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok {
		return nil, errors.ErrNoIDToken
	}
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidToken, "ID token verification failed: %v", err)
	}

	var claims struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	principal := &sessions.Principal{
		ID:          claims.Sub,
		Email:       claims.Email,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}

	p.lock.Lock()
	p.token = tok
	p.principal = principal
	p.lock.Unlock()

	p.listeners.Notify(copyPrincipal(principal))
	return copyPrincipal(principal), nil
}

// Register creates the account at the signup endpoint, then signs in with it
func (p *OIDCProvider) Register(ctx context.Context, reg Registration) (*sessions.Principal, error) {
	body := map[string]string{
		"email":       reg.Email,
		"password":    reg.Password,
		"displayName": reg.DisplayName,
		"photoURL":    reg.PhotoURL,
	}
	if err := p.postJSON(ctx, p.cfg.SignupURL, "", body); err != nil {
		if gateway.StatusCode(err) == http.StatusConflict {
			return nil, errors.Wrapf(errors.ErrUserExists, "register %s", reg.Email)
		}
		return nil, fmt.Errorf("register: %w", err)
	}
	return p.SignIn(ctx, reg.Email, reg.Password)
}

func (p *OIDCProvider) SignOut(_ context.Context) error {
	p.lock.Lock()
	wasSignedIn := p.principal != nil
	p.token = nil
	p.principal = nil
	p.lock.Unlock()

	if wasSignedIn {
		p.listeners.Notify(nil)
	}
	return nil
}

// UpdateProfile saves the fields at the profile endpoint and reloads the
// principal from the userinfo endpoint.
func (p *OIDCProvider) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	tok, err := p.Token(ctx, false)
	if err != nil {
		return err
	}
	if err := p.postJSON(ctx, p.cfg.ProfileURL, tok.Value, update); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	p.lock.RLock()
	current := p.token
	p.lock.RUnlock()
	if current == nil {
		return errors.ErrNoSession
	}

	info, err := p.provider.UserInfo(p.clientContext(ctx), oauth2.StaticTokenSource(current))
	if err != nil {
		log.Err(err).Msg("failed to reload user info after profile update")
		return nil
	}
	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := info.Claims(&claims); err != nil {
		log.Err(err).Msg("failed to read user info claims")
		return nil
	}

	p.lock.Lock()
	if p.principal != nil {
		p.principal.Email = info.Email
		p.principal.DisplayName = claims.Name
		p.principal.PhotoURL = claims.Picture
	}
	p.lock.Unlock()
	return nil
}

func (p *OIDCProvider) UpdatePassword(ctx context.Context, newPassword string) error {
	tok, err := p.Token(ctx, false)
	if err != nil {
		return err
	}
	if err := p.postJSON(ctx, p.cfg.ChangePasswordURL, tok.Value, map[string]string{"password": newPassword}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (p *OIDCProvider) SendPasswordReset(ctx context.Context, email string) error {
	if err := p.postJSON(ctx, p.cfg.PasswordResetURL, "", map[string]string{"email": email}); err != nil {
		return fmt.Errorf("send password reset: %w", err)
	}
	return nil
}

func (p *OIDCProvider) Token(ctx context.Context, forceRefresh bool) (Token, error) {
	p.lock.RLock()
	current := p.token
	p.lock.RUnlock()

	if current == nil {
		return Token{}, errors.ErrNoSession
	}
	if current.Valid() && !forceRefresh {
		return Token{Value: current.AccessToken, Expiry: current.Expiry}, nil
	}
	if current.RefreshToken == "" {
		return Token{}, errors.ErrSessionExpired
	}

	// A token with only the refresh token set always refreshes
	next, err := p.oauth2.TokenSource(p.clientContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		return Token{}, errors.Wrapf(errors.ErrSessionExpired, "refresh token: %v", err)
	}
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}

	p.lock.Lock()
	p.token = next
	principal := copyPrincipal(p.principal)
	p.lock.Unlock()

	if principal != nil {
		p.listeners.Notify(principal)
	}
	return Token{Value: next.AccessToken, Expiry: next.Expiry}, nil
}

func (p *OIDCProvider) OnAuthStateChanged(fn StateListener) func() {
	p.lock.RLock()
	current := copyPrincipal(p.principal)
	p.lock.RUnlock()

	unsubscribe := p.listeners.Add(fn)
	fn(current)
	return unsubscribe
}

func (p *OIDCProvider) postJSON(ctx context.Context, url, bearer string, body any) error {
	if url == "" {
		return errors.ErrUnsupported
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()
	return gateway.CheckError(resp)
}

// mapGrantError turns an invalid_grant from the token endpoint into ErrInvalidCredentials
func mapGrantError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		return errors.Wrapf(errors.ErrInvalidCredentials, "%s", re.ErrorDescription)
	}
	return err
}

func copyPrincipal(p *sessions.Principal) *sessions.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
