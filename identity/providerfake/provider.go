// Package providerfake is an in-memory identity provider for tests and local development.
package providerfake

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/localchef-bazaar/identity"
	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/internal/utils"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
	"golang.org/x/oauth2"
)

const (
	issuer          = "providerfake"
	defaultTokenTTL = time.Hour
	authorizeURL    = "https://accounts.providerfake.test/authorize"
)

var _ identity.Provider = (*Provider)(nil)

type account struct {
	principal    sessions.Principal
	passwordHash string // Empty for federated accounts
}

// Provider keeps accounts in memory and issues HS256 tokens
type Provider struct {
	lock      sync.Mutex
	accounts  map[string]*account // Keyed by lower-cased email
	current   *account
	token     identity.Token
	resets    []string
	key       []byte
	ttl       time.Duration
	now       func() time.Time
	listeners identity.Listeners
}

type Option func(*Provider)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(p *Provider) {
		p.now = nowFunc
	}
}

func WithTokenTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.ttl = ttl
	}
}

func WithSigningKey(key []byte) Option {
	return func(p *Provider) {
		p.key = key
	}
}

func New(opts ...Option) *Provider {
	p := &Provider{
		accounts: make(map[string]*account),
		key:      []byte(uuid.NewString()),
		ttl:      defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AddUser creates an account without signing it in
func (p *Provider) AddUser(email, password, displayName string) (sessions.Principal, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	acc, err := p.createLocked(email, password, displayName, "")
	if err != nil {
		return sessions.Principal{}, err
	}
	return acc.principal, nil
}

func (p *Provider) createLocked(email, password, displayName, photoURL string) (*account, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return nil, errors.Wrapf(errors.ErrValidation, "email is required")
	}
	if _, exists := p.accounts[key]; exists {
		return nil, errors.Wrapf(errors.ErrUserExists, "register %s", email)
	}

	acc := &account{principal: sessions.Principal{
		ID:          uuid.NewString(),
		Email:       key,
		DisplayName: displayName,
		PhotoURL:    photoURL,
	}}
	if password != "" {
		if err := users.ValidatePasswordStrength(password); err != nil {
			return nil, errors.Wrapf(errors.ErrWeakPassword, "%v", err)
		}
		hash, err := users.HashPassword(password)
		if err != nil {
			return nil, err
		}
		acc.passwordHash = hash
	}
	p.accounts[key] = acc
	return acc, nil
}

func (p *Provider) SignIn(_ context.Context, email, password string) (*sessions.Principal, error) {
	p.lock.Lock()
	acc, ok := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acc.passwordHash == "" || !users.CheckPasswordHash(password, acc.passwordHash) {
		p.lock.Unlock()
		return nil, errors.ErrInvalidCredentials
	}
	principal, err := p.signInLocked(acc)
	p.lock.Unlock()
	if err != nil {
		return nil, err
	}

	p.listeners.Notify(principal)
	return principal, nil
}

func (p *Provider) FederatedAuthURL(state, verifier string) string {
	q := url.Values{}
	q.Set("state", state)
	q.Set("code_challenge", oauth2.S256ChallengeFromVerifier(verifier))
	q.Set("code_challenge_method", "S256")
	return authorizeURL + "?" + q.Encode()
}

// SignInWithFederated treats code as the email of the federated account and
// creates the account on first use.
func (p *Provider) SignInWithFederated(_ context.Context, code, verifier string) (*sessions.Principal, error) {
	if verifier == "" {
		return nil, errors.Wrapf(errors.ErrInvalidCredentials, "missing code verifier")
	}

	p.lock.Lock()
	acc, ok := p.accounts[strings.ToLower(strings.TrimSpace(code))]
	if !ok {
		var err error
		name, _, _ := strings.Cut(code, "@")
		if acc, err = p.createLocked(code, "", name, ""); err != nil {
			p.lock.Unlock()
			return nil, err
		}
	}
	principal, err := p.signInLocked(acc)
	p.lock.Unlock()
	if err != nil {
		return nil, err
	}

	p.listeners.Notify(principal)
	return principal, nil
}

func (p *Provider) Register(_ context.Context, reg identity.Registration) (*sessions.Principal, error) {
	if reg.Password == "" {
		return nil, errors.Wrapf(errors.ErrWeakPassword, "password is required")
	}

	p.lock.Lock()
	acc, err := p.createLocked(reg.Email, reg.Password, reg.DisplayName, reg.PhotoURL)
	if err != nil {
		p.lock.Unlock()
		return nil, err
	}
	principal, err := p.signInLocked(acc)
	p.lock.Unlock()
	if err != nil {
		return nil, err
	}

	p.listeners.Notify(principal)
	return principal, nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.lock.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.token = identity.Token{}
	p.lock.Unlock()

	if wasSignedIn {
		p.listeners.Notify(nil)
	}
	return nil
}

func (p *Provider) UpdateProfile(_ context.Context, update identity.ProfileUpdate) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.current == nil {
		return errors.ErrNoSession
	}
	if update.DisplayName != nil {
		p.current.principal.DisplayName = utils.Value(update.DisplayName)
	}
	if update.PhotoURL != nil {
		p.current.principal.PhotoURL = utils.Value(update.PhotoURL)
	}
	return nil
}

func (p *Provider) UpdatePassword(_ context.Context, newPassword string) error {
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return errors.Wrapf(errors.ErrWeakPassword, "%v", err)
	}
	hash, err := users.HashPassword(newPassword)
	if err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.current == nil {
		return errors.ErrNoSession
	}
	p.current.passwordHash = hash
	return nil
}

func (p *Provider) SendPasswordReset(_ context.Context, email string) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := p.accounts[key]; !ok {
		return errors.Wrapf(errors.ErrUserNotFound, "password reset for %s", email)
	}
	p.resets = append(p.resets, key)
	return nil
}

func (p *Provider) Token(_ context.Context, forceRefresh bool) (identity.Token, error) {
	p.lock.Lock()
	if p.current == nil {
		p.lock.Unlock()
		return identity.Token{}, errors.ErrNoSession
	}
	if !forceRefresh && p.now().Before(p.token.Expiry) {
		tok := p.token
		p.lock.Unlock()
		return tok, nil
	}
	tok, principal, err := p.rotateLocked()
	p.lock.Unlock()
	if err != nil {
		return identity.Token{}, err
	}

	p.listeners.Notify(principal)
	return tok, nil
}

// RotateToken issues a new token for the signed-in account, as a provider
// refresh would, and notifies listeners.
func (p *Provider) RotateToken() (identity.Token, error) {
	return p.Token(context.Background(), true)
}

func (p *Provider) OnAuthStateChanged(fn identity.StateListener) func() {
	p.lock.Lock()
	var current *sessions.Principal
	if p.current != nil {
		c := p.current.principal
		current = &c
	}
	p.lock.Unlock()

	unsubscribe := p.listeners.Add(fn)
	fn(current)
	return unsubscribe
}

// PasswordResets returns the emails a password reset was requested for
func (p *Provider) PasswordResets() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string(nil), p.resets...)
}

func (p *Provider) signInLocked(acc *account) (*sessions.Principal, error) {
	p.current = acc
	_, principal, err := p.rotateLocked()
	return principal, err
}

func (p *Provider) rotateLocked() (identity.Token, *sessions.Principal, error) {
	now := p.now()
	expiry := now.Add(p.ttl)
	principal := p.current.principal

	claims := identity.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.NewString(),
		},
		Email:   principal.Email,
		Name:    principal.DisplayName,
		Picture: principal.PhotoURL,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return identity.Token{}, nil, errors.Wrapf(err, "sign token")
	}

	p.token = identity.Token{Value: signed, Expiry: expiry}
	return p.token, &principal, nil
}
