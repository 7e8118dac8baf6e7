// Package auth keeps the session store in step with the identity provider and
// the marketplace backend's user record.
package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/localchef-bazaar/identity"
	"github.com/jrsteele09/localchef-bazaar/images"
	apperrors "github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/internal/utils"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// ProfileSyncer records a principal with the backend and returns the stored profile
type ProfileSyncer interface {
	UpsertUser(ctx context.Context, p sessions.Principal) (*users.Profile, error)
}

var _ ProfileSyncer = (*marketplace.Client)(nil)

// FederatedLogin is an in-flight federated sign-in. State and Verifier must be
// kept until the provider redirects back with a code.
type FederatedLogin struct {
	URL      string
	State    string
	Verifier string
}

// Service provides sign-in, registration and account operations on top of an
// identity provider, and owns the writes to the session store.
type Service struct {
	provider identity.Provider
	store    *sessions.Store
	backend  ProfileSyncer
	uploader images.Uploader
	nowTime  func() time.Time

	lock     sync.Mutex
	fetching map[string]bool // Principals whose token is being fetched
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithUploader sets where registration photos are uploaded
func WithUploader(u images.Uploader) ServiceOption {
	return func(s *Service) {
		s.uploader = u
	}
}

// NewService initializes a Service. backend may be nil, in which case sessions
// carry no backend profile.
func NewService(provider identity.Provider, store *sessions.Store, backend ProfileSyncer, options ...ServiceOption) (*Service, error) {
	if provider == nil {
		return nil, errors.New("[NewService] provider is required")
	}
	if store == nil {
		return nil, errors.New("[NewService] store is required")
	}

	s := &Service{
		provider: provider,
		store:    store,
		backend:  backend,
		nowTime:  time.Now,
		fetching: make(map[string]bool),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Start follows the provider's auth state until the returned function is
// called. The provider reports its current state straight away, so the store
// is resolved when Start returns.
func (s *Service) Start(ctx context.Context) (stop func()) {
	return s.provider.OnAuthStateChanged(func(principal *sessions.Principal) {
		s.onAuthStateChanged(ctx, principal)
	})
}

func (s *Service) onAuthStateChanged(ctx context.Context, principal *sessions.Principal) {
	defer s.store.MarkResolved()

	if principal == nil {
		s.store.Clear()
		return
	}

	// Token notifies when it refreshes, which lands back here. The outer call
	// stores the token, so the nested notification is dropped.
	if !s.beginFetch(principal.ID) {
		return
	}
	tok, err := s.provider.Token(ctx, false)
	s.endFetch(principal.ID)
	if err != nil {
		log.Err(err).Str("principal", principal.ID).Msg("failed to get token for signed-in principal")
		s.store.Clear()
		return
	}

	next := sessions.Session{
		Principal:   *principal,
		Token:       tok.Value,
		TokenExpiry: tok.Expiry,
	}
	if prev, ok := s.store.Current(); ok && prev.Principal.ID == principal.ID {
		next.Principal.DisplayName = utils.Coalesce(principal.DisplayName, prev.Principal.DisplayName)
		next.Principal.PhotoURL = utils.Coalesce(principal.PhotoURL, prev.Principal.PhotoURL)
		next.Profile = prev.Profile
	}
	s.store.Set(next)

	s.syncProfile(ctx, *principal)
}

func (s *Service) beginFetch(principalID string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.fetching[principalID] {
		return false
	}
	s.fetching[principalID] = true
	return true
}

func (s *Service) endFetch(principalID string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.fetching, principalID)
}

// syncProfile upserts the principal with the backend and merges the stored
// profile into the session. Failures are logged; the session stays usable.
func (s *Service) syncProfile(ctx context.Context, principal sessions.Principal) {
	if s.backend == nil {
		return
	}
	profile, err := s.backend.UpsertUser(ctx, principal)
	if err != nil {
		log.Err(err).Str("principal", principal.ID).Msg("error syncing user with backend")
		return
	}

	s.store.Update(func(session *sessions.Session) {
		if session.Principal.ID != principal.ID {
			return
		}
		prevProfile := session.Profile
		session.Profile = profile
		if prevProfile != nil && profile.Address == "" {
			profile.Address = prevProfile.Address
		}
		session.Principal.DisplayName = utils.Coalesce(principal.DisplayName, profile.DisplayName, session.Principal.DisplayName)
		session.Principal.PhotoURL = utils.Coalesce(principal.PhotoURL, profile.PhotoURL, session.Principal.PhotoURL)
	})
}

// SignIn signs in with email and password and returns the resulting session
func (s *Service) SignIn(ctx context.Context, email, password string) (sessions.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return sessions.Session{}, errors.Wrap(apperrors.ErrValidation, "[Service.SignIn] email and password are required")
	}
	principal, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.SignIn] provider sign-in")
	}
	return s.sessionFor(principal, "[Service.SignIn]")
}

// BeginFederated starts a federated sign-in with a fresh state and PKCE verifier
func (s *Service) BeginFederated() FederatedLogin {
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	return FederatedLogin{
		URL:      s.provider.FederatedAuthURL(state, verifier),
		State:    state,
		Verifier: verifier,
	}
}

// CompleteFederated finishes a federated sign-in with the code and state the
// provider redirected back with.
func (s *Service) CompleteFederated(ctx context.Context, login FederatedLogin, state, code string) (sessions.Session, error) {
	if state != login.State {
		return sessions.Session{}, errors.Wrap(apperrors.ErrInvalidCredentials, "[Service.CompleteFederated] state mismatch")
	}
	principal, err := s.provider.SignInWithFederated(ctx, code, login.Verifier)
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.CompleteFederated] provider sign-in")
	}
	return s.sessionFor(principal, "[Service.CompleteFederated]")
}

// Register validates the form, uploads the photo, creates the account and
// sets its profile. The new account is signed in.
func (s *Service) Register(ctx context.Context, reg users.Registration) (sessions.Session, error) {
	if err := reg.Validate(); err != nil {
		return sessions.Session{}, err
	}

	photoURL := reg.PhotoURL
	if reg.Photo != nil {
		if s.uploader == nil {
			return sessions.Session{}, errors.Wrap(apperrors.ErrUnsupported, "[Service.Register] no image uploader configured")
		}
		url, err := s.uploader.Upload(ctx, images.NewKey("profiles", reg.PhotoName), reg.Photo)
		if err != nil {
			return sessions.Session{}, errors.Wrap(err, "[Service.Register] upload photo")
		}
		photoURL = url
	}

	principal, err := s.provider.Register(ctx, identity.Registration{
		Email:       strings.TrimSpace(reg.Email),
		Password:    reg.Password,
		DisplayName: strings.TrimSpace(reg.Name),
		PhotoURL:    photoURL,
	})
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.Register] create account")
	}

	if err := s.UpdateProfile(ctx, strings.TrimSpace(reg.Name), photoURL); err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.Register] set profile")
	}

	address := strings.TrimSpace(reg.Address)
	s.store.Update(func(session *sessions.Session) {
		if session.Profile == nil {
			session.Profile = &users.Profile{UID: session.Principal.ID, Email: session.Principal.Email}
		}
		if session.Profile.Address == "" {
			session.Profile.Address = address
		}
	})
	return s.sessionFor(principal, "[Service.Register]")
}

// SignOut ends the provider session and clears the store. Signing out twice is harmless.
func (s *Service) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.store.Clear()
	if err != nil {
		return errors.Wrap(err, "[Service.SignOut] provider sign-out")
	}
	return nil
}

// UpdateProfile changes the display name and photo. Empty values are left unchanged.
func (s *Service) UpdateProfile(ctx context.Context, displayName, photoURL string) error {
	update := identity.ProfileUpdate{
		DisplayName: utils.PtrIfSet(displayName),
		PhotoURL:    utils.PtrIfSet(photoURL),
	}
	if err := s.provider.UpdateProfile(ctx, update); err != nil {
		return errors.Wrap(err, "[Service.UpdateProfile] provider update")
	}

	s.store.Update(func(session *sessions.Session) {
		session.Principal.DisplayName = utils.Coalesce(displayName, session.Principal.DisplayName)
		session.Principal.PhotoURL = utils.Coalesce(photoURL, session.Principal.PhotoURL)
		if session.Profile != nil {
			session.Profile.DisplayName = utils.Coalesce(displayName, session.Profile.DisplayName)
			session.Profile.PhotoURL = utils.Coalesce(photoURL, session.Profile.PhotoURL)
		}
	})
	return nil
}

func (s *Service) UpdatePassword(ctx context.Context, newPassword string) error {
	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return errors.Wrap(apperrors.ErrWeakPassword, err.Error())
	}
	if err := s.provider.UpdatePassword(ctx, newPassword); err != nil {
		return errors.Wrap(err, "[Service.UpdatePassword] provider update")
	}
	return nil
}

// ResetPassword asks the provider to email a password reset link
func (s *Service) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return errors.Wrap(apperrors.ErrValidation, "[Service.ResetPassword] email is required")
	}
	if err := s.provider.SendPasswordReset(ctx, strings.TrimSpace(email)); err != nil {
		return errors.Wrap(err, "[Service.ResetPassword] provider reset")
	}
	return nil
}

// RefreshToken fetches a new token from the provider and stores it in the session
func (s *Service) RefreshToken(ctx context.Context) (sessions.Session, error) {
	current, ok := s.store.Current()
	if !ok {
		return sessions.Session{}, apperrors.ErrNoSession
	}
	tok, err := s.provider.Token(ctx, true)
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.RefreshToken] provider token")
	}

	s.store.Update(func(session *sessions.Session) {
		if session.Principal.ID != current.Principal.ID {
			return
		}
		session.Token = tok.Value
		session.TokenExpiry = tok.Expiry
	})
	return s.sessionFor(&current.Principal, "[Service.RefreshToken]")
}

// EnsureFresh refreshes the token when it has expired
func (s *Service) EnsureFresh(ctx context.Context) (sessions.Session, error) {
	current, ok := s.store.Current()
	if !ok {
		return sessions.Session{}, apperrors.ErrNoSession
	}
	if !current.TokenExpired(s.nowTime()) {
		return current, nil
	}
	return s.RefreshToken(ctx)
}

func (s *Service) sessionFor(principal *sessions.Principal, op string) (sessions.Session, error) {
	current, ok := s.store.Current()
	if !ok {
		return sessions.Session{}, errors.Wrap(apperrors.ErrNoSession, op+" session not established, is the service started")
	}
	if current.Principal.ID != principal.ID {
		return sessions.Session{}, errors.Wrap(apperrors.ErrSessionMismatch, op)
	}
	return current, nil
}
