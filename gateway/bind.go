package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/rs/zerolog/log"
)

const DefaultLoginRoute = "/login"

// Navigator moves the user to another route of the application
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a plain function to a Navigator
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) {
	f(route)
}

// SessionStore is the part of the session store the binding needs
type SessionStore interface {
	Current() (sessions.Session, bool)
	Clear()
	Subscribe(fn sessions.Listener) func()
}

var _ SessionStore = (*sessions.Store)(nil)

type BindOption func(*binding)

// WithLoginRoute sets the route the user is sent to when the backend rejects the session
func WithLoginRoute(route string) BindOption {
	return func(b *binding) {
		b.loginRoute = route
	}
}

// WithSignOut runs fn to sign out of the identity provider before the local session is cleared
func WithSignOut(fn func(ctx context.Context) error) BindOption {
	return func(b *binding) {
		b.signOut = fn
	}
}

type binding struct {
	client     *Client
	store      SessionStore
	nav        Navigator
	loginRoute string
	signOut    func(ctx context.Context) error

	lock   sync.Mutex
	closed bool
	reqID  int
	respID int
}

// Bind attaches the session policy to client:
//   - every request carries "Authorization: Bearer <token>" for the session
//     current at send time, and no credential without a session;
//   - a 401 or 403 signs out, clears the store and navigates to the login
//     route once per failed request, and the original error is still returned;
//   - any other failure passes through untouched.
//
// The interceptor pair is re-registered on every session change, ejecting the
// previous pair first. The returned function removes the binding.
func Bind(client *Client, store SessionStore, nav Navigator, opts ...BindOption) (unbind func()) {
	b := &binding{
		client:     client,
		store:      store,
		nav:        nav,
		loginRoute: DefaultLoginRoute,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.register()
	unsubscribe := store.Subscribe(func(sessions.Event) {
		b.register()
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			b.eject()
		})
	}
}

// register replaces the current pair, if any, with a fresh one
func (b *binding) register() {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.closed {
		return
	}
	b.reqID, b.respID = b.client.interceptors.swap(b.reqID, b.respID, b.attachToken, b.handleResponse)
}

func (b *binding) eject() {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.client.interceptors.EjectRequest(b.reqID)
	b.client.interceptors.EjectResponse(b.respID)
	b.reqID, b.respID = 0, 0
	b.closed = true
}

func (b *binding) attachToken(req *http.Request) error {
	session, ok := b.store.Current()
	if !ok || session.Token == "" {
		req.Header.Del("Authorization")
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+session.Token)
	return nil
}

func (b *binding) handleResponse(req *http.Request, _ *http.Response, err error) error {
	if !IsAuthorizationFailure(err) {
		return err
	}
	b.expire(req.Context())
	return err
}

// expire ends the session after the backend rejected it. Provider sign-out
// failures are logged; the local session is cleared regardless.
func (b *binding) expire(ctx context.Context) {
	if b.signOut != nil {
		if err := b.signOut(context.WithoutCancel(ctx)); err != nil {
			log.Err(err).Msg("identity provider sign-out failed during session expiry")
		}
	}
	b.store.Clear()
	b.client.metrics.RecordSessionExpiry()
	b.client.logger.Info().Str("route", b.loginRoute).Msg("session rejected by backend, redirecting to sign-in")
	if b.nav != nil {
		b.nav.Navigate(b.loginRoute)
	}
}
