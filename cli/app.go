package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/jrsteele09/localchef-bazaar/auth"
	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/jrsteele09/localchef-bazaar/gateway"
	"github.com/jrsteele09/localchef-bazaar/identity"
	"github.com/jrsteele09/localchef-bazaar/identity/providerfake"
	"github.com/jrsteele09/localchef-bazaar/images"
	"github.com/jrsteele09/localchef-bazaar/internal/config"
	apperrors "github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/sessions/repofile"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

const (
	providerOIDC = "oidc"
	providerFake = "fake"
)

// Settings are the resolved values of flags, environment and profile
type Settings struct {
	APIURL       string
	PublicAPIURL string
	Provider     string
	IssuerURL    string
	ClientID     string
	DataFolder   string
	Output       string
}

// App is the wired client behind every command: one session store persisted
// to the data folder, a session-bound gateway for the marketplace and an
// unbound one for its open endpoints.
type App struct {
	cfg      config.Config
	settings Settings
	errOut   io.Writer

	store    *sessions.Store
	api      *marketplace.Client
	router   *dashboard.Router
	caps     dashboard.Capabilities
	registry *prometheus.Registry
	unbind   func()

	lock        sync.Mutex
	provider    identity.Provider
	authService *auth.Service
}

func newApp(cfg config.Config, settings Settings, provider identity.Provider, errOut io.Writer) (*App, error) {
	repo, err := repofile.New(settings.DataFolder)
	if err != nil {
		return nil, err
	}
	store := sessions.NewStore(sessions.WithRepo(repo))
	if err := store.Restore(); err != nil {
		log.Err(err).Str("path", repo.Path()).Msg("ignoring unreadable saved session")
	}
	// The persisted session is the only auth state a CLI process has
	store.MarkResolved()

	a := &App{
		cfg:      cfg,
		settings: settings,
		errOut:   errOut,
		store:    store,
		caps:     dashboard.DefaultCapabilities(),
		registry: prometheus.NewRegistry(),
		provider: provider,
	}

	metrics := gateway.NewMetrics(a.registry)
	gatewayOpts := []gateway.Option{
		gateway.WithTimeout(cfg.GetRequestTimeout()),
		gateway.WithLogger(log.Logger),
		gateway.WithMetrics(metrics),
		gateway.WithRateLimit(cfg.GetRateLimitRPS(), cfg.GetRateLimitBurst()),
	}
	secure, err := gateway.New(settings.APIURL, gatewayOpts...)
	if err != nil {
		return nil, err
	}
	public, err := gateway.New(settings.PublicAPIURL, gatewayOpts...)
	if err != nil {
		return nil, err
	}

	loginRoute := cfg.GetLoginRoute()
	a.router = dashboard.NewRouter(dashboard.RouteHome, dashboard.WithOnNavigate(func(route string) {
		if route == loginRoute {
			fmt.Fprintln(a.errOut, "Your session has ended. Run 'bazaar login' to sign in again.")
		}
	}))
	a.unbind = gateway.Bind(secure, store, a.router,
		gateway.WithLoginRoute(loginRoute),
		gateway.WithSignOut(a.providerSignOut),
	)

	uploader, err := newUploader(cfg)
	if err != nil {
		return nil, err
	}
	apiOpts := []marketplace.Option{marketplace.WithPublic(public)}
	if uploader != nil {
		apiOpts = append(apiOpts, marketplace.WithUploader(uploader))
	}
	if a.api, err = marketplace.New(secure, apiOpts...); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) Close() {
	a.unbind()
}

// identity returns the identity provider, connecting to it on first use
func (a *App) identity(ctx context.Context) (identity.Provider, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.provider != nil {
		return a.provider, nil
	}

	switch a.settings.Provider {
	case providerFake:
		a.provider = providerfake.New()
	case providerOIDC, "":
		p, err := identity.NewOIDCProvider(ctx, identity.OIDCConfig{
			IssuerURL:         a.settings.IssuerURL,
			ClientID:          a.settings.ClientID,
			ClientSecret:      a.cfg.GetIdentityClientSecret(),
			RedirectURL:       a.cfg.GetIdentityRedirectURL(),
			Scopes:            a.cfg.GetIdentityScopes(),
			SignupURL:         a.cfg.GetIdentitySignupURL(),
			PasswordResetURL:  a.cfg.GetIdentityPasswordResetURL(),
			ProfileURL:        a.cfg.GetIdentityProfileURL(),
			ChangePasswordURL: a.cfg.GetIdentityChangePasswordURL(),
		})
		if err != nil {
			return nil, err
		}
		a.provider = p
	default:
		return nil, fmt.Errorf("unknown identity provider %q: use 'oidc' or 'fake'", a.settings.Provider)
	}
	return a.provider, nil
}

// auth returns the auth service. Starting it reports the provider's state to
// the store, so it is only used by commands that sign in or out.
func (a *App) auth(ctx context.Context) (*auth.Service, error) {
	provider, err := a.identity(ctx)
	if err != nil {
		return nil, err
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.authService == nil {
		svc, err := auth.NewService(provider, a.store, a.api)
		if err != nil {
			return nil, err
		}
		a.authService = svc
	}
	return a.authService, nil
}

func (a *App) providerSignOut(ctx context.Context) error {
	a.lock.Lock()
	provider := a.provider
	a.lock.Unlock()
	if provider == nil {
		return nil
	}
	return provider.SignOut(ctx)
}

// session returns the signed-in session or explains how to get one
func (a *App) session() (*sessions.Session, error) {
	s, ok := a.store.Current()
	if !ok {
		return nil, fmt.Errorf("not signed in, run 'bazaar login': %w", apperrors.ErrNoSession)
	}
	return &s, nil
}

// requireRoute applies the dashboard guard to a command backed by route
func (a *App) requireRoute(route string) (*sessions.Session, error) {
	d := a.caps.Guard(a.store, route)
	switch d.Action {
	case dashboard.Allow:
		return a.session()
	case dashboard.Redirect:
		if d.Route == dashboard.RouteLogin {
			return nil, fmt.Errorf("not signed in, run 'bazaar login': %w", apperrors.ErrNoSession)
		}
		return nil, fmt.Errorf("%s is not available for your role: %w", dashboard.Title(route), apperrors.ErrForbidden)
	}
	return nil, fmt.Errorf("session is still loading")
}

// writeMetrics prints the gateway counters gathered during the command
func (a *App) writeMetrics(w io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			lines = append(lines, fmt.Sprintf("%s%s %s", mf.GetName(), formatLabels(m.GetLabel()), metricValue(m)))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func metricValue(m *dto.Metric) string {
	switch {
	case m.GetCounter() != nil:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case m.GetHistogram() != nil:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%gs", h.GetSampleCount(), h.GetSampleSum())
	case m.GetGauge() != nil:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	}
	return ""
}

func newUploader(cfg config.ImageConfig) (images.Uploader, error) {
	switch cfg.GetImageBackend() {
	case "s3":
		return images.NewS3Uploader(images.S3Config{
			Bucket:          cfg.GetS3Bucket(),
			Region:          cfg.GetS3Region(),
			Endpoint:        cfg.GetS3Endpoint(),
			AccessKeyID:     cfg.GetS3KeyID(),
			SecretAccessKey: cfg.GetS3Secret(),
			PublicBaseURL:   cfg.GetS3PublicBaseURL(),
		})
	case "host", "":
		if cfg.GetImageHostKey() == "" {
			return nil, nil
		}
		return images.NewHostUploader(cfg.GetImageUploadURL(), cfg.GetImageHostKey())
	}
	return nil, fmt.Errorf("unknown image backend %q: use 'host' or 's3'", cfg.GetImageBackend())
}
