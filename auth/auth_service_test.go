package auth_test

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/localchef-bazaar/auth"
	"github.com/jrsteele09/localchef-bazaar/identity/providerfake"
	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	fakesessionrepo "github.com/jrsteele09/localchef-bazaar/sessions/repofakes"
	"github.com/jrsteele09/localchef-bazaar/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "Secret1"
	testName     = "Ana"
)

// fakeBackend stands in for the marketplace user endpoint
type fakeBackend struct {
	lock    sync.Mutex
	calls   []sessions.Principal
	failing bool
	role    users.Role
}

func (b *fakeBackend) UpsertUser(_ context.Context, p sessions.Principal) (*users.Profile, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, p)
	if b.failing {
		return nil, fmt.Errorf("backend unavailable")
	}
	return &users.Profile{
		ID:          "db-" + p.ID,
		UID:         p.ID,
		Email:       p.Email,
		DisplayName: "Backend " + p.DisplayName,
		PhotoURL:    "https://img.test/backend.png",
		Role:        b.role,
		Status:      users.StatusActive,
	}, nil
}

func (b *fakeBackend) Calls() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.calls)
}

type fakeUploader struct {
	keys []string
}

func (u *fakeUploader) Upload(_ context.Context, key string, content io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, content)
	u.keys = append(u.keys, key)
	return "https://img.test/" + key, nil
}

// testFixture holds all test dependencies
type testFixture struct {
	now      time.Time
	provider *providerfake.Provider
	repo     *fakesessionrepo.FakeSessionRepo
	store    *sessions.Store
	backend  *fakeBackend
	uploader *fakeUploader
	service  *auth.Service
}

// setupTestFixture creates a started service with one registered account
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		repo:     fakesessionrepo.NewFakeSessionRepo(),
		backend:  &fakeBackend{role: users.RoleChef},
		uploader: &fakeUploader{},
	}
	nowFunc := func() time.Time { return f.now }
	f.provider = providerfake.New(
		providerfake.WithNowTime(nowFunc),
		providerfake.WithTokenTTL(time.Hour),
		providerfake.WithSigningKey([]byte("test-key")),
	)
	_, err := f.provider.AddUser(testEmail, testPassword, testName)
	require.NoError(t, err)

	f.store = sessions.NewStore(sessions.WithRepo(f.repo), sessions.WithNowTime(nowFunc))

	f.service, err = auth.NewService(f.provider, f.store, f.backend,
		auth.WithNowTime(nowFunc),
		auth.WithUploader(f.uploader),
	)
	require.NoError(t, err)

	t.Cleanup(f.service.Start(context.Background()))
	return f
}

func TestNewService(t *testing.T) {
	_, err := auth.NewService(nil, sessions.NewStore(), nil)
	require.Error(t, err)
	_, err = auth.NewService(providerfake.New(), nil, nil)
	require.Error(t, err)
}

func TestService_StartResolvesStore(t *testing.T) {
	store := sessions.NewStore()
	service, err := auth.NewService(providerfake.New(), store, nil)
	require.NoError(t, err)
	require.False(t, store.Resolved())

	stop := service.Start(context.Background())
	defer stop()

	require.True(t, store.Resolved())
	require.Equal(t, sessions.Unauthenticated, store.State())
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		session, err := f.service.SignIn(ctx, testEmail, testPassword)
		require.NoError(t, err)

		require.NotEmpty(t, session.Token)
		require.Equal(t, f.now.Add(time.Hour), session.TokenExpiry)
		require.Equal(t, testName, session.DisplayName())
		require.NotNil(t, session.Profile)
		require.Equal(t, users.RoleChef, session.Role())
		require.Equal(t, 1, f.backend.Calls())

		saves, _ := f.repo.Counts()
		require.Positive(t, saves)
	})

	t.Run("provider values win over the backend", func(t *testing.T) {
		f := setupTestFixture(t)
		session, err := f.service.SignIn(ctx, testEmail, testPassword)
		require.NoError(t, err)
		require.Equal(t, testName, session.Principal.DisplayName)
		require.Equal(t, "https://img.test/backend.png", session.Principal.PhotoURL)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.SignIn(ctx, testEmail, "wrong")
		require.ErrorIs(t, err, errors.ErrInvalidCredentials)
		require.Equal(t, sessions.Unauthenticated, f.store.State())
	})

	t.Run("missing fields", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.SignIn(ctx, " ", "")
		require.ErrorIs(t, err, errors.ErrValidation)
	})

	t.Run("backend failure keeps the session", func(t *testing.T) {
		f := setupTestFixture(t)
		f.backend.failing = true
		session, err := f.service.SignIn(ctx, testEmail, testPassword)
		require.NoError(t, err)
		require.NotEmpty(t, session.Token)
		require.Nil(t, session.Profile)
	})
}

func TestService_ProfileSurvivesTokenRotation(t *testing.T) {
	f := setupTestFixture(t)
	first, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	f.backend.failing = true
	rotated, err := f.service.RefreshToken(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, first.Token, rotated.Token)
	require.NotNil(t, rotated.Profile)
	require.Equal(t, users.RoleChef, rotated.Role())
}

func TestService_ExpiredTokenOnIssue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	provider := providerfake.New(
		providerfake.WithNowTime(func() time.Time { return now }),
		providerfake.WithTokenTTL(0),
	)
	_, err := provider.AddUser(testEmail, testPassword, testName)
	require.NoError(t, err)

	store := sessions.NewStore()
	backend := &fakeBackend{role: users.RoleCustomer}
	service, err := auth.NewService(provider, store, backend)
	require.NoError(t, err)
	t.Cleanup(service.Start(context.Background()))

	session, err := service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, testEmail, session.Email())
	assert.Equal(t, 1, backend.Calls())

	t.Run("refresh settles", func(t *testing.T) {
		refreshed, err := service.RefreshToken(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.Token)
		assert.Equal(t, sessions.Authenticated, store.State())
	})
}

func TestService_EnsureFresh(t *testing.T) {
	f := setupTestFixture(t)
	first, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	same, err := f.service.EnsureFresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.Token, same.Token)

	f.now = f.now.Add(2 * time.Hour)
	fresh, err := f.service.EnsureFresh(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, first.Token, fresh.Token)
	require.True(t, fresh.TokenExpiry.After(f.now))
}

func TestService_SignOut(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, f.service.SignOut(context.Background()))
	require.NoError(t, f.service.SignOut(context.Background()))

	require.Equal(t, sessions.Unauthenticated, f.store.State())
	_, deletes := f.repo.Counts()
	require.Equal(t, 1, deletes)

	_, err = f.service.RefreshToken(context.Background())
	require.ErrorIs(t, err, errors.ErrNoSession)
}

func TestService_ProviderSignOutClearsStore(t *testing.T) {
	f := setupTestFixture(t)
	_, err := f.service.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	require.NoError(t, f.provider.SignOut(context.Background()))
	require.Equal(t, sessions.Unauthenticated, f.store.State())
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	valid := func() users.Registration {
		return users.Registration{
			Name:            "Bob",
			Email:           "bob@example.com",
			Photo:           strings.NewReader("png"),
			PhotoName:       "bob.png",
			Address:         "12 Lake Road",
			Password:        "hunter2",
			ConfirmPassword: "hunter2",
		}
	}

	t.Run("success", func(t *testing.T) {
		f := setupTestFixture(t)
		session, err := f.service.Register(ctx, valid())
		require.NoError(t, err)

		require.Len(t, f.uploader.keys, 1)
		require.Equal(t, "Bob", session.DisplayName())
		require.Equal(t, "https://img.test/"+f.uploader.keys[0], session.Principal.PhotoURL)
		require.Equal(t, "12 Lake Road", session.Profile.Address)
		require.Equal(t, "bob@example.com", session.Email())
	})

	t.Run("mismatched passwords", func(t *testing.T) {
		f := setupTestFixture(t)
		reg := valid()
		reg.ConfirmPassword = "hunter3"
		_, err := f.service.Register(ctx, reg)

		var verrs errors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Equal(t, "Passwords do not match!", verrs.Field("confirmPassword"))
		require.Empty(t, f.uploader.keys)
	})

	t.Run("existing account", func(t *testing.T) {
		f := setupTestFixture(t)
		reg := valid()
		reg.Email = testEmail
		_, err := f.service.Register(ctx, reg)
		require.ErrorIs(t, err, errors.ErrUserExists)
	})
}

func TestService_Federated(t *testing.T) {
	f := setupTestFixture(t)
	login := f.service.BeginFederated()
	require.NotEmpty(t, login.Verifier)

	u, err := url.Parse(login.URL)
	require.NoError(t, err)
	require.Equal(t, login.State, u.Query().Get("state"))
	require.Equal(t, "S256", u.Query().Get("code_challenge_method"))

	_, err = f.service.CompleteFederated(context.Background(), login, "forged", "carol@example.com")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)

	session, err := f.service.CompleteFederated(context.Background(), login, login.State, "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", session.Email())
}

func TestService_AccountManagement(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	_, err := f.service.SignIn(ctx, testEmail, testPassword)
	require.NoError(t, err)

	t.Run("update profile", func(t *testing.T) {
		require.NoError(t, f.service.UpdateProfile(ctx, "Ana Rahman", ""))
		session, ok := f.store.Current()
		require.True(t, ok)
		require.Equal(t, "Ana Rahman", session.Principal.DisplayName)
		require.Equal(t, "Ana Rahman", session.Profile.DisplayName)
		require.Equal(t, "https://img.test/backend.png", session.Principal.PhotoURL)
	})

	t.Run("weak password", func(t *testing.T) {
		require.ErrorIs(t, f.service.UpdatePassword(ctx, "abc"), errors.ErrWeakPassword)
	})

	t.Run("new password signs in", func(t *testing.T) {
		require.NoError(t, f.service.UpdatePassword(ctx, "Changed1"))
		require.NoError(t, f.service.SignOut(ctx))
		_, err := f.service.SignIn(ctx, testEmail, "Changed1")
		require.NoError(t, err)
	})

	t.Run("password reset", func(t *testing.T) {
		require.ErrorIs(t, f.service.ResetPassword(ctx, ""), errors.ErrValidation)
		require.ErrorIs(t, f.service.ResetPassword(ctx, "nobody@example.com"), errors.ErrUserNotFound)
		require.NoError(t, f.service.ResetPassword(ctx, testEmail))
		require.Equal(t, []string{testEmail}, f.provider.PasswordResets())
	})
}
