package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/localchef-bazaar/cli"
	"github.com/jrsteele09/localchef-bazaar/identity/providerfake"
	"github.com/jrsteele09/localchef-bazaar/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "secret-pw"
)

type testFixture struct {
	server   *httptest.Server
	provider *providerfake.Provider
	dataDir  string
	role     string
	reject   atomic.Bool
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	for _, env := range []string{"API_URL", "PUBLIC_API_URL", "IDENTITY_PROVIDER", "IDENTITY_ISSUER_URL", "IDENTITY_CLIENT_ID", "BAZAAR_OUTPUT", "BAZAAR_PASSWORD"} {
		t.Setenv(env, "")
	}

	f := &testFixture{
		provider: providerfake.New(),
		dataDir:  t.TempDir(),
		role:     "customer",
	}
	_, err := f.provider.AddUser(testEmail, testPassword, "Ada")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, map[string]any{
			"_id":         "u1",
			"email":       body["email"],
			"displayName": body["displayName"],
			"role":        f.role,
			"status":      "active",
		})
	})
	mux.HandleFunc("GET /meals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"totalMeals": 12,
			"meals": []map[string]any{
				{"_id": "m1", "foodName": "Paella", "chefName": "Rosa", "price": 14.5, "rating": 4.5, "deliveryArea": "North"},
				{"_id": "m2", "foodName": "Pho", "chefName": "Minh", "price": 9, "rating": 5, "deliveryArea": "East"},
			},
		})
	})
	mux.HandleFunc("GET /dashboard/myOrders", func(w http.ResponseWriter, r *http.Request) {
		if f.reject.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSON(w, map[string]any{"message": "unauthorized access", "code": "token_expired"})
			return
		}
		writeJSON(w, []map[string]any{
			{"_id": "o1", "mealName": "Paella", "quantity": 2, "price": 29, "orderStatus": "pending", "paymentStatus": "Pending"},
		})
	})
	mux.HandleFunc("POST /create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"url": "https://checkout.example.com/s/1"})
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// run executes one CLI invocation, as a separate process would
func (f *testFixture) run(args ...string) (stdout, stderr string, code int) {
	base := []string{"--api", f.server.URL, "--provider", "fake", "--data-dir", f.dataDir}
	var out, errOut bytes.Buffer
	code = cli.Execute(append(base, args...), &out, &errOut, cli.WithProvider(f.provider))
	return out.String(), errOut.String(), code
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	stdout, stderr, code := f.run("login", "--email", testEmail, "--password", testPassword)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, "Signed in as Ada (ada@example.com)")
}

func TestLogin_SessionPersistsAcrossCommands(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	t.Run("whoami reads the saved session", func(t *testing.T) {
		stdout, stderr, code := f.run("whoami")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "Email:   ada@example.com")
		assert.Contains(t, stdout, "Role:    customer")
		assert.Contains(t, stdout, "Status:  active")
	})

	t.Run("json output", func(t *testing.T) {
		stdout, _, code := f.run("-o", "json", "whoami")
		require.Equal(t, 0, code)
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &v))
		assert.Equal(t, testEmail, v["email"])
		assert.Equal(t, "customer", v["role"])
	})

	t.Run("menu shows the customer section", func(t *testing.T) {
		stdout, _, code := f.run("menu")
		require.Equal(t, 0, code)
		assert.Contains(t, stdout, "Homepage")
		assert.Contains(t, stdout, "My Orders")
		assert.NotContains(t, stdout, "Platform Stats")
	})

	t.Run("orders list", func(t *testing.T) {
		stdout, stderr, code := f.run("orders", "list")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "Paella")
		assert.Contains(t, stdout, "29.00")
	})

	t.Run("orders pay prints the checkout URL", func(t *testing.T) {
		stdout, stderr, code := f.run("orders", "pay", "o1")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "https://checkout.example.com/s/1")
	})

	t.Run("admin sections are refused", func(t *testing.T) {
		_, stderr, code := f.run("stats")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "not available for your role")
	})
}

func TestLogin_WrongPassword(t *testing.T) {
	f := setupTestFixture(t)

	_, stderr, code := f.run("login", "--email", testEmail, "--password", "not-the-password")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error:")

	_, stderr, code = f.run("whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")
}

func TestLogin_PasswordFromStdin(t *testing.T) {
	f := setupTestFixture(t)

	cmd := cli.NewRootCmd(config.New(), cli.WithProvider(f.provider))
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(bytes.NewBufferString(testPassword + "\n"))
	cmd.SetArgs([]string{"--api", f.server.URL, "--provider", "fake", "--data-dir", f.dataDir, "login", "--email", testEmail})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Signed in as Ada")
}

func TestRejectedSessionIsCleared(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.reject.Store(true)

	_, stderr, code := f.run("orders", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Your session has ended. Run 'bazaar login' to sign in again.")
	assert.Contains(t, stderr, "HTTP 401")

	_, err := os.Stat(filepath.Join(f.dataDir, "session.json"))
	assert.True(t, os.IsNotExist(err))

	_, stderr, code = f.run("whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "not signed in")
}

func TestExecute_JSONError(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.reject.Store(true)

	stdout, _, code := f.run("-o", "json", "orders", "list")
	assert.Equal(t, 1, code)

	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &v))
	assert.EqualValues(t, http.StatusUnauthorized, v["http_status"])
	assert.Equal(t, "token_expired", v["code"])
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	stdout, _, code := f.run("logout")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Signed out")

	_, _, code = f.run("whoami")
	assert.Equal(t, 1, code)

	// Signing out twice is harmless
	_, _, code = f.run("logout")
	assert.Equal(t, 0, code)
}

func TestMealsList(t *testing.T) {
	f := setupTestFixture(t)

	t.Run("table", func(t *testing.T) {
		stdout, stderr, code := f.run("meals", "list")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "NAME")
		assert.Contains(t, stdout, "Paella")
		assert.Contains(t, stdout, "Pho")
		assert.Contains(t, stdout, "Page 1 of 2 (12 meals)")
	})

	t.Run("search and sort", func(t *testing.T) {
		stdout, _, code := f.run("-o", "json", "meals", "list", "--search", "minh", "--sort", "asc")
		require.Equal(t, 0, code)
		var meals []map[string]any
		require.NoError(t, json.Unmarshal([]byte(stdout), &meals))
		require.Len(t, meals, 1)
		assert.Equal(t, "Pho", meals[0]["foodName"])
	})

	t.Run("bad sort order", func(t *testing.T) {
		_, _, code := f.run("meals", "list", "--sort", "sideways")
		assert.Equal(t, 1, code)
	})

	t.Run("meal details need a session", func(t *testing.T) {
		_, stderr, code := f.run("meals", "get", "m1")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "not signed in")
	})
}

func TestProfilePrecedence(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, cli.SaveUserConfig(f.dataDir, &cli.UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]cli.Profile{
			"default": {API: "http://127.0.0.1:1", Output: "json"},
			"local":   {API: f.server.URL, Provider: "fake"},
		},
	}))

	loaded, err := cli.LoadUserConfig(f.dataDir)
	require.NoError(t, err)
	assert.Equal(t, "default", loaded.CurrentProfile)
	assert.Equal(t, f.server.URL, loaded.ActiveProfile("local").API)
	assert.Empty(t, loaded.ActiveProfile("missing").API)

	t.Run("profile selects the API", func(t *testing.T) {
		var out, errOut bytes.Buffer
		code := cli.Execute([]string{"--data-dir", f.dataDir, "-p", "local", "meals", "list"}, &out, &errOut, cli.WithProvider(f.provider))
		require.Equal(t, 0, code, errOut.String())
		assert.Contains(t, out.String(), "Paella")
	})

	t.Run("flag beats profile", func(t *testing.T) {
		stdout, stderr, code := f.run("-o", "table", "meals", "list")
		require.Equal(t, 0, code, stderr)
		assert.Contains(t, stdout, "NAME")
	})

	t.Run("env beats profile", func(t *testing.T) {
		t.Setenv("API_URL", f.server.URL)
		var out, errOut bytes.Buffer
		code := cli.Execute([]string{"--data-dir", f.dataDir, "--provider", "fake", "meals", "list"}, &out, &errOut, cli.WithProvider(f.provider))
		require.Equal(t, 0, code, errOut.String())
		// Output still comes from the default profile
		var meals []map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &meals))
		assert.Len(t, meals, 2)
	})
}

func TestVersion(t *testing.T) {
	f := setupTestFixture(t)

	stdout, _, code := f.run("version", "--banner=false")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "bazaar version dev")

	stdout, _, code = f.run("-o", "json", "version")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"version": "dev"`)
}

func TestInvalidOutputFormat(t *testing.T) {
	f := setupTestFixture(t)

	_, stderr, code := f.run("-o", "yaml", "meals", "list")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unsupported output format")
}
