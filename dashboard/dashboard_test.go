package dashboard_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionFor(role users.Role) sessions.Session {
	return sessions.Session{
		Principal: sessions.Principal{ID: "uid-1", Email: "ana@example.com"},
		Token:     "T1",
		Profile:   &users.Profile{Email: "ana@example.com", Role: role, ChefID: "c1"},
	}
}

func routes(entries []dashboard.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Route
	}
	return out
}

func TestMenu(t *testing.T) {
	caps := dashboard.DefaultCapabilities()

	tests := []struct {
		name string
		role users.Role
		want []string
	}{
		{"customer", users.RoleCustomer, []string{"/", "/dashboard/myProfile", "/dashboard/myOrders", "/dashboard/myReviews", "/dashboard/favoriteMeals"}},
		{"chef", users.RoleChef, []string{"/", "/dashboard/myProfile", "/dashboard/createMeals", "/dashboard/myMeals", "/dashboard/orderRequest"}},
		{"admin", users.RoleAdmin, []string{"/", "/dashboard/myProfile", "/dashboard/platformStats", "/dashboard/manageUsers", "/dashboard/manageRequests", "/dashboard/manageComplaints", "/dashboard/manageBlogs"}},
		{"empty role reads as customer", "", []string{"/", "/dashboard/myProfile", "/dashboard/myOrders", "/dashboard/myReviews", "/dashboard/favoriteMeals"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessionFor(tt.role)
			assert.Equal(t, tt.want, routes(caps.Menu(&s)))
		})
	}

	t.Run("no profile yet", func(t *testing.T) {
		s := sessionFor("")
		s.Profile = nil
		assert.Equal(t, []string{"/", "/dashboard/myProfile"}, routes(caps.Menu(&s)))
	})

	t.Run("no session", func(t *testing.T) {
		assert.Nil(t, caps.Menu(nil))
	})

	t.Run("menu does not alias common entries", func(t *testing.T) {
		s := sessionFor(users.RoleChef)
		menu := caps.Menu(&s)
		menu[0].Label = "changed"
		assert.Equal(t, "Homepage", dashboard.Common[0].Label)
	})
}

func TestGuard(t *testing.T) {
	caps := dashboard.DefaultCapabilities()

	t.Run("public routes always render", func(t *testing.T) {
		store := sessions.NewStore()
		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RouteMeals).Action)
		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RouteLogin).Action)
	})

	t.Run("waits while loading", func(t *testing.T) {
		store := sessions.NewStore()
		assert.Equal(t, dashboard.Wait, caps.Guard(store, dashboard.RouteMyOrders).Action)
	})

	t.Run("signed out goes to login with the requested path", func(t *testing.T) {
		store := sessions.NewStore()
		store.MarkResolved()
		d := caps.Guard(store, dashboard.MealDetailsRoute("m1"))
		assert.Equal(t, dashboard.Redirect, d.Action)
		assert.Equal(t, dashboard.RouteLogin, d.Route)
		assert.Equal(t, "/mealDetails/m1", d.From)
		assert.Equal(t, "/login?from=%2FmealDetails%2Fm1", d.Target())
	})

	t.Run("dashboard root lands by role", func(t *testing.T) {
		store := sessions.NewStore()
		store.Set(sessionFor(users.RoleAdmin))
		store.MarkResolved()
		d := caps.Guard(store, "/dashboard/")
		assert.Equal(t, dashboard.Redirect, d.Action)
		assert.Equal(t, dashboard.RoutePlatformStats, d.Target())

		store.Set(sessionFor(users.RoleChef))
		assert.Equal(t, dashboard.RouteMyProfile, caps.Guard(store, dashboard.RouteDashboard).Route)
	})

	t.Run("role sections are enforced", func(t *testing.T) {
		store := sessions.NewStore()
		store.Set(sessionFor(users.RoleCustomer))
		store.MarkResolved()

		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RouteMyOrders).Action)
		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RouteMyProfile).Action)
		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RoutePaymentSuccess+"?session_id=cs_1").Action)

		d := caps.Guard(store, dashboard.RouteManageUsers)
		assert.Equal(t, dashboard.Redirect, d.Action)
		assert.Equal(t, dashboard.RouteMyProfile, d.Route)
		assert.Empty(t, d.From)
	})

	t.Run("empty role is guarded as customer", func(t *testing.T) {
		store := sessions.NewStore()
		store.Set(sessionFor(""))
		store.MarkResolved()

		assert.Equal(t, dashboard.Allow, caps.Guard(store, dashboard.RouteMyOrders).Action)
		assert.Equal(t, dashboard.Redirect, caps.Guard(store, dashboard.RouteCreateMeals).Action)
	})
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Local Chef Bazaar - My Profile", dashboard.Title("/dashboard/myProfile"))
	assert.Equal(t, "Local Chef Bazaar - Platform Stats", dashboard.Title("/dashboard/platformStats/"))
	assert.Equal(t, "Local Chef Bazaar - Dashboard", dashboard.Title("/dashboard/unknown"))
}

func TestRouter(t *testing.T) {
	var seen []string
	r := dashboard.NewRouter(dashboard.RouteHome, dashboard.WithOnNavigate(func(route string) {
		seen = append(seen, route)
	}))
	r.Navigate(dashboard.RouteMeals)
	r.Navigate(dashboard.RouteLogin)

	assert.Equal(t, dashboard.RouteLogin, r.Location())
	assert.Equal(t, []string{"/", "/meals", "/login"}, r.History())
	assert.Equal(t, []string{"/meals", "/login"}, seen)

	assert.Equal(t, dashboard.RouteMeals, r.Back())
	assert.Equal(t, dashboard.RouteHome, r.Back())
	assert.Equal(t, dashboard.RouteHome, r.Back())
}

type fakeAPI struct {
	lock      sync.Mutex
	calls     []string
	failBlogs bool
}

func (f *fakeAPI) record(call string) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) HomeMeals(context.Context) ([]marketplace.Meal, error) {
	f.record("home")
	return []marketplace.Meal{{ID: "m1"}}, nil
}

func (f *fakeAPI) ReviewsMarquee(context.Context) []marketplace.Review {
	f.record("reviews")
	return []marketplace.Review{}
}

func (f *fakeAPI) Blogs(context.Context) ([]marketplace.Blog, error) {
	f.record("blogs")
	if f.failBlogs {
		return nil, fmt.Errorf("blogs down")
	}
	return []marketplace.Blog{{ID: "b1"}}, nil
}

func (f *fakeAPI) Orders(_ context.Context, email string) ([]marketplace.Order, error) {
	f.record("orders:" + email)
	return []marketplace.Order{{ID: "o1"}}, nil
}

func (f *fakeAPI) Favorites(_ context.Context, email string) ([]marketplace.Favorite, error) {
	f.record("favorites:" + email)
	return nil, nil
}

func (f *fakeAPI) ChefMeals(_ context.Context, email string) ([]marketplace.Meal, error) {
	f.record("chefMeals:" + email)
	return []marketplace.Meal{{ID: "m2"}}, nil
}

func (f *fakeAPI) OrderRequests(_ context.Context, chefID string) ([]marketplace.Order, error) {
	f.record("requests:" + chefID)
	return []marketplace.Order{{ID: "o2"}}, nil
}

func (f *fakeAPI) PlatformStats(context.Context) (*marketplace.PlatformStats, error) {
	f.record("stats")
	return &marketplace.PlatformStats{}, nil
}

func TestLoadOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("signed out", func(t *testing.T) {
		api := &fakeAPI{}
		out, err := dashboard.LoadOverview(ctx, api, nil)
		require.NoError(t, err)
		require.Len(t, out.Meals, 1)
		require.Len(t, out.Blogs, 1)
		require.ElementsMatch(t, []string{"home", "reviews", "blogs"}, api.calls)
	})

	t.Run("customer", func(t *testing.T) {
		api := &fakeAPI{}
		s := sessionFor(users.RoleCustomer)
		out, err := dashboard.LoadOverview(ctx, api, &s)
		require.NoError(t, err)
		require.Len(t, out.Orders, 1)
		require.Contains(t, api.calls, "favorites:ana@example.com")
		require.Nil(t, out.Stats)
	})

	t.Run("chef", func(t *testing.T) {
		api := &fakeAPI{}
		s := sessionFor(users.RoleChef)
		out, err := dashboard.LoadOverview(ctx, api, &s)
		require.NoError(t, err)
		require.Len(t, out.MyMeals, 1)
		require.Len(t, out.Requests, 1)
		require.Contains(t, api.calls, "requests:c1")
	})

	t.Run("admin", func(t *testing.T) {
		api := &fakeAPI{}
		s := sessionFor(users.RoleAdmin)
		out, err := dashboard.LoadOverview(ctx, api, &s)
		require.NoError(t, err)
		require.NotNil(t, out.Stats)
	})

	t.Run("failure", func(t *testing.T) {
		api := &fakeAPI{failBlogs: true}
		_, err := dashboard.LoadOverview(ctx, api, nil)
		require.EqualError(t, err, "blogs down")
	})
}
