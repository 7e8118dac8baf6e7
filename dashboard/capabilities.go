package dashboard

import (
	"net/url"
	"slices"

	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
)

// Entry is one item of the dashboard menu
type Entry struct {
	Label string
	Route string
}

// Capabilities maps each role to the dashboard sections it may open, in menu order
type Capabilities map[users.Role][]Entry

// Common entries every signed-in user sees first
var Common = []Entry{
	{Label: "Homepage", Route: RouteHome},
	{Label: "My Profile", Route: RouteMyProfile},
}

// DefaultCapabilities returns the marketplace role menus
func DefaultCapabilities() Capabilities {
	return Capabilities{
		users.RoleChef: {
			{Label: "Create Meal", Route: RouteCreateMeals},
			{Label: "My Meals", Route: RouteMyMeals},
			{Label: "Order Requests", Route: RouteOrderRequests},
		},
		users.RoleCustomer: {
			{Label: "My Orders", Route: RouteMyOrders},
			{Label: "My Reviews", Route: RouteMyReviews},
			{Label: "Favorites", Route: RouteFavorites},
		},
		users.RoleAdmin: {
			{Label: "Platform Stats", Route: RoutePlatformStats},
			{Label: "Manage Users", Route: RouteManageUsers},
			{Label: "Manage Requests", Route: RouteManageRequests},
			{Label: "Manage Complaints", Route: RouteManageComplaints},
			{Label: "Manage Blogs", Route: RouteManageBlogs},
		},
	}
}

// Menu returns the common entries followed by the section of the session's
// role. A profile without a role reads as customer; a session whose profile
// has not arrived yet gets the common entries only.
func (c Capabilities) Menu(session *sessions.Session) []Entry {
	if session == nil {
		return nil
	}
	menu := slices.Clone(Common)
	return append(menu, c[sessionRole(session)]...)
}

// Allows reports whether role may open path. Dashboard paths no role section
// claims are open to every signed-in user.
func (c Capabilities) Allows(role users.Role, path string) bool {
	path = cleanPath(path)
	claimed := false
	for r, entries := range c {
		for _, e := range entries {
			if e.Route != path {
				continue
			}
			if r == role {
				return true
			}
			claimed = true
		}
	}
	return !claimed
}

// HomeRoute is where /dashboard lands: admins on the platform stats, everyone
// else on their profile.
func HomeRoute(session *sessions.Session) string {
	if sessionRole(session) == users.RoleAdmin {
		return RoutePlatformStats
	}
	return RouteMyProfile
}

func sessionRole(session *sessions.Session) users.Role {
	if session == nil {
		return ""
	}
	return session.Role()
}

// Action is what a route guard tells the caller to do
type Action int

const (
	Allow    Action = iota
	Wait            // Auth state still loading
	Redirect        // Go to Decision.Route instead
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the outcome of a route guard
type Decision struct {
	Action Action
	Route  string
	From   string // The requested path, set when redirecting to sign in
}

// Target is the location to navigate to for a redirect, carrying the
// requested path so sign-in can return there.
func (d Decision) Target() string {
	if d.From == "" {
		return d.Route
	}
	return d.Route + "?" + url.Values{"from": {d.From}}.Encode()
}

// SessionState is the part of the session store a guard reads
type SessionState interface {
	Resolved() bool
	Current() (sessions.Session, bool)
}

var _ SessionState = (*sessions.Store)(nil)

// Guard decides whether path may render for the store's current session
func (c Capabilities) Guard(store SessionState, path string) Decision {
	if !IsPrivate(path) {
		return Decision{Action: Allow}
	}
	if !store.Resolved() {
		return Decision{Action: Wait}
	}
	session, ok := store.Current()
	if !ok {
		return Decision{Action: Redirect, Route: RouteLogin, From: path}
	}

	clean := cleanPath(path)
	if clean == RouteDashboard {
		return Decision{Action: Redirect, Route: HomeRoute(&session)}
	}
	if !c.Allows(sessionRole(&session), clean) {
		return Decision{Action: Redirect, Route: HomeRoute(&session)}
	}
	return Decision{Action: Allow}
}
