// Package dashboard decides what a signed-in user may see: the role menus,
// route guards and page titles of the marketplace.
package dashboard

import "strings"

// Public routes
const (
	RouteHome        = "/"
	RouteMeals       = "/meals"
	RouteMealDetails = "/mealDetails/"
	RouteBlogs       = "/blogs"
	RouteLogin       = "/login"
	RouteRegister    = "/register"
)

// Dashboard routes
const (
	RouteDashboard        = "/dashboard"
	RouteMyProfile        = "/dashboard/myProfile"
	RouteMyOrders         = "/dashboard/myOrders"
	RouteMyReviews        = "/dashboard/myReviews"
	RouteFavorites        = "/dashboard/favoriteMeals"
	RouteCreateMeals      = "/dashboard/createMeals"
	RouteMyMeals          = "/dashboard/myMeals"
	RouteOrderRequests    = "/dashboard/orderRequest"
	RoutePlatformStats    = "/dashboard/platformStats"
	RouteManageUsers      = "/dashboard/manageUsers"
	RouteManageRequests   = "/dashboard/manageRequests"
	RouteManageComplaints = "/dashboard/manageComplaints"
	RouteManageBlogs      = "/dashboard/manageBlogs"

	// Where the checkout returns the buyer
	RoutePaymentSuccess   = "/dashboard/payment-success"
	RoutePaymentCancelled = "/dashboard/payment-cancelled"
)

// IsPrivate reports whether path needs a signed-in user
func IsPrivate(path string) bool {
	path = cleanPath(path)
	return path == RouteDashboard ||
		strings.HasPrefix(path, RouteDashboard+"/") ||
		strings.HasPrefix(path, RouteMealDetails)
}

// MealDetailsRoute returns the details page of a meal
func MealDetailsRoute(id string) string {
	return RouteMealDetails + id
}

func cleanPath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

const defaultTitle = "Local Chef Bazaar - Dashboard"

var titles = map[string]string{
	RouteMyProfile:        "Local Chef Bazaar - My Profile",
	RouteMyOrders:         "Local Chef Bazaar - My Orders",
	RouteMyReviews:        "Local Chef Bazaar - My Reviews",
	RouteFavorites:        "Local Chef Bazaar - Favorites",
	RouteCreateMeals:      "Local Chef Bazaar - Create Meal",
	RouteMyMeals:          "Local Chef Bazaar - My Meals",
	RouteOrderRequests:    "Local Chef Bazaar - Order Requests",
	RouteManageUsers:      "Local Chef Bazaar - Manage Users",
	RouteManageRequests:   "Local Chef Bazaar - Manage Requests",
	RoutePlatformStats:    "Local Chef Bazaar - Platform Stats",
	RouteManageComplaints: "Local Chef Bazaar - Manage Complaints",
	RouteManageBlogs:      "Local Chef Bazaar - Manage Blogs",
}

// Title returns the window title for a dashboard path
func Title(path string) string {
	if t, ok := titles[cleanPath(path)]; ok {
		return t
	}
	return defaultTitle
}
