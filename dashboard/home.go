package dashboard

import (
	"context"

	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
	"golang.org/x/sync/errgroup"
)

// API is the part of the marketplace client the overview loads from
type API interface {
	HomeMeals(ctx context.Context) ([]marketplace.Meal, error)
	ReviewsMarquee(ctx context.Context) []marketplace.Review
	Blogs(ctx context.Context) ([]marketplace.Blog, error)
	Orders(ctx context.Context, email string) ([]marketplace.Order, error)
	Favorites(ctx context.Context, email string) ([]marketplace.Favorite, error)
	ChefMeals(ctx context.Context, email string) ([]marketplace.Meal, error)
	OrderRequests(ctx context.Context, chefID string) ([]marketplace.Order, error)
	PlatformStats(ctx context.Context) (*marketplace.PlatformStats, error)
}

var _ API = (*marketplace.Client)(nil)

// Overview is everything the landing view shows. Role sections are only
// filled for the matching role.
type Overview struct {
	Meals   []marketplace.Meal
	Reviews []marketplace.Review
	Blogs   []marketplace.Blog

	Orders    []marketplace.Order    // Customer
	Favorites []marketplace.Favorite // Customer
	MyMeals   []marketplace.Meal     // Chef
	Requests  []marketplace.Order    // Chef
	Stats     *marketplace.PlatformStats
}

// LoadOverview fetches the home sections and the session's role sections
// concurrently. The first failure cancels the rest.
func LoadOverview(ctx context.Context, api API, session *sessions.Session) (*Overview, error) {
	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.Meals, err = api.HomeMeals(ctx)
		return err
	})
	g.Go(func() error {
		out.Reviews = api.ReviewsMarquee(ctx)
		return nil
	})
	g.Go(func() (err error) {
		out.Blogs, err = api.Blogs(ctx)
		return err
	})

	if session != nil {
		email := session.Email()
		switch sessionRole(session) {
		case users.RoleCustomer:
			g.Go(func() (err error) {
				out.Orders, err = api.Orders(ctx, email)
				return err
			})
			g.Go(func() (err error) {
				out.Favorites, err = api.Favorites(ctx, email)
				return err
			})
		case users.RoleChef:
			chefID := session.Profile.ChefID
			g.Go(func() (err error) {
				out.MyMeals, err = api.ChefMeals(ctx, email)
				return err
			})
			if chefID != "" {
				g.Go(func() (err error) {
					out.Requests, err = api.OrderRequests(ctx, chefID)
					return err
				})
			}
		case users.RoleAdmin:
			g.Go(func() (err error) {
				out.Stats, err = api.PlatformStats(ctx)
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
