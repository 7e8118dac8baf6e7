package marketplace

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
)

const DefaultPageLimit = 10

// ListMeals fetches one page of the catalogue. Pages start at 1.
func (c *Client) ListMeals(ctx context.Context, page, limit int) (*MealPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out MealPage
	if err := c.secure.Get(ctx, "/meals", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HomeMeals fetches the meals featured on the home page
func (c *Client) HomeMeals(ctx context.Context) ([]Meal, error) {
	var out []Meal
	if err := c.secure.Get(ctx, "/mealForHome", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Meal(ctx context.Context, id string) (*Meal, error) {
	var out Meal
	if err := c.secure.Get(ctx, pathID("/mealDetails", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMeal validates the form, uploads the image if content was given and
// posts the meal.
func (c *Client) CreateMeal(ctx context.Context, in MealInput) (*InsertResult, error) {
	meal, err := in.Meal()
	if err != nil {
		return nil, err
	}
	if in.Image != nil {
		if meal.FoodImage, err = c.uploadImage(ctx, "meals", in.ImageName, in.Image); err != nil {
			return nil, err
		}
	}

	var out InsertResult
	if err := c.secure.Post(ctx, "/dashboard/createMeals", meal, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChefMeals lists the meals created by the chef with the given email
func (c *Client) ChefMeals(ctx context.Context, email string) ([]Meal, error) {
	var out []Meal
	if err := c.secure.Get(ctx, "/dashboard/myMeals", emailQuery(email), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMeal replaces a meal's fields. Without new image content the current
// image URL is kept.
func (c *Client) UpdateMeal(ctx context.Context, id string, in MealInput) (*UpdateResult, error) {
	meal, err := in.Meal()
	if err != nil {
		return nil, err
	}
	if in.Image != nil {
		if meal.FoodImage, err = c.uploadImage(ctx, "meals", in.ImageName, in.Image); err != nil {
			return nil, err
		}
	}

	var out UpdateResult
	if err := c.secure.Patch(ctx, pathID("/dashboard/myMeals", id), nil, meal, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMeal(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.secure.Delete(ctx, pathID("/dashboard/myMeals", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SortOrder orders meals by price
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "asc"
	SortPriceDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case SortNone, SortPriceAsc, SortPriceDesc:
		return o, nil
	}
	return SortNone, errors.Wrapf(errors.ErrValidation, "unknown sort order %q", s)
}

// FilterMeals searches a fetched page by food or chef name, case-insensitively,
// and sorts the result by price. The input slice is left untouched.
func FilterMeals(meals []Meal, search string, order SortOrder) []Meal {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]Meal, 0, len(meals))
	for _, m := range meals {
		if search == "" ||
			strings.Contains(strings.ToLower(m.FoodName), search) ||
			strings.Contains(strings.ToLower(m.ChefName), search) {
			out = append(out, m)
		}
	}

	switch order {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	}
	return out
}
