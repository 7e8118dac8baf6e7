package marketplace

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/users"
	"github.com/rs/zerolog/log"
)

func (c *Client) MealReviews(ctx context.Context, mealID string) ([]Review, error) {
	var out []Review
	if err := c.secure.Get(ctx, "/mealReviews", url.Values{"mealId": {mealID}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddReview posts a review of a meal by the given author. The rating is
// clamped to 1..5.
func (c *Client) AddReview(ctx context.Context, author *users.Profile, mealID string, rating int, text string) (*Review, error) {
	if author == nil {
		return nil, errors.ErrNoSession
	}
	var v errors.ValidationErrors
	v.Required("text", text, "Review text is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	review := &Review{
		Rating:    ClampRating(rating),
		Text:      strings.TrimSpace(text),
		UserName:  author.DisplayName,
		UserEmail: author.Email,
		UserImage: author.PhotoURL,
	}
	var res InsertResult
	if err := c.secure.Post(ctx, pathID("/mealReviews", mealID), review, &res); err != nil {
		return nil, err
	}
	review.ID = res.InsertedID
	review.MealID = mealID
	return review, nil
}

// MyReviews lists the reviews written by the user with the given email
func (c *Client) MyReviews(ctx context.Context, email string) ([]Review, error) {
	var out []Review
	if err := c.secure.Get(ctx, "/dashboard/myReview", emailQuery(email), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateReview replaces the text of a review
func (c *Client) UpdateReview(ctx context.Context, id, text string) (*UpdateResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.ValidationErrors{{Field: "text", Message: "Review text is required"}}
	}
	var out UpdateResult
	body := map[string]string{"text": strings.TrimSpace(text)}
	if err := c.secure.Patch(ctx, pathID("/dashboard/review", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.secure.Delete(ctx, pathID("/dashboard/review", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewsMarquee fetches the latest reviews for the home page. Failures are
// logged and yield an empty list.
func (c *Client) ReviewsMarquee(ctx context.Context) []Review {
	var out []Review
	if err := c.public.Get(ctx, "/reviews", nil, &out); err != nil {
		log.Debug().Err(err).Msg("reviews marquee unavailable")
		return []Review{}
	}
	if out == nil {
		return []Review{}
	}
	return out
}
