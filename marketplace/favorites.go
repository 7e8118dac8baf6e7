package marketplace

import (
	"context"
)

func (c *Client) Favorites(ctx context.Context, email string) ([]Favorite, error) {
	var out []Favorite
	if err := c.secure.Get(ctx, "/favMeal", emailQuery(email), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddFavorite saves a meal to the user's favorites. A meal that is already
// saved returns ErrAlreadyFavorite.
func (c *Client) AddFavorite(ctx context.Context, mealID, email string) (*InsertResult, error) {
	var out InsertResult
	body := map[string]string{"email": email}
	if err := c.secure.Post(ctx, pathID("/favMeal", mealID), body, &out); err != nil {
		return nil, conflictAs(err, ErrAlreadyFavorite)
	}
	return &out, nil
}

// RemoveFavorite deletes a favorite by its own id
func (c *Client) RemoveFavorite(ctx context.Context, id string) (*DeleteResult, error) {
	var out DeleteResult
	if err := c.secure.Delete(ctx, pathID("/favMeal", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
