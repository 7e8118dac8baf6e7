package marketplace

import (
	"context"

	"github.com/jrsteele09/localchef-bazaar/sessions"
	"github.com/jrsteele09/localchef-bazaar/users"
)

// userSync is the body of POST /users
type userSync struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

// UpsertUser records the signed-in principal with the backend and returns the
// stored profile, including role, status and address.
func (c *Client) UpsertUser(ctx context.Context, p sessions.Principal) (*users.Profile, error) {
	body := userSync{
		UID:         p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
	}
	var out users.Profile
	if err := c.public.Post(ctx, "/users", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists every account for the admin user table
func (c *Client) Users(ctx context.Context) ([]users.Profile, error) {
	var out []users.Profile
	if err := c.secure.Get(ctx, "/users/admin", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkFraud restricts the user with the given backend id
func (c *Client) MarkFraud(ctx context.Context, id string) (*UpdateResult, error) {
	var out UpdateResult
	if err := c.secure.Patch(ctx, pathID("/users/fraud", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
