package api

import (
	"context"

	"github.com/atinyakov/medstock/internal/inventory"
	"github.com/atinyakov/medstock/internal/models"
)

// Users returns every account.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.get(ctx, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUser replaces the attributes of an account.
func (c *Client) UpdateUser(ctx context.Context, u models.User) error {
	return c.put(ctx, "/api/users/"+escapeID(u.ID), u, nil)
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, id models.ID) error {
	return c.delete(ctx, "/api/users/"+escapeID(id))
}

// Me returns the profile of the signed-in user.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.get(ctx, "/api/users/me", nil, &out)
	return out, err
}

// UpdateProfile applies a partial update to the signed-in user's profile.
func (c *Client) UpdateProfile(ctx context.Context, u inventory.ProfileUpdate) error {
	return c.put(ctx, "/api/users/update", u, nil)
}
