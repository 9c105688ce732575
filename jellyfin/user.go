package jellyfin

import (
	"context"
)

// Users returns all users known to the remote server.
func (c *Client) Users(ctx context.Context) ([]JFUser, error) {
	var users []JFUser
	if err := c.get(ctx, "/Users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminUsers returns the remote users carrying the administrator policy.
func (c *Client) AdminUsers(ctx context.Context) ([]JFUser, error) {
	users, err := c.Users(ctx)
	if err != nil {
		return nil, err
	}
	admins := make([]JFUser, 0, 1)
	for _, user := range users {
		if user.Policy.IsAdministrator {
			admins = append(admins, user)
		}
	}
	return admins, nil
}
