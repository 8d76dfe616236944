package api

import (
	"context"
	"net/http"
	"net/url"
)

// Users fetches all users.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var out []User
	err := c.do(ctx, http.MethodGet, "/Users", nil, &out)
	return out, err
}

// UserByID fetches a single user.
func (c *Client) UserByID(ctx context.Context, id string) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/Users/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateUser creates a user.
func (c *Client) CreateUser(ctx context.Context, user User) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/Users", user, &out)
	return out, err
}

// UpdateUser updates a user by ID.
func (c *Client) UpdateUser(ctx context.Context, id string, user User) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPut, "/Users/"+url.PathEscape(id), user, &out)
	return out, err
}

// DeleteUser deletes a user by ID.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/Users/"+url.PathEscape(id), nil, nil)
}
