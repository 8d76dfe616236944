package api

import (
	"context"
	"net/http"
)

// Role is a user's server-side authorization role. The client never
// enforces roles; it only displays them.
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleProjectManager Role = "ProjectManager"
	RoleUser           Role = "User"
)

// User is the server's user representation.
type User struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        Role   `json:"role"`
}

// LoginRequest is the credential payload for Login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	Username    string `json:"username"`
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/Auth/login", req, &out)
	return out, err
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/Auth/register", req, &out)
	return out, err
}
