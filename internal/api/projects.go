package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Project is the server's project representation. Tasks and TaskCount are
// populated only by endpoints that expand them.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Owner       User      `json:"owner"`
	Tasks       []Task    `json:"tasks,omitempty"`
	TaskCount   int       `json:"taskCount,omitempty"`
}

// CreateProjectRequest is the payload for CreateProject.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

// UpdateProjectRequest is the payload for UpdateProject.
type UpdateProjectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

// Projects fetches all projects.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out []Project
	err := c.do(ctx, http.MethodGet, "/Projects", nil, &out)
	return out, err
}

// ProjectByID fetches a single project.
func (c *Client) ProjectByID(ctx context.Context, id string) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodGet, "/Projects/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, req CreateProjectRequest) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPost, "/Projects", req, &out)
	return out, err
}

// UpdateProject updates a project by ID.
func (c *Client) UpdateProject(ctx context.Context, req UpdateProjectRequest) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPut, "/Projects/"+url.PathEscape(req.ID), req, &out)
	return out, err
}

// DeleteProject deletes a project by ID.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/Projects/"+url.PathEscape(id), nil, nil)
}
