package api

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// TaskStatus is the server's numeric task status enum.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusInProgress
	StatusCompleted
)

// ParseTaskStatus converts the server's string form to the numeric enum.
// Unknown strings map to StatusPending, matching the server's default.
func ParseTaskStatus(s string) TaskStatus {
	switch s {
	case "InProgress":
		return StatusInProgress
	case "Completed":
		return StatusCompleted
	default:
		return StatusPending
	}
}

func (s TaskStatus) String() string {
	switch s {
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Pending"
	}
}

// Task is the server's task representation. Status arrives as a string;
// status changes are posted as the numeric enum.
type Task struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	DueDate           time.Time `json:"dueDate,omitempty"`
	ProjectID         string    `json:"projectId"`
	ProjectName       string    `json:"projectName,omitempty"`
	AssignedUserIDs   []string  `json:"assignedUserIds"`
	AssignedUserNames []string  `json:"assignedUserNames"`
}

// CreateTaskRequest is the payload for CreateTask.
type CreateTaskRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ProjectID       string     `json:"projectId"`
	Status          TaskStatus `json:"status"`
	DueDate         string     `json:"dueDate,omitempty"`
	AssignedUserIDs []string   `json:"assignedUserIds"`
}

// UpdateTaskRequest is the payload for UpdateTask. The server routes
// updates by the ID in the body, not the path.
type UpdateTaskRequest struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ProjectID       string     `json:"projectId"`
	Status          TaskStatus `json:"status"`
	DueDate         string     `json:"dueDate,omitempty"`
	AssignedUserIDs []string   `json:"assignedUserIds"`
}

// Tasks fetches all tasks visible to the current user.
func (c *Client) Tasks(ctx context.Context) ([]Task, error) {
	var out []Task
	err := c.do(ctx, http.MethodGet, "/Tasks", nil, &out)
	return out, err
}

// TaskByID fetches a single task.
func (c *Client) TaskByID(ctx context.Context, id string) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodGet, "/Tasks/"+url.PathEscape(id), nil, &out)
	return out, err
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPost, "/Tasks", req, &out)
	return out, err
}

// UpdateTask updates a task.
func (c *Client) UpdateTask(ctx context.Context, req UpdateTaskRequest) (Task, error) {
	var out Task
	err := c.do(ctx, http.MethodPut, "/Tasks", req, &out)
	return out, err
}

// DeleteTask deletes a task by ID.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/Tasks/"+url.PathEscape(id), nil, nil)
}

// ChangeTaskStatus moves a task to a new status. The body is the bare
// numeric status, not an object.
func (c *Client) ChangeTaskStatus(ctx context.Context, id string, status TaskStatus) error {
	return c.do(ctx, http.MethodPost, "/Tasks/"+url.PathEscape(id)+"/status", int(status), nil)
}
