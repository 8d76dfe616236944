package api

import (
	"context"
	"net/http"
	"net/url"
)

// DashboardStats is the admin dashboard's headline counters.
type DashboardStats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalProjects   int `json:"totalProjects"`
	TotalTasks      int `json:"totalTasks"`
	PendingTasks    int `json:"pendingTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	CompletedTasks  int `json:"completedTasks"`
	CancelledTasks  int `json:"cancelledTasks"`
	OverdueTasks    int `json:"overdueTasks"`
}

// TasksByStatus is the status-breakdown chart payload.
type TasksByStatus struct {
	Pending    int `json:"pending"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}

// TasksPerProject is one bar of the per-project chart.
type TasksPerProject struct {
	ProjectID   string `json:"projectId"`
	ProjectName string `json:"projectName"`
	TaskCount   int    `json:"taskCount"`
}

// TasksPerUser is one bar of the per-user chart.
type TasksPerUser struct {
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	TaskCount int    `json:"taskCount"`
}

// TasksOverTime is one point of the created/completed time series.
type TasksOverTime struct {
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// Stats fetches the admin dashboard counters.
func (c *Client) Stats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	err := c.do(ctx, http.MethodGet, "/admin/dashboard/stats", nil, &out)
	return out, err
}

// StatsByStatus fetches the tasks-by-status breakdown.
func (c *Client) StatsByStatus(ctx context.Context) (TasksByStatus, error) {
	var out TasksByStatus
	err := c.do(ctx, http.MethodGet, "/admin/charts/tasks-by-status", nil, &out)
	return out, err
}

// StatsPerProject fetches the per-project task counts.
func (c *Client) StatsPerProject(ctx context.Context) ([]TasksPerProject, error) {
	var out []TasksPerProject
	err := c.do(ctx, http.MethodGet, "/admin/charts/tasks-per-project", nil, &out)
	return out, err
}

// StatsPerUser fetches the per-user task counts.
func (c *Client) StatsPerUser(ctx context.Context) ([]TasksPerUser, error) {
	var out []TasksPerUser
	err := c.do(ctx, http.MethodGet, "/admin/charts/tasks-per-user", nil, &out)
	return out, err
}

// StatsOverTime fetches the created/completed time series. Either bound
// may be empty to use the server's default window.
func (c *Client) StatsOverTime(ctx context.Context, startDate, endDate string) ([]TasksOverTime, error) {
	params := url.Values{}
	if startDate != "" {
		params.Set("startDate", startDate)
	}
	if endDate != "" {
		params.Set("endDate", endDate)
	}
	path := "/admin/charts/tasks-over-time"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var out []TasksOverTime
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}
