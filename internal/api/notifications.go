package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/taskflowhq/taskflow/internal/core/notify"
)

// CreateNotificationRequest is the payload for CreateNotification.
type CreateNotificationRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// UnreadNotifications fetches the unread snapshot, newest first.
func (c *Client) UnreadNotifications(ctx context.Context) ([]notify.Notification, error) {
	var out []notify.Notification
	err := c.do(ctx, http.MethodGet, "/Notifications/unread", nil, &out)
	return out, err
}

// AllNotifications fetches the full notification history, newest first.
func (c *Client) AllNotifications(ctx context.Context) ([]notify.Notification, error) {
	var out []notify.Notification
	err := c.do(ctx, http.MethodGet, "/Notifications/all", nil, &out)
	return out, err
}

// CreateNotification originates a notification for another user. Used by
// workflows that notify assignees; the realtime layer never calls this.
func (c *Client) CreateNotification(ctx context.Context, req CreateNotificationRequest) (notify.Notification, error) {
	var out notify.Notification
	err := c.do(ctx, http.MethodPost, "/Notifications", req, &out)
	return out, err
}

// MarkNotificationRead confirms a client-side read transition with the
// server. Only success or failure is consumed, no response body.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/Notifications/"+url.PathEscape(id)+"/read", nil, nil)
}
