package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taskflowhq/taskflow/internal/core/notify"
	"github.com/taskflowhq/taskflow/internal/data/db"
)

// NotificationCache stores notifications keyed by the receiving user.
type NotificationCache struct {
	db *db.DB
}

// NewNotificationCache creates a notification cache backed by database.
func NewNotificationCache(database *db.DB) *NotificationCache {
	return &NotificationCache{db: database}
}

// Replace replaces the cached notifications for userID with items.
func (c *NotificationCache) Replace(ctx context.Context, userID string, items []notify.Notification) error {
	return c.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		for _, n := range items {
			if err := insertNotification(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
}

// Save upserts a single notification.
func (c *NotificationCache) Save(ctx context.Context, n notify.Notification) error {
	return c.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertNotification(ctx, tx, n)
	})
}

// MarkRead flips the read flag of the cached notification with id.
func (c *NotificationCache) MarkRead(ctx context.Context, id string) error {
	if _, err := c.db.Conn().ExecContext(ctx, `UPDATE notifications SET is_read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// List returns the cached notifications for userID, newest first.
// unreadOnly limits the result to unread entries.
func (c *NotificationCache) List(ctx context.Context, userID string, unreadOnly bool) ([]notify.Notification, error) {
	query := `SELECT id, user_id, message, link, severity, is_read, created_at
		 FROM notifications WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := c.db.Conn().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var items []notify.Notification
	for rows.Next() {
		var n notify.Notification
		var severity string
		var isRead int
		var createdAt int64
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Link, &severity, &isRead, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Severity = notify.Severity(severity)
		n.IsRead = isRead != 0
		n.CreatedAt = time.Unix(0, createdAt)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return items, nil
}

func insertNotification(ctx context.Context, tx *sql.Tx, n notify.Notification) error {
	isRead := 0
	if n.IsRead {
		isRead = 1
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, message, link, severity, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   message = excluded.message,
		   is_read = excluded.is_read`,
		n.ID, n.UserID, n.Message, n.Link, string(n.Severity), isRead, n.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}
