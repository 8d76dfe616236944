// Package cache persists fetched conversations and notifications to the
// local SQLite database so views can render the last known state before the
// first fetch of a session resolves.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/data/db"
)

// MessageCache stores conversation messages keyed by the sending and
// receiving users.
type MessageCache struct {
	db *db.DB
}

// NewMessageCache creates a message cache backed by database.
func NewMessageCache(database *db.DB) *MessageCache {
	return &MessageCache{db: database}
}

// ReplaceConversation replaces the cached messages between selfID and
// otherID, in both directions, with msgs.
func (c *MessageCache) ReplaceConversation(ctx context.Context, selfID, otherID string, msgs []chat.Message) error {
	return c.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM messages
			 WHERE (sender_id = ? AND receiver_id = ?)
			    OR (sender_id = ? AND receiver_id = ?)`,
			selfID, otherID, otherID, selfID)
		if err != nil {
			return fmt.Errorf("delete conversation: %w", err)
		}

		for _, m := range msgs {
			if err := insertMessage(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

// Save upserts a single message.
func (c *MessageCache) Save(ctx context.Context, m chat.Message) error {
	return c.db.WithTx(ctx, func(tx *sql.Tx) error {
		return insertMessage(ctx, tx, m)
	})
}

// Conversation returns the cached messages between selfID and otherID, in
// both directions, oldest first.
func (c *MessageCache) Conversation(ctx context.Context, selfID, otherID string) ([]chat.Message, error) {
	rows, err := c.db.Conn().QueryContext(ctx,
		`SELECT id, sender_id, sender_full_name, receiver_id, content, is_read, created_at
		 FROM messages
		 WHERE (sender_id = ? AND receiver_id = ?)
		    OR (sender_id = ? AND receiver_id = ?)
		 ORDER BY created_at ASC`,
		selfID, otherID, otherID, selfID)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var m chat.Message
		var isRead int
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderFullName, &m.ReceiverID, &m.Content, &isRead, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.IsRead = isRead != 0
		m.CreatedAt = time.Unix(0, createdAt)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return msgs, nil
}

func insertMessage(ctx context.Context, tx *sql.Tx, m chat.Message) error {
	isRead := 0
	if m.IsRead {
		isRead = 1
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, sender_id, sender_full_name, receiver_id, content, is_read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   content = excluded.content,
		   is_read = excluded.is_read`,
		m.ID, m.SenderID, m.SenderFullName, m.ReceiverID, m.Content, isRead, m.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}
