package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/data/db"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func cachedMsg(id, senderID, receiverID, content string, at time.Time) chat.Message {
	return chat.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  at,
	}
}

func TestMessageCache(t *testing.T) {
	ctx := context.Background()

	t.Run("replace and read back", func(t *testing.T) {
		c := NewMessageCache(openTestDB(t))

		base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		msgs := []chat.Message{
			cachedMsg("m1", "u1", "u2", "hi", base),
			cachedMsg("m2", "u2", "u1", "hello", base.Add(time.Minute)),
		}
		require.NoError(t, c.ReplaceConversation(ctx, "u1", "u2", msgs))

		got, err := c.Conversation(ctx, "u1", "u2")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m1", got[0].ID)
		assert.Equal(t, "m2", got[1].ID)
		assert.True(t, got[0].CreatedAt.Equal(base))
	})

	t.Run("conversation is symmetric", func(t *testing.T) {
		c := NewMessageCache(openTestDB(t))

		base := time.Now()
		require.NoError(t, c.Save(ctx, cachedMsg("m1", "u1", "u2", "hi", base)))

		got, err := c.Conversation(ctx, "u2", "u1")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("replace drops both directions", func(t *testing.T) {
		c := NewMessageCache(openTestDB(t))

		base := time.Now()
		require.NoError(t, c.Save(ctx, cachedMsg("old1", "u1", "u2", "stale", base)))
		require.NoError(t, c.Save(ctx, cachedMsg("old2", "u2", "u1", "stale", base)))

		require.NoError(t, c.ReplaceConversation(ctx, "u1", "u2", []chat.Message{
			cachedMsg("m1", "u1", "u2", "fresh", base.Add(time.Minute)),
		}))

		got, err := c.Conversation(ctx, "u1", "u2")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "m1", got[0].ID)
	})

	t.Run("replace leaves other conversations alone", func(t *testing.T) {
		c := NewMessageCache(openTestDB(t))

		base := time.Now()
		require.NoError(t, c.Save(ctx, cachedMsg("m1", "u1", "u3", "keep", base)))
		require.NoError(t, c.ReplaceConversation(ctx, "u1", "u2", nil))

		got, err := c.Conversation(ctx, "u1", "u3")
		require.NoError(t, err)
		require.Len(t, got, 1)
	})

	t.Run("save upserts by id", func(t *testing.T) {
		c := NewMessageCache(openTestDB(t))

		base := time.Now()
		m := cachedMsg("m1", "u1", "u2", "hi", base)
		require.NoError(t, c.Save(ctx, m))

		m.IsRead = true
		require.NoError(t, c.Save(ctx, m))

		got, err := c.Conversation(ctx, "u1", "u2")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, got[0].IsRead)
	})
}
