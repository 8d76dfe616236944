package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow/internal/core/notify"
)

type fakeNotifyAPI struct {
	mu          sync.Mutex
	unread      []notify.Notification
	all         []notify.Notification
	unreadErr   error
	allErr      error
	markReadErr error
	markedRead  []string
}

func (f *fakeNotifyAPI) UnreadNotifications(ctx context.Context) ([]notify.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unread, f.unreadErr
}

func (f *fakeNotifyAPI) AllNotifications(ctx context.Context) ([]notify.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.all, f.allErr
}

func (f *fakeNotifyAPI) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markReadErr != nil {
		return f.markReadErr
	}
	f.markedRead = append(f.markedRead, id)
	return nil
}

func notif(id string, read bool) notify.Notification {
	return notify.Notification{
		ID:        id,
		UserID:    "u1",
		Message:   "notification " + id,
		IsRead:    read,
		CreatedAt: time.Now(),
	}
}

func TestNotificationsLoad(t *testing.T) {
	api := &fakeNotifyAPI{
		unread: []notify.Notification{notif("n1", false)},
		all:    []notify.Notification{notif("n1", false), notif("n2", true)},
	}
	store := NewNotifications(api)

	require.NoError(t, store.LoadUnread(context.Background()))
	require.NoError(t, store.LoadAll(context.Background()))

	assert.Equal(t, 1, store.UnreadCount())
	assert.Len(t, store.All(), 2)
	assert.False(t, store.UnreadLoading())
	assert.False(t, store.AllLoading())
}

func TestNotificationsLoadErrorsAreIndependent(t *testing.T) {
	api := &fakeNotifyAPI{
		unread: []notify.Notification{notif("n1", false)},
		allErr: errors.New("server unavailable"),
	}
	store := NewNotifications(api)

	require.NoError(t, store.LoadUnread(context.Background()))
	require.Error(t, store.LoadAll(context.Background()))

	assert.Empty(t, store.UnreadErr())
	assert.Equal(t, "server unavailable", store.AllErr())
	assert.Equal(t, 1, store.UnreadCount())
}

func TestNotificationsLoadDeduplicates(t *testing.T) {
	api := &fakeNotifyAPI{
		unread: []notify.Notification{notif("n1", false), notif("n1", false), notif("n2", false)},
	}
	store := NewNotifications(api)

	require.NoError(t, store.LoadUnread(context.Background()))

	assert.Equal(t, 2, store.UnreadCount())
}

func TestNotificationsDeliver(t *testing.T) {
	store := NewNotifications(&fakeNotifyAPI{})

	store.Deliver(notif("n1", false))

	require.Equal(t, 1, store.UnreadCount())
	require.Len(t, store.All(), 1)

	// Newest first.
	store.Deliver(notif("n2", false))
	assert.Equal(t, "n2", store.Unread()[0].ID)
	assert.Equal(t, "n2", store.All()[0].ID)
}

func TestNotificationsDeliverDeduplicatesByID(t *testing.T) {
	store := NewNotifications(&fakeNotifyAPI{})

	n := notif("n1", false)
	store.Deliver(n)
	store.Deliver(n)

	assert.Equal(t, 1, store.UnreadCount())
	assert.Len(t, store.All(), 1)
}

func TestNotificationsDeliverReadSkipsUnread(t *testing.T) {
	store := NewNotifications(&fakeNotifyAPI{})

	store.Deliver(notif("n1", true))

	assert.Equal(t, 0, store.UnreadCount())
	assert.Len(t, store.All(), 1)
}

func TestNotificationsMarkRead(t *testing.T) {
	api := &fakeNotifyAPI{
		unread: []notify.Notification{notif("n1", false), notif("n2", false)},
		all:    []notify.Notification{notif("n1", false), notif("n2", false)},
	}
	store := NewNotifications(api)
	require.NoError(t, store.LoadUnread(context.Background()))
	require.NoError(t, store.LoadAll(context.Background()))

	require.NoError(t, store.MarkRead(context.Background(), "n1"))

	assert.Equal(t, []string{"n1"}, api.markedRead)
	assert.Equal(t, 1, store.UnreadCount())
	assert.False(t, containsID(store.Unread(), "n1"))

	// The full list keeps the entry but flips its read flag.
	all := store.All()
	require.Len(t, all, 2)
	for _, n := range all {
		if n.ID == "n1" {
			assert.True(t, n.IsRead)
		}
	}
}

func TestNotificationsMarkReadRollsBackOnFailure(t *testing.T) {
	api := &fakeNotifyAPI{
		unread:      []notify.Notification{notif("n1", false)},
		all:         []notify.Notification{notif("n1", false)},
		markReadErr: errors.New("rejected"),
	}
	store := NewNotifications(api)
	require.NoError(t, store.LoadUnread(context.Background()))
	require.NoError(t, store.LoadAll(context.Background()))

	err := store.MarkRead(context.Background(), "n1")
	require.Error(t, err)

	// Server rejection restores the pre-call view on both lists.
	assert.Equal(t, 1, store.UnreadCount())
	require.Len(t, store.All(), 1)
	assert.False(t, store.All()[0].IsRead)
}

func TestNotificationsUnreadIncreaseHook(t *testing.T) {
	t.Run("deliver fires once per increase", func(t *testing.T) {
		store := NewNotifications(&fakeNotifyAPI{})
		var fired int
		store.OnUnreadIncrease(func() { fired++ })

		store.Deliver(notif("n1", false))
		assert.Equal(t, 1, fired)

		// Duplicate delivery does not grow the set.
		store.Deliver(notif("n1", false))
		assert.Equal(t, 1, fired)

		store.Deliver(notif("n2", false))
		assert.Equal(t, 2, fired)
	})

	t.Run("load fires on growth", func(t *testing.T) {
		api := &fakeNotifyAPI{unread: []notify.Notification{notif("n1", false)}}
		store := NewNotifications(api)
		var fired int
		store.OnUnreadIncrease(func() { fired++ })

		require.NoError(t, store.LoadUnread(context.Background()))
		assert.Equal(t, 1, fired)

		// Reloading the same snapshot is not an increase.
		require.NoError(t, store.LoadUnread(context.Background()))
		assert.Equal(t, 1, fired)
	})

	t.Run("mark read never fires", func(t *testing.T) {
		api := &fakeNotifyAPI{
			unread: []notify.Notification{notif("n1", false)},
			all:    []notify.Notification{notif("n1", false)},
		}
		store := NewNotifications(api)
		var fired int
		store.OnUnreadIncrease(func() { fired++ })

		require.NoError(t, store.LoadUnread(context.Background()))
		require.NoError(t, store.LoadAll(context.Background()))
		require.NoError(t, store.MarkRead(context.Background(), "n1"))

		assert.Equal(t, 1, fired)

		// Dropping back to zero and rising again fires again.
		store.Deliver(notif("n2", false))
		assert.Equal(t, 2, fired)
	})
}

func TestNotificationsAccessorsReturnCopies(t *testing.T) {
	store := NewNotifications(&fakeNotifyAPI{})
	store.Deliver(notif("n1", false))

	unread := store.Unread()
	unread[0].IsRead = true

	assert.False(t, store.Unread()[0].IsRead)
}

func TestNotificationsClear(t *testing.T) {
	api := &fakeNotifyAPI{
		unread: []notify.Notification{notif("n1", false)},
		all:    []notify.Notification{notif("n1", false)},
	}
	store := NewNotifications(api)
	require.NoError(t, store.LoadUnread(context.Background()))
	require.NoError(t, store.LoadAll(context.Background()))

	store.Clear()

	assert.Equal(t, 0, store.UnreadCount())
	assert.Empty(t, store.All())
	assert.Empty(t, store.UnreadErr())
	assert.Empty(t, store.AllErr())
}
