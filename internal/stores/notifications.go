package stores

import (
	"context"
	"fmt"
	"sync"

	"github.com/taskflowhq/taskflow/internal/core/notify"
)

// NotificationAPI is the slice of the API client the notification store
// consumes.
type NotificationAPI interface {
	UnreadNotifications(ctx context.Context) ([]notify.Notification, error)
	AllNotifications(ctx context.Context) ([]notify.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// Notifications holds the unread and full notification collections and
// keeps them consistent under REST fetches, push delivery, and read-marking.
//
// Invariants: the unread collection is a subset of all by ID, an unread
// entry always has IsRead false, and no collection ever holds two entries
// with the same ID. Both collections are newest-first.
type Notifications struct {
	mu  sync.Mutex
	api NotificationAPI

	unread []notify.Notification
	all    []notify.Notification

	unreadLoading bool
	allLoading    bool
	unreadErr     string
	allErr        string
	unreadSeq     uint64
	allSeq        uint64

	prevUnread       int
	onUnreadIncrease func()
}

// NewNotifications creates an empty notification store backed by api.
func NewNotifications(api NotificationAPI) *Notifications {
	return &Notifications{api: api}
}

// OnUnreadIncrease registers fn to run exactly once each time the unread
// collection grows relative to its previously observed size. Shrinking or
// unchanged sizes never fire. The sound gate hangs off this hook.
func (s *Notifications) OnUnreadIncrease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnreadIncrease = fn
}

// LoadUnread fetches the unread snapshot and replaces the unread collection.
func (s *Notifications) LoadUnread(ctx context.Context) error {
	s.mu.Lock()
	s.unreadSeq++
	seq := s.unreadSeq
	s.unreadLoading = true
	s.unreadErr = ""
	s.mu.Unlock()

	items, err := s.api.UnreadNotifications(ctx)

	s.mu.Lock()
	if seq != s.unreadSeq {
		s.mu.Unlock()
		return nil
	}
	s.unreadLoading = false
	if err != nil {
		s.unreadErr = err.Error()
		s.mu.Unlock()
		return fmt.Errorf("load unread notifications: %w", err)
	}
	s.unread = dedupeByID(items)
	fire := s.observeUnreadLocked()
	s.mu.Unlock()

	if fire != nil {
		fire()
	}
	return nil
}

// LoadAll fetches the full history and replaces the all collection.
func (s *Notifications) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.allSeq++
	seq := s.allSeq
	s.allLoading = true
	s.allErr = ""
	s.mu.Unlock()

	items, err := s.api.AllNotifications(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.allSeq {
		return nil
	}
	s.allLoading = false
	if err != nil {
		s.allErr = err.Error()
		return fmt.Errorf("load notifications: %w", err)
	}
	s.all = dedupeByID(items)
	return nil
}

// Deliver inserts a server-pushed notification at the front of both
// collections. A redelivery of an ID already present is dropped, so the
// push echo of a notification the client already fetched cannot
// double-insert.
func (s *Notifications) Deliver(n notify.Notification) {
	s.mu.Lock()
	if containsID(s.all, n.ID) || containsID(s.unread, n.ID) {
		s.mu.Unlock()
		return
	}
	s.all = append([]notify.Notification{n}, s.all...)
	if !n.IsRead {
		s.unread = append([]notify.Notification{n}, s.unread...)
	}
	fire := s.observeUnreadLocked()
	s.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// MarkRead optimistically removes id from unread and flips its read flag in
// all, then confirms with the server. If the server rejects the call, the
// prior state is restored and the error returned.
func (s *Notifications) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	prevUnread := cloneNotifications(s.unread)
	prevAll := cloneNotifications(s.all)

	s.unread = removeID(s.unread, id)
	for i := range s.all {
		if s.all[i].ID == id {
			s.all[i].IsRead = true
		}
	}
	s.prevUnread = len(s.unread)
	s.mu.Unlock()

	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		s.mu.Lock()
		s.unread = prevUnread
		s.all = prevAll
		// Restoring is a rollback, not a new arrival; it must not ring the
		// unread-increase hook.
		s.prevUnread = len(s.unread)
		s.mu.Unlock()
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

// Unread returns the unread collection, newest first.
func (s *Notifications) Unread() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotifications(s.unread)
}

// All returns the full collection, newest first.
func (s *Notifications) All() []notify.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneNotifications(s.all)
}

// UnreadCount returns the size of the unread collection.
func (s *Notifications) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unread)
}

// UnreadLoading reports whether an unread fetch is outstanding.
func (s *Notifications) UnreadLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadLoading
}

// AllLoading reports whether a full-history fetch is outstanding.
func (s *Notifications) AllLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allLoading
}

// UnreadErr returns the last unread-fetch error message, or "".
func (s *Notifications) UnreadErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unreadErr
}

// AllErr returns the last full-history-fetch error message, or "".
func (s *Notifications) AllErr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allErr
}

// Clear empties both collections on logout. In-flight fetches resolve stale.
func (s *Notifications) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unreadSeq++
	s.allSeq++
	s.unread = nil
	s.all = nil
	s.unreadLoading = false
	s.allLoading = false
	s.unreadErr = ""
	s.allErr = ""
	s.prevUnread = 0
}

// observeUnreadLocked compares the unread size against the previously
// observed size and returns the hook to fire when it grew, nil otherwise.
// The caller invokes the hook after releasing the lock.
func (s *Notifications) observeUnreadLocked() func() {
	n := len(s.unread)
	grew := n > s.prevUnread
	s.prevUnread = n
	if grew && s.onUnreadIncrease != nil {
		return s.onUnreadIncrease
	}
	return nil
}

func dedupeByID(items []notify.Notification) []notify.Notification {
	seen := make(map[string]struct{}, len(items))
	out := make([]notify.Notification, 0, len(items))
	for _, n := range items {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

func containsID(items []notify.Notification, id string) bool {
	for _, n := range items {
		if n.ID == id {
			return true
		}
	}
	return false
}

func removeID(items []notify.Notification, id string) []notify.Notification {
	out := items[:0]
	for _, n := range items {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

func cloneNotifications(items []notify.Notification) []notify.Notification {
	out := make([]notify.Notification, len(items))
	copy(out, items)
	return out
}
