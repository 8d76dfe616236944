// Package stores holds the in-memory UI state for the realtime subsystem:
// the active conversation and the notification collections. Stores merge
// REST-fetched snapshots with server-pushed events and expose the ordering
// and idempotence guarantees the views depend on.
package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/taskflowhq/taskflow/internal/core/chat"
)

// ErrEmptyMessage rejects a send whose content is empty or whitespace-only.
// No network call is made for these.
var ErrEmptyMessage = errors.New("stores: message content is empty")

// ChatAPI is the slice of the API client the conversation store consumes.
type ChatAPI interface {
	Conversation(ctx context.Context, otherUserID string) ([]chat.Message, error)
	SendMessage(ctx context.Context, receiverID, content string) (chat.Message, error)
}

// Conversation holds the ordered message history for the one active
// conversation. At most one conversation is live per client instance; the
// owning view clears the store on leave.
//
// Snapshots are seq-tagged: every LoadHistory call takes the next fetch
// sequence number, and a fetch that resolves after a newer fetch (or a
// Clear) was issued is discarded instead of clobbering newer state. A
// message pushed while a fetch is in flight survives the snapshot replace.
type Conversation struct {
	mu          sync.Mutex
	api         ChatAPI
	otherUserID string
	msgs        []chat.Message
	entrySeq    map[string]uint64 // message ID -> fetchSeq at insertion
	loading     bool
	lastErr     string
	fetchSeq    uint64
}

// NewConversation creates an empty conversation store backed by api.
func NewConversation(api ChatAPI) *Conversation {
	return &Conversation{
		api:      api,
		entrySeq: make(map[string]uint64),
	}
}

// LoadHistory fetches the full history with otherUserID and applies it as
// an authoritative snapshot. On failure the loading flag clears, the error
// is recorded, and existing messages are left untouched.
func (s *Conversation) LoadHistory(ctx context.Context, otherUserID string) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.lastErr = ""
	s.otherUserID = otherUserID
	s.mu.Unlock()

	msgs, err := s.api.Conversation(ctx, otherUserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.fetchSeq {
		// Superseded by a newer fetch or a Clear; that owner manages the
		// loading and error flags now.
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		return fmt.Errorf("load history: %w", err)
	}

	s.applySnapshotLocked(seq, msgs)
	return nil
}

// applySnapshotLocked replaces the store contents with snapshot, keeping
// any message that was pushed live after this fetch was issued and that the
// snapshot does not contain.
func (s *Conversation) applySnapshotLocked(seq uint64, snapshot []chat.Message) {
	inSnapshot := make(map[string]struct{}, len(snapshot))
	for _, m := range snapshot {
		inSnapshot[m.ID] = struct{}{}
	}

	var live []chat.Message
	for _, m := range s.msgs {
		if s.entrySeq[m.ID] < seq {
			continue
		}
		if _, ok := inSnapshot[m.ID]; ok {
			continue
		}
		live = append(live, m)
	}

	s.msgs = make([]chat.Message, 0, len(snapshot)+len(live))
	s.entrySeq = make(map[string]uint64, len(snapshot)+len(live))
	for _, m := range snapshot {
		s.appendLocked(seq, m)
	}
	for _, m := range live {
		s.appendLocked(seq, m)
	}
}

// appendLocked appends m unless a message with the same ID is already
// present. Keying on the server-assigned identifier is what keeps a
// self-sent message and its pushed echo from double-inserting.
func (s *Conversation) appendLocked(seq uint64, m chat.Message) bool {
	if _, ok := s.entrySeq[m.ID]; ok {
		return false
	}
	s.entrySeq[m.ID] = seq
	s.msgs = append(s.msgs, m)
	return true
}

// Send posts content to receiverID and appends the server-confirmed message.
// Blank content is rejected locally with ErrEmptyMessage.
func (s *Conversation) Send(ctx context.Context, receiverID, content string) (chat.Message, error) {
	if chat.IsBlank(content) {
		return chat.Message{}, ErrEmptyMessage
	}

	msg, err := s.api.SendMessage(ctx, receiverID, content)
	if err != nil {
		return chat.Message{}, fmt.Errorf("send message: %w", err)
	}

	s.mu.Lock()
	s.appendLocked(s.fetchSeq, msg)
	s.mu.Unlock()
	return msg, nil
}

// Receive appends a server-pushed message. Called by the connection
// manager's event callback; duplicates by ID are dropped.
func (s *Conversation) Receive(msg chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(s.fetchSeq, msg)
}

// Messages returns the messages in arrival order. Views that need strict
// chronological display should sort by CreatedAt at render time.
func (s *Conversation) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]chat.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

// Len returns the number of messages held.
func (s *Conversation) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

// Loading reports whether a history fetch is outstanding.
func (s *Conversation) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last fetch error message, or "" when the last fetch
// succeeded.
func (s *Conversation) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// OtherUserID returns the conversation partner of the active conversation.
func (s *Conversation) OtherUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.otherUserID
}

// Clear empties the store when the owning view unmounts. Bumping the fetch
// sequence makes any still-outstanding fetch resolve as stale, so a slow
// response can never repopulate a conversation the user has left.
func (s *Conversation) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchSeq++
	s.msgs = nil
	s.entrySeq = make(map[string]uint64)
	s.otherUserID = ""
	s.loading = false
	s.lastErr = ""
}
