package stores

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow/internal/core/chat"
)

// fakeChatAPI scripts Conversation and SendMessage responses. A nil gate
// makes calls resolve immediately; otherwise Conversation blocks until the
// gate closes, simulating a slow REST response.
type fakeChatAPI struct {
	mu       sync.Mutex
	history  []chat.Message
	err      error
	gate     chan struct{}
	calls    int
	sendErr  error
	nextSend chat.Message
}

func (f *fakeChatAPI) Conversation(ctx context.Context, otherUserID string) ([]chat.Message, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	history := f.history
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return history, err
}

func (f *fakeChatAPI) SendMessage(ctx context.Context, receiverID, content string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return chat.Message{}, f.sendErr
	}
	msg := f.nextSend
	msg.ReceiverID = receiverID
	msg.Content = content
	return msg, nil
}

func msg(id, senderID, content string, at time.Time) chat.Message {
	return chat.Message{ID: id, SenderID: senderID, Content: content, CreatedAt: at}
}

func TestConversationRoundTrip(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	api := &fakeChatAPI{history: []chat.Message{msg("m1", "u1", "hi", t0)}}
	store := NewConversation(api)

	require.NoError(t, store.LoadHistory(context.Background(), "u1"))
	require.Equal(t, 1, store.Len())

	store.Receive(msg("m2", "u2", "hello back", t1))

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestConversationReceiveAppendOnly(t *testing.T) {
	store := NewConversation(&fakeChatAPI{})
	base := time.Now()

	for i, id := range []string{"a", "b", "c"} {
		store.Receive(msg(id, "u2", "x", base.Add(time.Duration(i)*time.Second)))
	}

	m := msg("d", "u2", "last", base.Add(time.Hour))
	store.Receive(m)

	msgs := store.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, m, msgs[3])
}

func TestConversationReceiveDeduplicatesByID(t *testing.T) {
	store := NewConversation(&fakeChatAPI{})
	m := msg("m1", "u2", "once", time.Now())

	store.Receive(m)
	store.Receive(m)

	assert.Equal(t, 1, store.Len())
}

func TestConversationSendEchoNotDuplicated(t *testing.T) {
	api := &fakeChatAPI{nextSend: msg("m5", "u1", "", time.Now())}
	store := NewConversation(api)

	sent, err := store.Send(context.Background(), "u2", "hey")
	require.NoError(t, err)
	assert.Equal(t, "m5", sent.ID)

	// The server echoes the sender's own message over the push channel.
	store.Receive(sent)

	assert.Equal(t, 1, store.Len())
}

func TestConversationSendRejectsBlank(t *testing.T) {
	api := &fakeChatAPI{}
	store := NewConversation(api)

	for _, content := range []string{"", "   ", "\t\n"} {
		_, err := store.Send(context.Background(), "u2", content)
		require.ErrorIs(t, err, ErrEmptyMessage)
	}
	// Blank sends never reach the network.
	assert.Equal(t, 0, store.Len())
}

func TestConversationSendPropagatesAPIError(t *testing.T) {
	api := &fakeChatAPI{sendErr: errors.New("boom")}
	store := NewConversation(api)

	_, err := store.Send(context.Background(), "u2", "hello")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestConversationLoadFailureKeepsMessages(t *testing.T) {
	api := &fakeChatAPI{history: []chat.Message{msg("m1", "u1", "hi", time.Now())}}
	store := NewConversation(api)
	require.NoError(t, store.LoadHistory(context.Background(), "u1"))

	api.mu.Lock()
	api.err = errors.New("server unavailable")
	api.mu.Unlock()

	err := store.LoadHistory(context.Background(), "u1")
	require.Error(t, err)
	assert.False(t, store.Loading())
	assert.Equal(t, "server unavailable", store.Err())
	// Failure stops the loading indicator but does not clear what was
	// already rendered.
	assert.Equal(t, 1, store.Len())
}

func TestConversationSlowFetchKeepsLiveMessages(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	gate := make(chan struct{})
	api := &fakeChatAPI{
		history: []chat.Message{msg("m1", "u1", "hi", t0)},
		gate:    gate,
	}
	store := NewConversation(api)

	done := make(chan error, 1)
	go func() { done <- store.LoadHistory(context.Background(), "u1") }()

	require.Eventually(t, store.Loading, time.Second, time.Millisecond)

	// Push lands while the snapshot is still in flight.
	live := msg("m2", "u1", "fresh", t0.Add(time.Minute))
	store.Receive(live)

	close(gate)
	require.NoError(t, <-done)

	msgs := store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "m2", msgs[1].ID)
}

func TestConversationStaleFetchDiscarded(t *testing.T) {
	gate := make(chan struct{})
	api := &fakeChatAPI{
		history: []chat.Message{msg("old", "u1", "stale", time.Now())},
		gate:    gate,
	}
	store := NewConversation(api)

	done := make(chan error, 1)
	go func() { done <- store.LoadHistory(context.Background(), "u1") }()
	require.Eventually(t, store.Loading, time.Second, time.Millisecond)

	// The user switches conversations before the first fetch resolves.
	store.Clear()
	fresh := msg("new", "u2", "current", time.Now())
	store.Receive(fresh)

	close(gate)
	require.NoError(t, <-done)

	msgs := store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "new", msgs[0].ID)
}

func TestConversationClear(t *testing.T) {
	api := &fakeChatAPI{history: []chat.Message{msg("m1", "u1", "hi", time.Now())}}
	store := NewConversation(api)
	require.NoError(t, store.LoadHistory(context.Background(), "u1"))

	store.Clear()

	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.OtherUserID())
	assert.False(t, store.Loading())
	assert.Empty(t, store.Err())
}
