package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/core/notify"
)

type drainEventsMsg struct{}

// Event is a single push-delivered item crossing from the connection
// goroutines into the program loop.
type Event struct {
	Message      *chat.Message
	Notification *notify.Notification
}

// EventBuffer buffers push events and emits coalesced drain signals. The
// connection handlers push from their own goroutines; the program drains on
// its own schedule.
type EventBuffer struct {
	mu     sync.Mutex
	events []Event
	signal chan struct{}
}

// NewEventBuffer constructs a buffer for async event delivery.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{
		events: make([]Event, 0),
		signal: make(chan struct{}, 1),
	}
}

// PushMessage appends a chat message event and signals the drain.
func (b *EventBuffer) PushMessage(m chat.Message) {
	b.push(Event{Message: &m})
}

// PushNotification appends a notification event and signals the drain.
func (b *EventBuffer) PushNotification(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	b.push(Event{Notification: &n})
}

func (b *EventBuffer) push(e Event) {
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered events and clears the buffer.
func (b *EventBuffer) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, len(b.events))
	copy(out, b.events)
	b.events = b.events[:0]
	return out
}

// WaitForSignal blocks until there are events ready to drain.
func (b *EventBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainEventsMsg{}
	}
}
