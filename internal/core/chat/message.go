// Package chat defines the direct-message domain types shared by the API
// client, the conversation store, and the TUI.
package chat

import (
	"sort"
	"strings"
	"time"
)

// Message is a single direct message between two users. Messages are
// immutable once created; the server assigns the ID and timestamp.
type Message struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"senderId"`
	SenderFullName string    `json:"senderFullName"`
	ReceiverID     string    `json:"receiverId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	IsRead         bool      `json:"isRead"`
}

// IsBlank reports whether content is empty or whitespace-only. Blank
// messages are rejected locally and never sent to the server.
func IsBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// SortByCreated returns a copy of msgs in chronological order. Stores
// preserve arrival order, which a slow push can violate, so views sort at
// render time when strict chronological display matters.
func SortByCreated(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// DayGroup is a run of messages sharing the same calendar day.
type DayGroup struct {
	Day      time.Time
	Messages []Message
}

// GroupByDay splits msgs into calendar-day runs in the order given. Callers
// that want day headers in chronological order should pass the result of
// SortByCreated.
func GroupByDay(msgs []Message) []DayGroup {
	var groups []DayGroup
	for _, m := range msgs {
		day := m.CreatedAt.Truncate(24 * time.Hour)
		if len(groups) > 0 && groups[len(groups)-1].Day.Equal(day) {
			last := &groups[len(groups)-1]
			last.Messages = append(last.Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Messages: []Message{m}})
	}
	return groups
}
