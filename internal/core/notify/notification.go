// Package notify defines the notification domain types shared by the API
// client, the notification store, and the TUI.
package notify

import "time"

// Severity categorizes a notification for display purposes. The server may
// omit it, in which case SeverityInfo applies.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a single user notification. Only the read flag is mutable,
// and it transitions false to true exactly once, client-initiated and
// confirmed by the server.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead"`
	Severity  Severity  `json:"type,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SeverityOrDefault returns the notification's severity, defaulting to
// SeverityInfo when the server omitted it or sent an unknown value.
func (n Notification) SeverityOrDefault() Severity {
	switch n.Severity {
	case SeveritySuccess, SeverityWarning, SeverityError, SeverityInfo:
		return n.Severity
	default:
		return SeverityInfo
	}
}
