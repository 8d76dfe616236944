package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskflowhq/taskflow/internal/core/styles"
	"github.com/taskflowhq/taskflow/internal/realtime"
)

// renderStatusBar renders the bottom bar: identity, unread badge, and the
// state of both push connections.
func (m *Model) renderStatusBar() string {
	left := styles.IconMail + " " + m.deps.Other.FullName

	unread := ""
	if n := m.deps.Notifications.UnreadCount(); n > 0 {
		unread = styles.NotifBadgeStyle.Render(fmt.Sprintf("%d unread", n))
	}

	conns := "chat " + connIndicator(m.deps.ChatConn) +
		"  notif " + connIndicator(m.deps.NotifConn)

	right := conns
	if unread != "" {
		right = unread + "  " + conns
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	bar := left + lipgloss.NewStyle().Width(gap).Render("") + right

	return styles.StatusBarStyle.Width(m.width).Render(bar)
}

// connIndicator maps a connection's state to a colored icon. A degraded
// connection renders an explicit marker so the user knows live updates are
// unavailable until they sign in again.
func connIndicator(c ConnStatus) string {
	if c == nil {
		return styles.StatusOfflineStyle.Render(styles.IconConnOffline)
	}
	if c.Degraded() {
		return styles.StatusDegradedStyle.Render(styles.IconConnOffline + " auth")
	}

	switch c.State() {
	case realtime.StateConnected:
		return styles.StatusOnlineStyle.Render(styles.IconConnOnline)
	case realtime.StateConnecting, realtime.StateReconnecting:
		return styles.StatusPendingStyle.Render(styles.IconConnPending)
	default:
		return styles.StatusOfflineStyle.Render(styles.IconConnOffline)
	}
}
