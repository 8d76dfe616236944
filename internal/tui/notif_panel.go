package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskflowhq/taskflow/internal/core/notify"
	"github.com/taskflowhq/taskflow/internal/core/styles"
)

// renderPanel renders the notification side panel.
func (m *Model) renderPanel(width, height int) string {
	items := m.deps.Notifications.All()

	title := styles.PanelTitleStyle.Render(styles.IconBell + " Notifications")
	if n := m.deps.Notifications.UnreadCount(); n > 0 {
		title += " " + styles.NotifBadgeStyle.Render(fmt.Sprintf("%d", n))
	}

	var lines []string
	switch {
	case m.deps.Notifications.AllLoading() && len(items) == 0:
		lines = append(lines, styles.HelpStyle.Render("loading..."))
	case m.deps.Notifications.AllErr() != "" && len(items) == 0:
		lines = append(lines, styles.ErrorStyle.Render(m.deps.Notifications.AllErr()))
	case len(items) == 0:
		lines = append(lines, styles.HelpStyle.Render("all caught up"))
	default:
		for i, n := range items {
			lines = append(lines, m.renderPanelItem(n, i == m.panelSel, width-4))
		}
	}

	help := styles.HelpStyle.Render("j/k move " + styles.IconDot + " enter mark read")
	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(lines, "\n"),
		help,
	)

	return styles.PanelBorderStyle.
		Width(width - 2).
		Height(height - 2).
		Render(body)
}

func (m *Model) renderPanelItem(n notify.Notification, selected bool, width int) string {
	icon := severityIcon(n.SeverityOrDefault())

	style := styles.NotifReadStyle
	if !n.IsRead {
		style = styles.NotifUnreadStyle
	}

	line := icon + " " + n.Message
	if n.Link != "" {
		line += " " + styles.NotifLinkStyle.Render(styles.IconLink)
	}
	line += " " + styles.NotifTimeStyle.Render(n.CreatedAt.Local().Format("Jan 2 15:04"))

	rendered := style.Width(width).Render(line)
	if selected && m.focus == focusPanel {
		rendered = styles.PanelSelectedItem.Width(width).Render(line)
	}
	return rendered
}

func severityIcon(s notify.Severity) string {
	switch s {
	case notify.SeveritySuccess:
		return styles.IconNotifySuccess
	case notify.SeverityWarning:
		return styles.IconNotifyWarning
	case notify.SeverityError:
		return styles.IconNotifyError
	default:
		return styles.IconNotifyInfo
	}
}
