package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/core/styles"
)

// renderChat renders the conversation as day-grouped lines, oldest first.
func (m *Model) renderChat(width int) string {
	msgs := chat.SortByCreated(m.deps.Conversation.Messages())

	if m.deps.Conversation.Loading() && len(msgs) == 0 {
		return styles.HelpStyle.Render("loading conversation...")
	}
	if err := m.deps.Conversation.Err(); err != "" && len(msgs) == 0 {
		return styles.ErrorStyle.Render("could not load conversation: " + err)
	}
	if len(msgs) == 0 {
		return styles.HelpStyle.Render("no messages yet, say hi")
	}

	var b strings.Builder
	for _, group := range chat.GroupByDay(msgs) {
		header := group.Day.Format("Monday, Jan 2 2006")
		b.WriteString(styles.ChatDayStyle.Render("── "+header+" ──") + "\n")

		for _, msg := range group.Messages {
			b.WriteString(m.renderMessage(msg, width) + "\n")
		}
	}
	return b.String()
}

func (m *Model) renderMessage(msg chat.Message, width int) string {
	name := msg.SenderFullName
	if name == "" {
		name = msg.SenderID
	}

	sender := styles.ChatSenderStyle.
		Foreground(styles.ColorForString(msg.SenderID)).
		Render(name)
	if msg.SenderID == m.deps.Self.ID {
		sender = styles.ChatOwnStyle.Render("you")
	}

	ts := styles.ChatTimeStyle.Render(msg.CreatedAt.Local().Format("15:04"))
	head := sender + " " + styles.IconDot + " " + ts

	content := styles.ChatContentStyle.
		Width(max(width-2, 10)).
		Render(msg.Content)

	return lipgloss.JoinVertical(lipgloss.Left, head, content)
}

func (m *Model) renderInput() string {
	prompt := "> "
	if m.focus != focusChat {
		prompt = "  "
	}
	line := prompt + m.input.View()
	if m.lastErr != "" {
		line += "  " + styles.ErrorStyle.Render(m.lastErr)
	}
	return line
}
