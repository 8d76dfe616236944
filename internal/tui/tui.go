// Package tui implements the Bubble Tea chat and notification client.
package tui

import (
	"github.com/rs/zerolog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/data/cache"
	"github.com/taskflowhq/taskflow/internal/realtime"
	"github.com/taskflowhq/taskflow/internal/sound"
	"github.com/taskflowhq/taskflow/internal/stores"
)

// ConnStatus is the slice of the connection manager the status bar reads.
type ConnStatus interface {
	State() realtime.State
	Degraded() bool
}

// Deps carries everything the program needs. The command layer owns the
// lifecycle of all of it; the TUI only reads and calls.
type Deps struct {
	Self  api.User
	Other api.User

	Conversation  *stores.Conversation
	Notifications *stores.Notifications

	ChatConn  ConnStatus
	NotifConn ConnStatus

	Events *EventBuffer
	Gate   *sound.Gate

	// Caches may be nil when the local database could not be opened.
	MsgCache   *cache.MessageCache
	NotifCache *cache.NotificationCache

	Logger zerolog.Logger
}

// Run starts the program and blocks until it exits.
func Run(deps Deps) error {
	p := tea.NewProgram(NewModel(deps), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
