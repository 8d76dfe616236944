package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/core/creds"
	"github.com/taskflowhq/taskflow/internal/core/notify"
	"github.com/taskflowhq/taskflow/internal/realtime"
	"github.com/taskflowhq/taskflow/internal/sound"
	"github.com/taskflowhq/taskflow/internal/stores"
	"github.com/taskflowhq/taskflow/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *app.App

	withUser string
}

// NewTuiCmd creates a new tui command.
func NewTuiCmd(flags *Flags, app *app.App) *TuiCmd {
	return &TuiCmd{flags: flags, app: app}
}

// Flags returns the TUI-specific flags for registration on the root command.
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "with",
			Usage:       "user id to open a conversation with (prompted when omitted)",
			Sources:     cli.EnvVars("TASKFLOW_CHAT_WITH"),
			Destination: &cmd.withUser,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	identity, err := cmd.app.Identity()
	if errors.Is(err, creds.ErrNoIdentity) {
		return fmt.Errorf("not signed in; run 'taskflow auth login' first")
	}
	if err != nil {
		return err
	}

	other, err := cmd.pickConversationPartner(ctx, identity)
	if err != nil {
		return err
	}

	conv := stores.NewConversation(cmd.app.API)
	notifStore := stores.NewNotifications(cmd.app.API)
	cmd.warmStart(ctx, identity, other, conv, notifStore)

	gate := sound.NewGate(&sound.BellPlayer{Out: os.Stdout}, cmd.flags.Config.Sound.On())
	notifStore.OnUnreadIncrease(gate.Trigger)

	events := tui.NewEventBuffer()

	chatMgr := realtime.NewManager(realtime.Options{
		URL:    cmd.flags.Config.ChatHubURL(),
		Event:  realtime.EventReceiveMessage,
		Tokens: cmd.app.Creds.Token,
		Logger: log.With().Str("channel", "chat").Logger(),
	})
	notifMgr := realtime.NewManager(realtime.Options{
		URL:    cmd.flags.Config.NotificationsHubURL(),
		Event:  realtime.EventReceiveNotification,
		Tokens: cmd.app.Creds.Token,
		Logger: log.With().Str("channel", "notifications").Logger(),
	})

	chatMgr.Open(func(data json.RawMessage) {
		var m chat.Message
		if err := json.Unmarshal(data, &m); err != nil {
			log.Debug().Err(err).Msg("dropping undecodable message")
			return
		}
		// Only messages belonging to the open conversation land in the store.
		if m.SenderID != other.ID && m.ReceiverID != other.ID {
			return
		}
		conv.Receive(m)
		events.PushMessage(m)
	})
	defer chatMgr.Close()

	notifMgr.Open(func(data json.RawMessage) {
		var n notify.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			log.Debug().Err(err).Msg("dropping undecodable notification")
			return
		}
		notifStore.Deliver(n)
		events.PushNotification(n)
	})
	defer notifMgr.Close()

	return tui.Run(tui.Deps{
		Self:          api.User{ID: identity.ID, FullName: identity.FullName, Email: identity.Email, Role: api.Role(identity.Role)},
		Other:         other,
		Conversation:  conv,
		Notifications: notifStore,
		ChatConn:      chatMgr,
		NotifConn:     notifMgr,
		Events:        events,
		Gate:          gate,
		MsgCache:      cmd.app.Messages,
		NotifCache:    cmd.app.Notifications,
		Logger:        log.With().Str("component", "tui").Logger(),
	})
}

// pickConversationPartner resolves --with, or prompts with a user list.
func (cmd *TuiCmd) pickConversationPartner(ctx context.Context, self creds.Identity) (api.User, error) {
	if cmd.withUser != "" {
		user, err := cmd.app.API.UserByID(ctx, cmd.withUser)
		if err != nil {
			return api.User{}, fmt.Errorf("resolve user %q: %w", cmd.withUser, err)
		}
		return user, nil
	}

	users, err := cmd.app.API.Users(ctx)
	if err != nil {
		return api.User{}, fmt.Errorf("list users: %w", err)
	}

	var options []huh.Option[string]
	byID := make(map[string]api.User, len(users))
	for _, u := range users {
		if u.ID == self.ID {
			continue
		}
		byID[u.ID] = u
		options = append(options, huh.NewOption(fmt.Sprintf("%s <%s>", u.FullName, u.Email), u.ID))
	}
	if len(options) == 0 {
		return api.User{}, fmt.Errorf("no other users to chat with")
	}

	var picked string
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Chat with").
			Options(options...).
			Value(&picked),
	))
	if err := form.Run(); err != nil {
		return api.User{}, err
	}
	return byID[picked], nil
}

// warmStart seeds the in-memory stores from the local cache so the first
// paint shows the last known state instead of empty panes.
func (cmd *TuiCmd) warmStart(ctx context.Context, self creds.Identity, other api.User, conv *stores.Conversation, notifStore *stores.Notifications) {
	if cmd.app.Messages != nil {
		cached, err := cmd.app.Messages.Conversation(ctx, self.ID, other.ID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read cached conversation")
		}
		for _, m := range cached {
			conv.Receive(m)
		}
	}

	if cmd.app.Notifications != nil {
		cached, err := cmd.app.Notifications.List(ctx, self.ID, false)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read cached notifications")
		}
		// Deliver prepends, so walk oldest-first to end up newest-first.
		for i := len(cached) - 1; i >= 0; i-- {
			notifStore.Deliver(cached[i])
		}
	}
}
