package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/internal/core/chat"
	"github.com/taskflowhq/taskflow/internal/realtime"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type ChatCmd struct {
	flags *Flags
	app   *app.App

	withUser   string
	toUser     string
	jsonOutput bool
}

// NewChatCmd creates a new chat command.
func NewChatCmd(flags *Flags, app *app.App) *ChatCmd {
	return &ChatCmd{flags: flags, app: app}
}

// Register adds the chat command to the application.
func (cmd *ChatCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "chat",
		Usage: "Read and send direct messages",
		Commands: []*cli.Command{
			cmd.historyCmd(),
			cmd.sendCmd(),
			cmd.watchCmd(),
		},
	})
	return root
}

func (cmd *ChatCmd) historyCmd() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Show the conversation with another user",
		UsageText: "taskflow chat history --with <user-id> [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "with",
				Usage:       "the other participant's user id",
				Required:    true,
				Destination: &cmd.withUser,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runHistory,
	}
}

func (cmd *ChatCmd) runHistory(ctx context.Context, c *cli.Command) error {
	msgs, err := cmd.app.API.Conversation(ctx, cmd.withUser)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}
	msgs = chat.SortByCreated(msgs)

	// Refresh the local cache so the TUI warm-starts from this snapshot.
	if id, idErr := cmd.app.Identity(); idErr == nil && cmd.app.Messages != nil {
		if err := cmd.app.Messages.ReplaceConversation(ctx, id.ID, cmd.withUser, msgs); err != nil {
			log.Warn().Err(err).Msg("failed to cache conversation")
		}
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, m := range msgs {
			if err := iojson.WriteLine(out, m); err != nil {
				return fmt.Errorf("encode message: %w", err)
			}
		}
		return nil
	}

	if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, "No messages")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, group := range chat.GroupByDay(msgs) {
		_, _ = fmt.Fprintf(w, "-- %s --\t\t\n", group.Day.Format("Mon Jan 2 2006"))
		for _, m := range group.Messages {
			name := m.SenderFullName
			if name == "" {
				name = m.SenderID
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n",
				m.CreatedAt.Local().Format("15:04"), name, m.Content)
		}
	}
	return w.Flush()
}

func (cmd *ChatCmd) sendCmd() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send a direct message",
		UsageText: "taskflow chat send --to <user-id> <message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "to",
				Usage:       "recipient user id",
				Required:    true,
				Destination: &cmd.toUser,
			},
		},
		Action: cmd.runSend,
	}
}

func (cmd *ChatCmd) runSend(ctx context.Context, c *cli.Command) error {
	content := strings.Join(c.Args().Slice(), " ")
	if chat.IsBlank(content) {
		return fmt.Errorf("message content is required")
	}

	msg, err := cmd.app.API.SendMessage(ctx, cmd.toUser, content)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if cmd.app.Messages != nil {
		if err := cmd.app.Messages.Save(ctx, msg); err != nil {
			log.Warn().Err(err).Msg("failed to cache message")
		}
	}

	fmt.Fprintf(c.Root().Writer, "Sent %s\n", msg.ID)
	return nil
}

func (cmd *ChatCmd) watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Stream incoming messages until interrupted",
		UsageText: "taskflow chat watch [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runWatch,
	}
}

func (cmd *ChatCmd) runWatch(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := c.Root().Writer
	mgr := realtime.NewManager(realtime.Options{
		URL:    cmd.flags.Config.ChatHubURL(),
		Event:  realtime.EventReceiveMessage,
		Tokens: cmd.app.Creds.Token,
		Logger: log.With().Str("channel", "chat").Logger(),
	})

	mgr.Open(func(data json.RawMessage) {
		var m chat.Message
		if err := json.Unmarshal(data, &m); err != nil {
			log.Debug().Err(err).Msg("dropping undecodable message")
			return
		}
		if cmd.jsonOutput {
			_ = iojson.WriteLine(out, m)
			return
		}
		name := m.SenderFullName
		if name == "" {
			name = m.SenderID
		}
		fmt.Fprintf(out, "[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04:05"), name, m.Content)
	})
	defer mgr.Close()

	fmt.Fprintln(os.Stderr, "Watching for messages. Press Ctrl-C to stop.")
	<-ctx.Done()
	return nil
}
