package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/internal/core/notify"
	"github.com/taskflowhq/taskflow/internal/realtime"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type NotificationsCmd struct {
	flags *Flags
	app   *app.App

	showAll    bool
	jsonOutput bool

	sendReader iojson.FileReader[api.CreateNotificationRequest]
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags, app *app.App) *NotificationsCmd {
	return &NotificationsCmd{flags: flags, app: app}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "List, acknowledge, and stream notifications",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.readCmd(),
			cmd.watchCmd(),
			cmd.sendCmd(),
		},
	})
	return root
}

func (cmd *NotificationsCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List notifications (unread by default)",
		UsageText: "taskflow notifications ls [--all] [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "all",
				Aliases:     []string{"a"},
				Usage:       "include notifications already read",
				Destination: &cmd.showAll,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *NotificationsCmd) runLs(ctx context.Context, c *cli.Command) error {
	var (
		items []notify.Notification
		err   error
	)
	if cmd.showAll {
		items, err = cmd.app.API.AllNotifications(ctx)
	} else {
		items, err = cmd.app.API.UnreadNotifications(ctx)
	}
	if err != nil {
		return fmt.Errorf("list notifications: %w", err)
	}

	if cmd.showAll {
		if id, idErr := cmd.app.Identity(); idErr == nil && cmd.app.Notifications != nil {
			if err := cmd.app.Notifications.Replace(ctx, id.ID, items); err != nil {
				log.Warn().Err(err).Msg("failed to cache notifications")
			}
		}
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, n := range items {
			if err := iojson.WriteLine(out, n); err != nil {
				return fmt.Errorf("encode notification: %w", err)
			}
		}
		return nil
	}

	if len(items) == 0 {
		fmt.Fprintln(os.Stderr, "No notifications")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tWHEN\tSEV\tREAD\tMESSAGE")
	for _, n := range items {
		read := ""
		if n.IsRead {
			read = "read"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			n.ID, n.CreatedAt.Local().Format("Jan 2 15:04"), n.SeverityOrDefault(), read, n.Message)
	}
	return w.Flush()
}

func (cmd *NotificationsCmd) readCmd() *cli.Command {
	return &cli.Command{
		Name:      "read",
		Usage:     "Mark a notification as read",
		UsageText: "taskflow notifications read <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("notification id is required")
			}

			if err := cmd.app.API.MarkNotificationRead(ctx, id); err != nil {
				return fmt.Errorf("mark read: %w", err)
			}
			if cmd.app.Notifications != nil {
				if err := cmd.app.Notifications.MarkRead(ctx, id); err != nil {
					log.Warn().Err(err).Msg("failed to cache read flag")
				}
			}

			fmt.Fprintln(c.Root().Writer, "Marked read")
			return nil
		},
	}
}

func (cmd *NotificationsCmd) watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Stream incoming notifications until interrupted",
		UsageText: "taskflow notifications watch [--json]",
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

func (cmd *NotificationsCmd) runWatch(ctx context.Context, c *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	out := c.Root().Writer
	mgr := realtime.NewManager(realtime.Options{
		URL:    cmd.flags.Config.NotificationsHubURL(),
		Event:  realtime.EventReceiveNotification,
		Tokens: cmd.app.Creds.Token,
		Logger: log.With().Str("channel", "notifications").Logger(),
	})

	mgr.Open(func(data json.RawMessage) {
		var n notify.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			log.Debug().Err(err).Msg("dropping undecodable notification")
			return
		}
		if cmd.jsonOutput {
			_ = iojson.WriteLine(out, n)
			return
		}
		fmt.Fprintf(out, "[%s] %s\n", n.SeverityOrDefault(), n.Message)
	})
	defer mgr.Close()

	fmt.Fprintln(os.Stderr, "Watching for notifications. Press Ctrl-C to stop.")
	<-ctx.Done()
	return nil
}

func (cmd *NotificationsCmd) sendCmd() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Create a notification for a user (admin only)",
		UsageText: "taskflow notifications send -f <payload.json>",
		Flags: []cli.Flag{
			cmd.sendReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := cmd.sendReader.Read()
			if err != nil {
				return err
			}

			n, err := cmd.app.API.CreateNotification(ctx, req)
			if err != nil {
				return fmt.Errorf("create notification: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created %s\n", n.ID)
			return nil
		},
	}
}
