package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type UsersCmd struct {
	flags *Flags
	app   *app.App

	jsonOutput bool

	createReader iojson.FileReader[api.User]
	updateReader iojson.FileReader[api.User]
}

// NewUsersCmd creates a new users command.
func NewUsersCmd(flags *Flags, app *app.App) *UsersCmd {
	return &UsersCmd{flags: flags, app: app}
}

// Register adds the users command to the application.
func (cmd *UsersCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "users",
		Usage: "Manage users (admin only)",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.getCmd(),
			cmd.createCmd(),
			cmd.updateCmd(),
			cmd.rmCmd(),
		},
	})
	return root
}

func (cmd *UsersCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List all users",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			users, err := cmd.app.API.Users(ctx)
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, u := range users {
					if err := iojson.WriteLine(out, u); err != nil {
						return fmt.Errorf("encode user: %w", err)
					}
				}
				return nil
			}

			if len(users) == 0 {
				fmt.Fprintln(os.Stderr, "No users found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
			for _, u := range users {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.FullName, u.Email, u.Role)
			}
			return w.Flush()
		},
	}
}

func (cmd *UsersCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a single user",
		UsageText: "taskflow users get <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("user id is required")
			}

			user, err := cmd.app.API.UserByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get user: %w", err)
			}
			return iojson.WriteWith(c.Root().Writer, os.Stderr, user)
		},
	}
}

func (cmd *UsersCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a user from a JSON payload",
		UsageText: "taskflow users create -f <user.json>",
		Flags: []cli.Flag{
			cmd.createReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			user, err := cmd.createReader.Read()
			if err != nil {
				return err
			}

			created, err := cmd.app.API.CreateUser(ctx, user)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created %s\n", created.ID)
			return nil
		},
	}
}

func (cmd *UsersCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a user from a JSON payload",
		UsageText: "taskflow users update <id> -f <user.json>",
		Flags: []cli.Flag{
			cmd.updateReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("user id is required")
			}

			user, err := cmd.updateReader.Read()
			if err != nil {
				return err
			}

			if _, err := cmd.app.API.UpdateUser(ctx, id, user); err != nil {
				return fmt.Errorf("update user: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Updated")
			return nil
		},
	}
}

func (cmd *UsersCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a user",
		UsageText: "taskflow users rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("user id is required")
			}

			if err := cmd.app.API.DeleteUser(ctx, id); err != nil {
				return fmt.Errorf("delete user: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Deleted")
			return nil
		},
	}
}
