package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/internal/core/creds"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type AuthCmd struct {
	flags *Flags
	app   *app.App

	email    string
	password string

	regName  string
	regUser  string
	regPhone string

	jsonOutput bool
}

// NewAuthCmd creates a new auth command.
func NewAuthCmd(flags *Flags, app *app.App) *AuthCmd {
	return &AuthCmd{flags: flags, app: app}
}

// Register adds the auth command to the application.
func (cmd *AuthCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign out, and manage the stored session",
		Commands: []*cli.Command{
			cmd.loginCmd(),
			cmd.logoutCmd(),
			cmd.registerCmd(),
			cmd.whoamiCmd(),
		},
	})
	return root
}

func (cmd *AuthCmd) loginCmd() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Sign in and store the session token",
		UsageText: "taskflow auth login [--email <email>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "account email (prompted when omitted)",
				Destination: &cmd.email,
			},
		},
		Action: cmd.runLogin,
	}
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	var fields []huh.Field
	if cmd.email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(validateRequired("email")).
			Value(&cmd.email))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Validate(validateRequired("password")).
		Value(&cmd.password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	result, err := cmd.app.API.Login(ctx, api.LoginRequest{
		Email:    cmd.email,
		Password: cmd.password,
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := cmd.app.Creds.Save(result.Token); err != nil {
		return err
	}
	if err := cmd.app.Creds.SaveIdentity(creds.Identity{
		ID:       result.User.ID,
		FullName: result.User.FullName,
		Email:    result.User.Email,
		Role:     string(result.User.Role),
	}); err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "Signed in as %s (%s)\n", result.User.FullName, result.User.Role)
	return nil
}

func (cmd *AuthCmd) logoutCmd() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored session token",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cmd.app.Creds.Clear(); err != nil {
				return err
			}
			if err := cmd.app.Creds.ClearIdentity(); err != nil {
				return err
			}
			fmt.Fprintln(c.Root().Writer, "Signed out")
			return nil
		},
	}
}

func (cmd *AuthCmd) registerCmd() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Create a new account",
		UsageText: "taskflow auth register [--email <email>] [--name <full name>]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Destination: &cmd.email,
			},
			&cli.StringFlag{
				Name:        "name",
				Usage:       "full name",
				Destination: &cmd.regName,
			},
			&cli.StringFlag{
				Name:        "username",
				Destination: &cmd.regUser,
			},
			&cli.StringFlag{
				Name:        "phone",
				Destination: &cmd.regPhone,
			},
		},
		Action: cmd.runRegister,
	}
}

func (cmd *AuthCmd) runRegister(ctx context.Context, c *cli.Command) error {
	var fields []huh.Field
	if cmd.regName == "" {
		fields = append(fields, huh.NewInput().
			Title("Full name").
			Validate(validateRequired("full name")).
			Value(&cmd.regName))
	}
	if cmd.regUser == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Validate(validateRequired("username")).
			Value(&cmd.regUser))
	}
	if cmd.email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(validateRequired("email")).
			Value(&cmd.email))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Validate(validateRequired("password")).
		Value(&cmd.password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	user, err := cmd.app.API.Register(ctx, api.RegisterRequest{
		Username:    cmd.regUser,
		FullName:    cmd.regName,
		Email:       cmd.email,
		PhoneNumber: cmd.regPhone,
		Password:    cmd.password,
	})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "Account created for %s. Run 'taskflow auth login' to sign in.\n", user.Email)
	return nil
}

func (cmd *AuthCmd) whoamiCmd() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in identity",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id, err := cmd.app.Identity()
			if err != nil {
				return err
			}
			if cmd.jsonOutput {
				return iojson.WriteLine(c.Root().Writer, id)
			}
			fmt.Fprintf(c.Root().Writer, "%s <%s> (%s)\n", id.FullName, id.Email, id.Role)
			return nil
		},
	}
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
