package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/internal/commands"
	"github.com/taskflowhq/taskflow/internal/core/config"
	"github.com/taskflowhq/taskflow/internal/core/creds"
	"github.com/taskflowhq/taskflow/internal/core/styles"
	"github.com/taskflowhq/taskflow/internal/data/db"
	"github.com/taskflowhq/taskflow/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser   func()
		taskflowApp = &app.App{}
		database    *db.DB
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "taskflow",
		Usage:     "Chat, notifications, and task management from the terminal",
		UsageText: "taskflow [global options] command [command options]",
		Description: `TaskFlow is a terminal client for the TaskFlow server.

It keeps a live chat conversation and the notification feed on screen over a
single push connection per channel, and exposes the rest of the server's API
(tasks, projects, users, stats) as subcommands.

Run 'taskflow' with no arguments to open the interactive chat view.
Run 'taskflow auth login' first to sign in.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKFLOW_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/taskflow.log)",
				Sources:     cli.EnvVars("TASKFLOW_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKFLOW_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKFLOW_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "server",
				Usage:       "server base URL (overrides config)",
				Sources:     cli.EnvVars("TASKFLOW_SERVER"),
				Destination: &flags.ServerURL,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/taskflow.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "taskflow.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.ServerURL != "" {
				cfg.Server.BaseURL = flags.ServerURL
				if err := cfg.Validate(); err != nil {
					return ctx, err
				}
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.TUI.Theme)
			styles.SetTheme(palette)

			credStore := creds.NewStore(cfg.DataDir)
			client := api.New(cfg.APIBaseURL(), credStore.Token)

			// Open the local cache database. Failure is non-fatal; the
			// client still works against the server without it.
			database, err = db.Open(cfg.DataDir)
			if err != nil {
				log.Warn().Err(err).Msg("failed to open local cache, continuing without it")
				database = nil
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*taskflowApp = *app.NewApp(cfg, client, credStore, database)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, taskflowApp)

	root = commands.NewAuthCmd(flags, taskflowApp).Register(root)
	root = commands.NewChatCmd(flags, taskflowApp).Register(root)
	root = commands.NewNotificationsCmd(flags, taskflowApp).Register(root)
	root = commands.NewTasksCmd(flags, taskflowApp).Register(root)
	root = commands.NewProjectsCmd(flags, taskflowApp).Register(root)
	root = commands.NewUsersCmd(flags, taskflowApp).Register(root)
	root = commands.NewStatsCmd(flags, taskflowApp).Register(root)

	// Register TUI flags on root command
	root.Flags = append(root.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'taskflow --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := root.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
