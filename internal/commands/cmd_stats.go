package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type StatsCmd struct {
	flags *Flags
	app   *app.App

	startDate  string
	endDate    string
	jsonOutput bool
}

// NewStatsCmd creates a new stats command.
func NewStatsCmd(flags *Flags, app *app.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: app}
}

// Register adds the stats command to the application.
func (cmd *StatsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "stats",
		Usage: "Admin dashboard statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runOverview,
		Commands: []*cli.Command{
			cmd.statusCmd(),
			cmd.projectsCmd(),
			cmd.usersCmd(),
			cmd.timelineCmd(),
		},
	})
	return root
}

func (cmd *StatsCmd) runOverview(ctx context.Context, c *cli.Command) error {
	stats, err := cmd.app.API.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, stats)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Users\t%d\n", stats.TotalUsers)
	_, _ = fmt.Fprintf(w, "Projects\t%d\n", stats.TotalProjects)
	_, _ = fmt.Fprintf(w, "Tasks\t%d\n", stats.TotalTasks)
	_, _ = fmt.Fprintf(w, "  pending\t%d\n", stats.PendingTasks)
	_, _ = fmt.Fprintf(w, "  in progress\t%d\n", stats.InProgressTasks)
	_, _ = fmt.Fprintf(w, "  completed\t%d\n", stats.CompletedTasks)
	_, _ = fmt.Fprintf(w, "  overdue\t%d\n", stats.OverdueTasks)
	return w.Flush()
}

func (cmd *StatsCmd) statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Task counts by status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			breakdown, err := cmd.app.API.StatsByStatus(ctx)
			if err != nil {
				return fmt.Errorf("load status stats: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				return iojson.WriteWith(out, os.Stderr, breakdown)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "Pending\t%d\n", breakdown.Pending)
			_, _ = fmt.Fprintf(w, "InProgress\t%d\n", breakdown.InProgress)
			_, _ = fmt.Fprintf(w, "Completed\t%d\n", breakdown.Completed)
			_, _ = fmt.Fprintf(w, "Cancelled\t%d\n", breakdown.Cancelled)
			_, _ = fmt.Fprintf(w, "Overdue\t%d\n", breakdown.Overdue)
			return w.Flush()
		},
	}
}

func (cmd *StatsCmd) projectsCmd() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "Task counts per project",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rows, err := cmd.app.API.StatsPerProject(ctx)
			if err != nil {
				return fmt.Errorf("load per-project stats: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, r := range rows {
					if err := iojson.WriteLine(out, r); err != nil {
						return err
					}
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "PROJECT\tTASKS")
			for _, r := range rows {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", r.ProjectName, r.TaskCount)
			}
			return w.Flush()
		},
	}
}

func (cmd *StatsCmd) usersCmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Task counts per user",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rows, err := cmd.app.API.StatsPerUser(ctx)
			if err != nil {
				return fmt.Errorf("load per-user stats: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, r := range rows {
					if err := iojson.WriteLine(out, r); err != nil {
						return err
					}
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "USER\tTASKS")
			for _, r := range rows {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", r.UserName, r.TaskCount)
			}
			return w.Flush()
		},
	}
}

func (cmd *StatsCmd) timelineCmd() *cli.Command {
	return &cli.Command{
		Name:      "timeline",
		Usage:     "Created and completed tasks over a date range",
		UsageText: "taskflow stats timeline --start 2026-01-01 --end 2026-02-01",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "start",
				Usage:       "range start (YYYY-MM-DD)",
				Required:    true,
				Destination: &cmd.startDate,
			},
			&cli.StringFlag{
				Name:        "end",
				Usage:       "range end (YYYY-MM-DD)",
				Required:    true,
				Destination: &cmd.endDate,
			},
			&cli.BoolFlag{
				Name:        "json",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			rows, err := cmd.app.API.StatsOverTime(ctx, cmd.startDate, cmd.endDate)
			if err != nil {
				return fmt.Errorf("load timeline stats: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, r := range rows {
					if err := iojson.WriteLine(out, r); err != nil {
						return err
					}
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tCREATED\tCOMPLETED")
			for _, r := range rows {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", r.Date, r.Created, r.Completed)
			}
			return w.Flush()
		},
	}
}
