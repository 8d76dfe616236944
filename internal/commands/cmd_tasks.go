package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskflowhq/taskflow/internal/api"
	"github.com/taskflowhq/taskflow/internal/app"
	"github.com/taskflowhq/taskflow/pkg/iojson"
)

type TasksCmd struct {
	flags *Flags
	app   *app.App

	projectFilter string
	statusFilter  string
	jsonOutput    bool

	createReader iojson.FileReader[api.CreateTaskRequest]
	updateReader iojson.FileReader[api.UpdateTaskRequest]
}

// NewTasksCmd creates a new tasks command.
func NewTasksCmd(flags *Flags, app *app.App) *TasksCmd {
	return &TasksCmd{flags: flags, app: app}
}

// Register adds the tasks command to the application.
func (cmd *TasksCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "tasks",
		Usage: "List and manage tasks",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.getCmd(),
			cmd.createCmd(),
			cmd.updateCmd(),
			cmd.statusCmd(),
			cmd.rmCmd(),
		},
	})
	return root
}

func (cmd *TasksCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List tasks visible to the signed-in user",
		UsageText: "taskflow tasks ls [--project <id>] [--status <status>] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "project",
				Aliases:     []string{"p"},
				Usage:       "only tasks in this project",
				Destination: &cmd.projectFilter,
			},
			&cli.StringFlag{
				Name:        "status",
				Aliases:     []string{"s"},
				Usage:       "only tasks with this status (Pending, InProgress, Completed)",
				Destination: &cmd.statusFilter,
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

func (cmd *TasksCmd) runLs(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.app.API.Tasks(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	filtered := tasks[:0]
	for _, t := range tasks {
		if cmd.projectFilter != "" && t.ProjectID != cmd.projectFilter {
			continue
		}
		if cmd.statusFilter != "" && !strings.EqualFold(t.Status, cmd.statusFilter) {
			continue
		}
		filtered = append(filtered, t)
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		for _, t := range filtered {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	if len(filtered) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPROJECT\tASSIGNEES")
	for _, t := range filtered {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, t.Status, t.ProjectName, strings.Join(t.AssignedUserNames, ", "))
	}
	return w.Flush()
}

func (cmd *TasksCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a single task",
		UsageText: "taskflow tasks get <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("task id is required")
			}

			task, err := cmd.app.API.TaskByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get task: %w", err)
			}
			return iojson.WriteWith(c.Root().Writer, os.Stderr, task)
		},
	}
}

func (cmd *TasksCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a task from a JSON payload",
		UsageText: "taskflow tasks create -f <task.json>",
		Flags: []cli.Flag{
			cmd.createReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := cmd.createReader.Read()
			if err != nil {
				return err
			}

			created, err := cmd.app.API.CreateTask(ctx, req)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created %s\n", created.ID)
			return nil
		},
	}
}

func (cmd *TasksCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a task from a JSON payload",
		UsageText: "taskflow tasks update -f <task.json>",
		Flags: []cli.Flag{
			cmd.updateReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := cmd.updateReader.Read()
			if err != nil {
				return err
			}

			if _, err := cmd.app.API.UpdateTask(ctx, req); err != nil {
				return fmt.Errorf("update task: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Updated")
			return nil
		},
	}
}

func (cmd *TasksCmd) statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Change a task's status",
		UsageText: "taskflow tasks status <id> <Pending|InProgress|Completed>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().Get(0)
			statusArg := c.Args().Get(1)
			if id == "" || statusArg == "" {
				return fmt.Errorf("task id and status are required")
			}

			status := api.ParseTaskStatus(statusArg)
			if !strings.EqualFold(status.String(), statusArg) {
				return fmt.Errorf("unknown status %q (want Pending, InProgress, or Completed)", statusArg)
			}

			if err := cmd.app.API.ChangeTaskStatus(ctx, id, status); err != nil {
				return fmt.Errorf("change status: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Task %s is now %s\n", id, status)
			return nil
		},
	}
}

func (cmd *TasksCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		UsageText: "taskflow tasks rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("task id is required")
			}

			if err := cmd.app.API.DeleteTask(ctx, id); err != nil {
				return fmt.Errorf("delete task: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Deleted")
			return nil
		},
	}
}
