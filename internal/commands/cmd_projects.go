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

type ProjectsCmd struct {
	flags *Flags
	app   *app.App

	jsonOutput bool

	createReader iojson.FileReader[api.CreateProjectRequest]
	updateReader iojson.FileReader[api.UpdateProjectRequest]
}

// NewProjectsCmd creates a new projects command.
func NewProjectsCmd(flags *Flags, app *app.App) *ProjectsCmd {
	return &ProjectsCmd{flags: flags, app: app}
}

// Register adds the projects command to the application.
func (cmd *ProjectsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "projects",
		Usage: "Manage projects",
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

func (cmd *ProjectsCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List all projects",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			projects, err := cmd.app.API.Projects(ctx)
			if err != nil {
				return fmt.Errorf("list projects: %w", err)
			}

			out := c.Root().Writer
			if cmd.jsonOutput {
				for _, p := range projects {
					if err := iojson.WriteLine(out, p); err != nil {
						return fmt.Errorf("encode project: %w", err)
					}
				}
				return nil
			}

			if len(projects) == 0 {
				fmt.Fprintln(os.Stderr, "No projects found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tOWNER\tTASKS")
			for _, p := range projects {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Owner.FullName, p.TaskCount)
			}
			return w.Flush()
		},
	}
}

func (cmd *ProjectsCmd) getCmd() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a single project with its tasks",
		UsageText: "taskflow projects get <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("project id is required")
			}

			project, err := cmd.app.API.ProjectByID(ctx, id)
			if err != nil {
				return fmt.Errorf("get project: %w", err)
			}
			return iojson.WriteWith(c.Root().Writer, os.Stderr, project)
		},
	}
}

func (cmd *ProjectsCmd) createCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a project from a JSON payload",
		UsageText: "taskflow projects create -f <project.json>",
		Flags: []cli.Flag{
			cmd.createReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := cmd.createReader.Read()
			if err != nil {
				return err
			}

			created, err := cmd.app.API.CreateProject(ctx, req)
			if err != nil {
				return fmt.Errorf("create project: %w", err)
			}

			fmt.Fprintf(c.Root().Writer, "Created %s\n", created.ID)
			return nil
		},
	}
}

func (cmd *ProjectsCmd) updateCmd() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update a project from a JSON payload",
		UsageText: "taskflow projects update -f <project.json>",
		Flags: []cli.Flag{
			cmd.updateReader.Flag(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := cmd.updateReader.Read()
			if err != nil {
				return err
			}

			if _, err := cmd.app.API.UpdateProject(ctx, req); err != nil {
				return fmt.Errorf("update project: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Updated")
			return nil
		},
	}
}

func (cmd *ProjectsCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a project",
		UsageText: "taskflow projects rm <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("project id is required")
			}

			if err := cmd.app.API.DeleteProject(ctx, id); err != nil {
				return fmt.Errorf("delete project: %w", err)
			}

			fmt.Fprintln(c.Root().Writer, "Deleted")
			return nil
		},
	}
}
