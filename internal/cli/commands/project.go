package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// ProjectCommands creates project management commands
func ProjectCommands(connect Connector) []*cobra.Command {
	commands := []*cobra.Command{}

	// traefiker project create <name>
	createCmd := &cobra.Command{
		Use:   "create <project-name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
				project, err := b.Services.CreateProject(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project %s created\n", project.Name)
				return nil
			})
		},
	}
	commands = append(commands, createCmd)

	// traefiker project list
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List all projects",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
				projects, err := b.Services.ListProjects(ctx)
				if err != nil {
					return err
				}
				return p.projects(projects)
			})
		},
	}
	commands = append(commands, listCmd)

	// traefiker project services <name>
	servicesCmd := &cobra.Command{
		Use:   "services <project-name>",
		Short: "List the services of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}
			return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
				records, err := b.Services.ListProjectServices(ctx, args[0])
				if err != nil {
					return err
				}
				return p.records(records)
			})
		},
	}
	commands = append(commands, servicesCmd)

	return commands
}
