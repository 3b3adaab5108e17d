package commands

import (
	"context"
	"fmt"
	"strings"

	"traefiker/internal/db"
	"traefiker/internal/service"

	"github.com/spf13/cobra"
)

// ServiceCommands creates service management commands
func ServiceCommands(connect Connector) []*cobra.Command {
	commands := []*cobra.Command{}

	// traefiker service create <name>
	createCmd := &cobra.Command{
		Use:   "create <service-name>",
		Short: "Create a service and provision its container",
		Long: `Create a service routed by the given hosts. The container is pulled,
created and started in the background; without --server the command waits
for it to finish.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateRequest{Name: args[0]}
			req.Image, _ = cmd.Flags().GetString("image")
			req.Project, _ = cmd.Flags().GetString("project")
			req.Owner, _ = cmd.Flags().GetString("owner")
			req.Hosts, _ = cmd.Flags().GetStringSlice("host")

			return runMutation(cmd, connect, db.StatusRunning, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Create(ctx, req)
			})
		},
	}
	createCmd.Flags().StringP("image", "i", "", "Container image (required)")
	createCmd.Flags().StringP("project", "p", "", "Project the service belongs to (required)")
	createCmd.Flags().String("owner", "", "Owner recorded on the service")
	createCmd.Flags().StringSlice("host", nil, "Host routed to the service (repeatable)")
	_ = createCmd.MarkFlagRequired("image")
	_ = createCmd.MarkFlagRequired("project")
	addWaitFlags(createCmd)
	commands = append(commands, createCmd)

	// traefiker service update <name>
	updateCmd := &cobra.Command{
		Use:   "update <service-name>",
		Short: "Change hosts, environment or redirects and recreate the container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := updateRequestFromFlags(cmd)
			if err != nil {
				return err
			}
			return runMutation(cmd, connect, db.StatusRunning, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Update(ctx, args[0], req)
			})
		},
	}
	updateCmd.Flags().StringSlice("host", nil, "Replace the routed hosts (repeatable)")
	updateCmd.Flags().Bool("clear-hosts", false, "Remove every routed host")
	updateCmd.Flags().StringArrayP("env", "e", nil, "Add an environment variable KEY=VALUE (repeatable)")
	updateCmd.Flags().StringArray("redirect", nil, "Add a redirect REGEX=>REPLACEMENT (repeatable)")
	updateCmd.Flags().Bool("permanent", false, "Make added redirects permanent")
	addWaitFlags(updateCmd)
	commands = append(commands, updateCmd)

	// traefiker service recreate <name>
	recreateCmd := &cobra.Command{
		Use:   "recreate <service-name>",
		Short: "Replace the container, optionally with a new image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _ := cmd.Flags().GetString("image")
			return runMutation(cmd, connect, db.StatusCreated, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Recreate(ctx, args[0], image)
			})
		},
	}
	recreateCmd.Flags().StringP("image", "i", "", "New container image (default: keep the current one)")
	addWaitFlags(recreateCmd)
	commands = append(commands, recreateCmd)

	// traefiker service start <name>
	startCmd := &cobra.Command{
		Use:   "start <service-name>",
		Short: "Start a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, connect, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Start(ctx, args[0])
			})
		},
	}
	commands = append(commands, startCmd)

	// traefiker service stop <name>
	stopCmd := &cobra.Command{
		Use:   "stop <service-name>",
		Short: "Stop a service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, connect, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Stop(ctx, args[0])
			})
		},
	}
	commands = append(commands, stopCmd)

	// traefiker service delete <name>
	deleteCmd := &cobra.Command{
		Use:     "delete <service-name>",
		Short:   "Delete a service and its container",
		Aliases: []string{"rm"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
				if err := b.Services.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Service %s deleted\n", args[0])
				return nil
			})
		},
	}
	commands = append(commands, deleteCmd)

	// traefiker service get <name>
	getCmd := &cobra.Command{
		Use:     "get <service-name>",
		Short:   "Show a service",
		Aliases: []string{"show"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, connect, func(ctx context.Context, ops ServiceOperations) (*service.Record, error) {
				return ops.Get(ctx, args[0])
			})
		},
	}
	commands = append(commands, getCmd)

	// traefiker service list
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List services",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newPrinter(cmd)
			if err != nil {
				return err
			}

			opts := service.ListOptions{}
			opts.Project, _ = cmd.Flags().GetString("project")
			opts.Page, _ = cmd.Flags().GetInt("page")
			opts.PageSize, _ = cmd.Flags().GetInt("page-size")
			if raw, _ := cmd.Flags().GetString("status"); raw != "" {
				status, ok := db.ParseServiceStatus(raw)
				if !ok {
					return fmt.Errorf("unknown status %q", raw)
				}
				opts.Status = status
			}

			return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
				page, err := b.Services.List(ctx, opts)
				if err != nil {
					return err
				}
				return p.page(page)
			})
		},
	}
	listCmd.Flags().StringP("project", "p", "", "Only list services of this project")
	listCmd.Flags().String("status", "", "Only list services in this status")
	listCmd.Flags().Int("page", 1, "Page number")
	listCmd.Flags().Int("page-size", 0, "Services per page (default server setting)")
	commands = append(commands, listCmd)

	return commands
}

type recordOperation func(ctx context.Context, ops ServiceOperations) (*service.Record, error)

// runSync runs an operation that completes before returning and prints its record
func runSync(cmd *cobra.Command, connect Connector, op recordOperation) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
		rec, err := op(ctx, b.Services)
		if err != nil {
			return err
		}
		return p.record(rec)
	})
}

// runMutation runs an operation that schedules provisioning, settles it and
// prints the resulting record
func runMutation(cmd *cobra.Command, connect Connector, want db.ServiceStatus, op recordOperation) error {
	p, err := newPrinter(cmd)
	if err != nil {
		return err
	}
	return withBackend(cmd, connect, func(ctx context.Context, b *Backend) error {
		rec, err := op(ctx, b.Services)
		if err != nil {
			return err
		}

		rec, settleErr := settle(cmd, b, rec, want)
		if rec != nil {
			if err := p.record(rec); err != nil {
				return err
			}
		}
		return settleErr
	})
}

func updateRequestFromFlags(cmd *cobra.Command) (service.UpdateRequest, error) {
	var req service.UpdateRequest

	if clearHosts, _ := cmd.Flags().GetBool("clear-hosts"); clearHosts {
		req.Hosts = []string{}
	} else if cmd.Flags().Changed("host") {
		req.Hosts, _ = cmd.Flags().GetStringSlice("host")
	}

	envs, _ := cmd.Flags().GetStringArray("env")
	for _, raw := range envs {
		key, value, ok := strings.Cut(raw, "=")
		if !ok {
			return req, fmt.Errorf("invalid --env %q: want KEY=VALUE", raw)
		}
		req.Environment = append(req.Environment, service.EnvVar{Key: key, Value: value})
	}

	redirects, _ := cmd.Flags().GetStringArray("redirect")
	permanent, _ := cmd.Flags().GetBool("permanent")
	for _, raw := range redirects {
		regex, replacement, ok := strings.Cut(raw, "=>")
		if !ok {
			return req, fmt.Errorf("invalid --redirect %q: want REGEX=>REPLACEMENT", raw)
		}
		req.Redirects = append(req.Redirects, service.RedirectSpec{
			Regex:       regex,
			Replacement: replacement,
			Permanent:   permanent,
		})
	}

	return req, nil
}
