package cli

import (
	"context"

	"traefiker/internal/api"
	"traefiker/internal/cli/commands"

	"github.com/spf13/cobra"
)

// Backend is re-exported for the application wiring
type Backend = commands.Backend

// ServeOptions is re-exported for the application wiring
type ServeOptions = commands.ServeOptions

// Launcher opens the in-process backend and runs the server
type Launcher interface {
	OpenLocal(ctx context.Context, configPath string) (*Backend, error)
	Serve(ctx context.Context, opts ServeOptions) error
}

// Manager handles CLI operations
type Manager struct {
	launcher Launcher
	rootCmd  *cobra.Command
}

// New creates a new CLI manager
func New(launcher Launcher) *Manager {
	m := &Manager{
		launcher: launcher,
		rootCmd:  createRootCommand(),
	}
	m.setupCommands()
	return m
}

// Root returns the root command
func (m *Manager) Root() *cobra.Command {
	return m.rootCmd
}

// Execute executes the CLI with the given arguments
func (m *Manager) Execute(args []string) error {
	return m.ExecuteWithContext(context.Background(), args)
}

// ExecuteWithContext executes the CLI with the given arguments and context
func (m *Manager) ExecuteWithContext(ctx context.Context, args []string) error {
	m.rootCmd.SetArgs(args)
	return m.rootCmd.ExecuteContext(ctx)
}

// connect opens the remote client when a server is configured, the local
// manager otherwise
func (m *Manager) connect(cmd *cobra.Command) (*Backend, error) {
	if serverURL, _ := cmd.Flags().GetString("server"); serverURL != "" {
		return &Backend{Services: api.NewClient(serverURL)}, nil
	}

	configPath, _ := cmd.Flags().GetString("config")
	return m.launcher.OpenLocal(cmd.Context(), configPath)
}

// setupCommands sets up all CLI commands
func (m *Manager) setupCommands() {
	m.rootCmd.AddCommand(commands.ServeCommand(m.launcher.Serve))

	projectCmd := &cobra.Command{
		Use:     "project",
		Short:   "Project management commands",
		Aliases: []string{"proj", "p"},
	}
	for _, cmd := range commands.ProjectCommands(m.connect) {
		projectCmd.AddCommand(cmd)
	}
	m.rootCmd.AddCommand(projectCmd)

	serviceCmd := &cobra.Command{
		Use:     "service",
		Short:   "Service management commands",
		Aliases: []string{"svc"},
	}
	for _, cmd := range commands.ServiceCommands(m.connect) {
		serviceCmd.AddCommand(cmd)
	}
	m.rootCmd.AddCommand(serviceCmd)
}
