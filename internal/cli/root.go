package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// ServerEnv selects the remote server when --server is not given
const ServerEnv = "TRAEFIKER_SERVER"

// createRootCommand creates the root command with global flags
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "traefiker",
		Short: "Container lifecycle manager for host-routed services",
		Long: `traefiker runs named services as Docker containers and labels them so a
Traefik proxy routes their hosts. Without --server, commands operate directly
on the local database and Docker daemon; with --server they call a running
'traefiker serve'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to showing help if no subcommand
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("server", os.Getenv(ServerEnv), "URL of a traefiker server (env "+ServerEnv+")")
	flags.StringP("config", "c", "", "Path to the configuration file")
	flags.StringP("output", "o", "table", "Output format: table, json or yaml")

	return rootCmd
}
