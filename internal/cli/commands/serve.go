package commands

import (
	"github.com/spf13/cobra"
)

// ServeCommand creates the command that runs the HTTP API server
func ServeCommand(serve ServeFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the traefiker HTTP API server",
		Long: `Run the traefiker HTTP API server in the foreground. The server owns the
database and the Docker connection; other traefiker invocations can reach
it with --server or TRAEFIKER_SERVER.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ServeOptions{}
			opts.ConfigPath, _ = cmd.Flags().GetString("config")
			opts.Host, _ = cmd.Flags().GetString("host")
			opts.Port, _ = cmd.Flags().GetInt("port")
			return serve(cmd.Context(), opts)
		},
	}

	cmd.Flags().String("host", "", "Address to listen on (default from config)")
	cmd.Flags().IntP("port", "P", 0, "Port to listen on (default from config)")
	return cmd
}
