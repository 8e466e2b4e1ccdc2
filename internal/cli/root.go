// Package cli wires configuration, storage and transport into cobra commands.
package cli

import (
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X ...cli.version=..."
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "visits",
	Short: "Visit log ingestion and query service",
	Long: `Loads a visit log (CSV or SQLite), normalizes timestamps and coordinates,
and serves filtered, paginated queries and statistics over HTTP.

Without a subcommand the HTTP server is started.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config.yaml in . or ./configs)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
