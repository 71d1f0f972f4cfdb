// Package cmd holds the mixmodas command line.
package cmd

import (
	"fmt"
	"os"

	"mixmodas/internal/app"
	"mixmodas/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	configFile string
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "mixmodas",
		Short: "Mix Modas store backend",
		Long: `Mix Modas store backend: product catalog, wishlist and accounts over HTTP.

Settings come from environment variables (APP_PORT, DATABASE_TYPE, AUTH_STRATEGY, ...)
and, optionally, a config file passed with --config. Environment variables win.

Examples:
  mixmodas                              # Start the server (same as "serve")
  mixmodas migrate                      # Create or update the SQL tables
  mixmodas seed                         # Add sample products to an empty catalog
  mixmodas promote --email a@loja.com   # Grant the admin role`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Optional config file (yaml, json, toml or env)")

	root.AddCommand(newServeCommand(opts))
	root.AddCommand(newMigrateCommand(opts))
	root.AddCommand(newSeedCommand(opts))
	root.AddCommand(newPromoteCommand(opts))
	root.AddCommand(newConsumeEventsCommand(opts))
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and installs the logger.
func (o *rootOptions) setup() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := app.SetupLogger(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func syncLogger() {
	_ = zap.L().Sync()
}
