package cmd

import (
	"fmt"

	"mixmodas/internal/app"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the SQL tables",
		Long: `Create or update the produtos, usuarios and lista_desejos tables on the
database selected by DATABASE_TYPE and DATABASE_DSN. The server also migrates
on start; this command is for deploy pipelines that migrate ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup()
			if err != nil {
				return err
			}
			defer syncLogger()

			if err := app.Migrate(cfg.Database); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", cfg.Database.Type)
			return nil
		},
	}
}
