package cmd

import (
	"fmt"

	"mixmodas/internal/app"

	"github.com/spf13/cobra"
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var force bool
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Add sample products, one per category",
		Long: `Add four sample products (masculino, feminino, infantil, acessorios) to the
catalog. A catalog that already has products is left alone unless --force is set.
Writes go through the configured primary store and its mirrors.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.setup()
			if err != nil {
				return err
			}
			defer syncLogger()

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := app.Seed(cmd.Context(), a.Products, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", n)
			return nil
		},
	}
	seedCmd.Flags().BoolVar(&force, "force", false, "Seed even when the catalog is not empty")
	return seedCmd
}
