package cmd

import (
	"fmt"

	"mixmodas/internal/app"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
)

const emailFlag = "email"

func newPromoteCommand(opts *rootOptions) *cobra.Command {
	flags := map[string]cobraflags.Flag{
		emailFlag: &cobraflags.StringFlag{
			Name:  emailFlag,
			Value: "",
			Usage: "Email of the account to promote (required)",
		},
	}

	promoteCmd := &cobra.Command{
		Use:   "promote",
		Short: "Grant the admin role to an account",
		Long: `Grant the admin role to an existing account. Roles are only ever read from
the stored user record, so this is the way to create the first administrator.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email := flags[emailFlag].GetString()
			if email == "" {
				return fmt.Errorf("email is required (use --email flag)")
			}

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

			user, err := a.Auth.Promote(cmd.Context(), email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}

	cobraflags.RegisterMap(promoteCmd, flags)
	return promoteCmd
}
