package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func loginCommand(opts *globalOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a token",
		Long: `Sign in with an admin account and print the session token.

Examples:
  export FLEETDESK_TOKEN=$(quotectl login --email ops@example.com --password "$PASS")`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FLEETDESK_PASSWORD")
			}
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password (or FLEETDESK_PASSWORD) are required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			res, err := opts.client().Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "token expires at %s\n", res.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (env FLEETDESK_PASSWORD)")
	return cmd
}
