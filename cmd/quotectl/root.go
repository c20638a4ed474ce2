package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/GTDGit/fleetdesk_api/pkg/fleetdesk"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	api     string
	token   string
	timeout time.Duration
	verbose bool
}

func (o *globalOptions) client() *fleetdesk.Client {
	return fleetdesk.NewClient(o.api, o.token)
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "quotectl",
		Short:         "Inspect activity history and submit quote requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.api, "api", envOr("FLEETDESK_API", fleetdesk.DefaultBaseURL), "API base URL (env FLEETDESK_API)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("FLEETDESK_TOKEN"), "Bearer token (env FLEETDESK_TOKEN)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-command timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log retries and debug output")

	cmd.AddCommand(
		loginCommand(opts),
		historyCommand(opts),
		quoteCommand(opts),
	)
	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requireToken(opts *globalOptions) error {
	if opts.token == "" {
		return fmt.Errorf("no token: run 'quotectl login' and export FLEETDESK_TOKEN, or pass --token")
	}
	return nil
}
