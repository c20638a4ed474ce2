package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func quoteCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Inspect and submit the quote store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if parent := cmd.Root(); parent.PersistentPreRun != nil {
				parent.PersistentPreRun(cmd, args)
			}
			return requireToken(opts)
		},
	}
	cmd.AddCommand(quoteStoreCommand(opts), quoteSubmitCommand(opts))
	return cmd
}

func quoteStoreCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "store",
		Short: "Print the committed products, services and wizard state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			view, err := opts.client().QuoteStore(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
}

func quoteSubmitCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit the quote store for quoting and clear it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			q, err := opts.client().SubmitQuote(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted %s: %d products, %d services (%s)\n",
				q.RequestID, q.ProductCount, q.ServiceCount, q.Status)
			return nil
		},
	}
}
