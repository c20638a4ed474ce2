package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GTDGit/fleetdesk_api/pkg/fleetdesk"
)

func historyCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Read the activity history",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if parent := cmd.Root(); parent.PersistentPreRun != nil {
				parent.PersistentPreRun(cmd, args)
			}
			return requireToken(opts)
		},
	}
	cmd.AddCommand(historyListCommand(opts), historyLatestCommand(opts), historyShowCommand(opts))
	return cmd
}

func historyListCommand(opts *globalOptions) *cobra.Command {
	var q fleetdesk.HistoryQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activity records, newest first",
		Long: `List activity records, newest first.

Examples:
  quotectl history list --page 2 --size 20
  quotectl history list --start 2024-01-01 --end 2024-01-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			page, err := opts.client().ListHistory(ctx, q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printRecords(out, page.Data)
			fmt.Fprintf(out, "\n%d records, %d pages\n", page.TotalCount, page.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVar(&q.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&q.Size, "size", 10, "Records per page (max 100)")
	cmd.Flags().StringVar(&q.StartDate, "start", "", "First day, yyyy-MM-dd")
	cmd.Flags().StringVar(&q.EndDate, "end", "", "Last day (inclusive), yyyy-MM-dd")
	return cmd
}

func historyLatestCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the newest activity records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			records, err := opts.client().LatestHistory(ctx)
			if err != nil {
				return err
			}
			printRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}
}

func historyShowCommand(opts *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the changes of one activity record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			client := opts.client()
			out := cmd.OutOrStdout()
			if raw {
				rec, err := client.GetHistory(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(out, rec)
			}

			table, err := client.HistoryDetails(ctx, args[0])
			if err != nil {
				return err
			}
			printSubTable(out, table)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the stored record as JSON")
	return cmd
}

func printRecords(w io.Writer, records []fleetdesk.ActivityRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tITEM\tACTION\tUSER")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.ItemType, r.ActionType, r.UserID)
	}
	tw.Flush()
}

func printSubTable(w io.Writer, t *fleetdesk.SubTable) {
	fmt.Fprintf(w, "%s\n\n", t.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, item := range t.Items {
		if item.Label != "" {
			fmt.Fprintf(tw, "[%s]\n", item.Label)
		}
		for _, c := range item.Changes {
			fmt.Fprintf(tw, "  %s\t%s\t->\t%s\n", c.Field, formatValue(c.Old), formatValue(c.New))
		}
	}
	tw.Flush()
}

func formatValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}
