package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/madan-prog/palletforge/lifecycle"
)

// NewQuotesCommand returns the quotes verb group.
func NewQuotesCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Inspect and manage quotation requests",
	}

	cmd.AddCommand(newQuotesListCommand(opts))
	cmd.AddCommand(newQuoteStatusCommand(opts, "approve", lifecycle.QuoteApproved,
		"Approve a pending quote and create its order"))
	cmd.AddCommand(newQuoteStatusCommand(opts, "reject", lifecycle.QuoteRejected,
		"Reject a pending quote"))
	cmd.AddCommand(newQuoteStatusCommand(opts, "cancel", lifecycle.QuoteCancelled,
		"Cancel a pending or approved quote"))

	return cmd
}

func newQuotesListCommand(opts *Options) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quotes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := adminScope(user)
			quotes, err := opts.client().FetchQuotes(cmd.Context(), scope)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "QUOTE\tUSER\tSTATUS\tQTY\tTOTAL\tUPDATED")
			for _, q := range quotes {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
					q.QuoteID, q.UserID, q.Status, q.Spec.Quantity,
					q.LastKnownPrice.Total, q.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Limit to one user's quotes")
	return cmd
}

func newQuoteStatusCommand(opts *Options, use string, target lifecycle.QuoteStatus, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <quote-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := opts.client().SetQuoteStatus(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", q.QuoteID, q.Status)
			return nil
		},
	}
}
