package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/madan-prog/palletforge/lifecycle"
)

// nextOrderStatus is the forward production path; advance moves one step.
var nextOrderStatus = map[lifecycle.OrderStatus]lifecycle.OrderStatus{
	lifecycle.OrderPending:      lifecycle.OrderApproved,
	lifecycle.OrderApproved:     lifecycle.OrderInProduction,
	lifecycle.OrderInProduction: lifecycle.OrderDispatched,
}

// NewOrdersCommand returns the orders verb group.
func NewOrdersCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect and progress production orders",
	}

	cmd.AddCommand(newOrdersListCommand(opts))
	cmd.AddCommand(newOrdersAdvanceCommand(opts))
	cmd.AddCommand(newOrdersCancelCommand(opts))

	return cmd
}

func newOrdersListCommand(opts *Options) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := opts.client().FetchOrders(cmd.Context(), adminScope(user))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tQUOTE\tUSER\tSTATUS\tTOTAL\tUPDATED")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					o.OrderID, o.SourceQuoteID, o.UserID, o.Status,
					o.Price.Total, o.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Limit to one user's orders")
	return cmd
}

func newOrdersAdvanceCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <order-id>",
		Short: "Move an order to the next production stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()

			orders, err := client.FetchOrders(cmd.Context(), adminScope(""))
			if err != nil {
				return err
			}

			var current lifecycle.OrderStatus
			found := false
			for _, o := range orders {
				if o.ID == args[0] || o.OrderID == args[0] {
					current = o.Status
					args[0] = o.ID
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("order %s not found", args[0])
			}

			next, ok := nextOrderStatus[current]
			if !ok {
				return fmt.Errorf("order is %s and cannot advance", current)
			}

			o, err := client.SetOrderStatus(cmd.Context(), args[0], next)
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", o.OrderID, o.Status)
			return nil
		},
	}
}

func newOrdersCancelCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <order-id>",
		Short: "Cancel an order (administrative override)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := opts.client().CancelOrder(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", o.OrderID, o.Status)
			return nil
		},
	}
}
