package cli

import (
	"fmt"
	"strconv"

	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/spf13/cobra"
)

func newOrdersCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List and pay for your orders",
	}
	cmd.AddCommand(newOrdersListCmd(o))
	cmd.AddCommand(newOrdersPayCmd(o))
	return cmd
}

func newOrdersListCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			session, err := app.requireRoute(dashboard.RouteMyOrders)
			if err != nil {
				return err
			}
			orders, err := app.api.Orders(cmd.Context(), session.Email())
			if err != nil {
				return err
			}
			columns := []string{"id", "meal", "qty", "total", "status", "payment"}
			return render(cmd, o.settings.Output, orders, columns, func() [][]string {
				rows := make([][]string, len(orders))
				for i, ord := range orders {
					rows[i] = []string{ord.ID, ord.MealName, strconv.Itoa(ord.Quantity), money(ord.Price), ord.OrderStatus, ord.PaymentStatus}
				}
				return rows
			})
		},
	}
}

func newOrdersPayCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <order-id>",
		Short: "Start checkout for an unpaid order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			session, err := app.requireRoute(dashboard.RouteMyOrders)
			if err != nil {
				return err
			}
			orders, err := app.api.Orders(cmd.Context(), session.Email())
			if err != nil {
				return err
			}

			var order *marketplace.Order
			for i := range orders {
				if orders[i].ID == args[0] {
					order = &orders[i]
					break
				}
			}
			if order == nil {
				return fmt.Errorf("order %s not found", args[0])
			}

			checkout, err := app.api.CreateCheckoutSession(cmd.Context(), *order, session.Email())
			if err != nil {
				return err
			}
			if o.settings.Output == outputJSON {
				return printJSON(cmd.OutOrStdout(), checkout)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Complete payment of %s for %s at:\n%s\n", money(order.Price), order.MealName, checkout.URL)
			return nil
		},
	}
}
