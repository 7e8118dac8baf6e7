package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/spf13/cobra"
)

func newStatsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics (admins)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			if _, err := app.requireRoute(dashboard.RoutePlatformStats); err != nil {
				return err
			}
			stats, err := app.api.PlatformStats(cmd.Context())
			if err != nil {
				return err
			}
			if o.settings.Output == outputJSON {
				return printJSON(cmd.OutOrStdout(), stats)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Total revenue:  %s\n", money(stats.Stats.TotalRevenue))
			fmt.Fprintf(w, "Today:          %s\n", money(stats.Stats.TodayRevenue))
			fmt.Fprintf(w, "Profit:         %s\n", money(stats.Stats.TotalProfit))
			fmt.Fprintf(w, "Orders:         %d\n", stats.Stats.TotalOrders)
			fmt.Fprintf(w, "Users:          %d\n", stats.Stats.TotalUsers)
			for _, rc := range stats.RoleDistribution {
				fmt.Fprintf(w, "  %-8s %d (%d%%)\n", rc.Role, rc.Count, stats.RoleShare(rc.Role))
			}

			fmt.Fprintln(w, "\nLast 7 days")
			week := stats.LastSevenDays(time.Now())
			peak := 0.0
			for _, d := range week {
				peak = max(peak, d.Revenue)
			}
			for _, d := range week {
				bar := 0
				if peak > 0 {
					bar = int(d.Revenue / peak * 30)
				}
				fmt.Fprintf(w, "  %s %-30s %s\n", d.Weekday.String()[:3], strings.Repeat("#", bar), money(d.Revenue))
			}

			if len(stats.TopMeals) > 0 {
				fmt.Fprintln(w, "\nTop meals")
				for _, m := range stats.TopMeals {
					fmt.Fprintf(w, "  %-24s %d sold\n", m.Name, m.Sales)
				}
			}
			return nil
		},
	}
}
