package cli

import (
	"strconv"

	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/spf13/cobra"
)

func newReviewsCmd(o *rootOptions) *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List your reviews, or the latest reviews with --latest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}

			var reviews []marketplace.Review
			if latest {
				reviews = app.api.ReviewsMarquee(cmd.Context())
			} else {
				session, err := app.requireRoute(dashboard.RouteMyReviews)
				if err != nil {
					return err
				}
				if reviews, err = app.api.MyReviews(cmd.Context(), session.Email()); err != nil {
					return err
				}
			}

			columns := []string{"id", "meal", "rating", "by", "review"}
			return render(cmd, o.settings.Output, reviews, columns, func() [][]string {
				rows := make([][]string, len(reviews))
				for i, r := range reviews {
					meal := r.MealName
					if meal == "" && r.MealDetails != nil {
						meal = r.MealDetails.FoodName
					}
					rows[i] = []string{r.ID, meal, strconv.Itoa(r.Rating), r.UserName, r.Text}
				}
				return rows
			})
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "Show the latest reviews across the marketplace")
	return cmd
}
