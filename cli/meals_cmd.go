package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jrsteele09/localchef-bazaar/dashboard"
	"github.com/jrsteele09/localchef-bazaar/marketplace"
	"github.com/spf13/cobra"
)

func newMealsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Browse and manage meals",
	}
	cmd.AddCommand(newMealsListCmd(o))
	cmd.AddCommand(newMealsGetCmd(o))
	cmd.AddCommand(newMealsCreateCmd(o))
	return cmd
}

func mealRows(meals []marketplace.Meal) func() [][]string {
	return func() [][]string {
		rows := make([][]string, len(meals))
		for i, m := range meals {
			rows[i] = []string{m.ID, m.FoodName, m.ChefName, money(m.Price), strconv.FormatFloat(m.Rating, 'f', 1, 64), m.DeliveryArea}
		}
		return rows
	}
}

var mealColumns = []string{"id", "name", "chef", "price", "rating", "area"}

func newMealsListCmd(o *rootOptions) *cobra.Command {
	var (
		page, limit int
		search      string
		sortOrder   string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order, err := marketplace.ParseSortOrder(sortOrder)
			if err != nil {
				return err
			}
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			result, err := app.api.ListMeals(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			meals := marketplace.FilterMeals(result.Meals, search, order)
			if err := render(cmd, o.settings.Output, meals, mealColumns, mealRows(meals)); err != nil {
				return err
			}
			if o.settings.Output != outputJSON {
				if limit < 1 {
					limit = marketplace.DefaultPageLimit
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d (%d meals)\n", max(page, 1), result.TotalPages(limit), result.TotalMeals)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", marketplace.DefaultPageLimit, "Meals per page")
	cmd.Flags().StringVar(&search, "search", "", "Filter by food or chef name")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "Sort by price (asc, desc)")
	return cmd
}

func newMealsGetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <meal-id>",
		Short: "Show a meal with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			if _, err := app.requireRoute(dashboard.MealDetailsRoute(args[0])); err != nil {
				return err
			}
			meal, err := app.api.Meal(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			reviews, err := app.api.MealReviews(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if o.settings.Output == outputJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"meal": meal, "reviews": reviews})
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s by %s\n", meal.FoodName, meal.ChefName)
			fmt.Fprintf(w, "Price:       %s\n", money(meal.Price))
			fmt.Fprintf(w, "Rating:      %.1f\n", meal.Rating)
			fmt.Fprintf(w, "Ingredients: %s\n", strings.Join(meal.Ingredients, ", "))
			fmt.Fprintf(w, "Delivery:    %s to %s\n", meal.EstimatedDeliveryTime, meal.DeliveryArea)
			fmt.Fprintf(w, "Experience:  %s\n", meal.ChefExperience)
			fmt.Fprintf(w, "\n%d review(s)\n", len(reviews))
			for _, r := range reviews {
				fmt.Fprintf(w, "  %s %s: %s\n", strings.Repeat("*", r.Rating), r.UserName, r.Text)
			}
			return nil
		},
	}
}

func newMealsCreateCmd(o *rootOptions) *cobra.Command {
	var (
		in        marketplace.MealInput
		imagePath string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a meal (chefs)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := o.appFor(cmd)
			if err != nil {
				return err
			}
			session, err := app.requireRoute(dashboard.RouteCreateMeals)
			if err != nil {
				return err
			}
			if session.Profile != nil {
				in.ChefID = session.Profile.ChefID
			}
			in.UserEmail = session.Email()
			if in.ChefName == "" {
				in.ChefName = session.DisplayName()
			}

			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return fmt.Errorf("open image: %w", err)
				}
				defer f.Close()
				in.Image = f
				in.ImageName = filepath.Base(imagePath)
			}

			res, err := app.api.CreateMeal(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created meal %s\n", res.InsertedID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.FoodName, "name", "", "Food name")
	f.StringVar(&in.ChefName, "chef-name", "", "Chef name shown on the meal (defaults to your name)")
	f.StringVar(&in.ImageURL, "image-url", "", "URL of an already hosted image")
	f.StringVar(&imagePath, "image", "", "Image file to upload")
	f.StringVar(&in.Price, "price", "", "Price")
	f.StringVar(&in.Rating, "rating", "", "Initial rating (0-5)")
	f.StringVar(&in.EstimatedDeliveryTime, "delivery-time", "", "Estimated delivery time")
	f.StringVar(&in.Ingredients, "ingredients", "", "Comma separated ingredients")
	f.StringVar(&in.ChefExperience, "experience", "", "Chef experience")
	f.StringVar(&in.DeliveryArea, "area", "", "Delivery area")
	return cmd
}
