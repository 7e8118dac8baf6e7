package marketplace

import (
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
)

const (
	MinRating = 1
	MaxRating = 5

	// BlogDateLayout is how blog posts display their publication date
	BlogDateLayout = "January 2, 2006"
)

// MealInput is the create/edit meal form. Numeric fields arrive as typed text.
// Image content, when set, is uploaded and replaces ImageURL.
type MealInput struct {
	FoodName              string
	ChefName              string
	ImageURL              string
	Image                 io.Reader
	ImageName             string
	Price                 string
	Rating                string // Optional, defaults to 0
	EstimatedDeliveryTime string
	Ingredients           string // Comma separated
	ChefExperience        string
	DeliveryArea          string
	ChefID                string
	UserEmail             string
}

// Meal validates the form and converts it to the payload the backend stores
func (in MealInput) Meal() (*Meal, error) {
	var v errors.ValidationErrors
	v.Required("foodName", in.FoodName, "Food name is required")
	if in.Image == nil && strings.TrimSpace(in.ImageURL) == "" {
		v.Add("foodImage", "Image is required")
	}

	var price float64
	if strings.TrimSpace(in.Price) == "" {
		v.Add("price", "Price is required")
	} else if p, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64); err != nil || p < 0 {
		v.Add("price", "Price must be a positive number")
	} else {
		price = p
	}

	var rating float64
	if r := strings.TrimSpace(in.Rating); r != "" {
		parsed, err := strconv.ParseFloat(r, 64)
		if err != nil || parsed < 0 || parsed > MaxRating {
			v.Add("rating", "Rating must be between 0 and 5")
		} else {
			rating = parsed
		}
	}

	v.Required("estimatedDeliveryTime", in.EstimatedDeliveryTime, "Time is required")
	ingredients := SplitIngredients(in.Ingredients)
	if len(ingredients) == 0 {
		v.Add("ingredients", "Ingredients are required")
	}
	v.Required("chefExperience", in.ChefExperience, "Experience is required")
	v.Required("deliveryArea", in.DeliveryArea, "Area is required")
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Meal{
		FoodName:              strings.TrimSpace(in.FoodName),
		ChefName:              strings.TrimSpace(in.ChefName),
		FoodImage:             strings.TrimSpace(in.ImageURL),
		Price:                 price,
		Rating:                rating,
		Ingredients:           ingredients,
		EstimatedDeliveryTime: strings.TrimSpace(in.EstimatedDeliveryTime),
		ChefExperience:        strings.TrimSpace(in.ChefExperience),
		DeliveryArea:          strings.TrimSpace(in.DeliveryArea),
		ChefID:                in.ChefID,
		UserEmail:             in.UserEmail,
	}, nil
}

// SplitIngredients splits a comma separated list, dropping blanks
func SplitIngredients(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ClampRating forces a star rating into 1..5
func ClampRating(rating int) int {
	return max(MinRating, min(MaxRating, rating))
}

// BlogInput is the new blog post form
type BlogInput struct {
	Title     string
	Category  string
	Content   string
	ImageURL  string
	Image     io.Reader
	ImageName string
}

func (in BlogInput) validate() error {
	var v errors.ValidationErrors
	v.Required("title", in.Title, "Title is required")
	v.Required("category", in.Category, "Category is required")
	v.Required("content", in.Content, "Content is required")
	if in.Image == nil && strings.TrimSpace(in.ImageURL) == "" {
		v.Add("image", "Image is required")
	}
	return v.Err()
}

// BlogAuthor returns the byline for a post, "Anonymous" without a display name
func BlogAuthor(displayName string) string {
	if strings.TrimSpace(displayName) == "" {
		return "Anonymous"
	}
	return displayName
}

// BlogDate formats t the way posts display it
func BlogDate(t time.Time) string {
	return t.Format(BlogDateLayout)
}

func (c Complaint) validate() error {
	var v errors.ValidationErrors
	v.Required("topic", c.Topic, "Topic is required")
	v.Required("name", c.Name, "Name is required")
	v.Required("email", c.Email, "Email is required")
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			v.Add("email", "Email is invalid")
		}
	}
	v.Required("message", c.Message, "Message is required")
	return v.Err()
}
