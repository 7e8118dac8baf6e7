package marketplace

import (
	"time"

	"github.com/jrsteele09/localchef-bazaar/users"
)

// Meal is a dish a chef offers on the marketplace
type Meal struct {
	ID                    string     `json:"_id,omitempty"`
	FoodName              string     `json:"foodName"`
	ChefName              string     `json:"chefName"`
	FoodImage             string     `json:"foodImage"`
	Price                 float64    `json:"price"`
	Rating                float64    `json:"rating"`
	Ingredients           []string   `json:"ingredients"`
	EstimatedDeliveryTime string     `json:"estimatedDeliveryTime"`
	ChefExperience        string     `json:"chefExperience"`
	DeliveryArea          string     `json:"deliveryArea"`
	ChefID                string     `json:"chefId,omitempty"`
	UserEmail             string     `json:"userEmail,omitempty"`
	CreatedAt             *time.Time `json:"createdAt,omitempty"`
}

// MealPage is one page of the meal catalogue
type MealPage struct {
	Meals      []Meal `json:"meals"`
	TotalMeals int    `json:"totalMeals"`
}

// TotalPages returns the page count for the given page size
func (p MealPage) TotalPages(limit int) int {
	if limit <= 0 {
		return 0
	}
	return (p.TotalMeals + limit - 1) / limit
}

// Order statuses as set by chefs
const (
	OrderPending   = "pending"
	OrderAccepted  = "accepted"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentPending = "Pending"
	PaymentPaid    = "paid"
)

type Order struct {
	ID            string     `json:"_id,omitempty"`
	FoodID        string     `json:"foodId"`
	MealName      string     `json:"mealName"`
	Price         float64    `json:"price"` // Total for the quantity ordered
	Quantity      int        `json:"quantity"`
	ChefID        string     `json:"chefId"`
	PaymentStatus string     `json:"paymentStatus"`
	UserEmail     string     `json:"userEmail"`
	UserAddress   string     `json:"userAddress"`
	OrderStatus   string     `json:"orderStatus"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// IsPaid reports whether the checkout for the order has completed
func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentPaid
}

type Review struct {
	ID          string     `json:"_id,omitempty"`
	MealID      string     `json:"mealId,omitempty"`
	MealName    string     `json:"mealName,omitempty"`
	Rating      int        `json:"rating"`
	Text        string     `json:"text"`
	UserName    string     `json:"userName"`
	UserEmail   string     `json:"userEmail"`
	UserImage   string     `json:"userImage,omitempty"`
	MealDetails *Meal      `json:"mealDetails,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type Favorite struct {
	ID          string     `json:"_id,omitempty"`
	MealID      string     `json:"mealId,omitempty"`
	Email       string     `json:"email"`
	MealDetails *Meal      `json:"mealDetails,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

type Blog struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Category    string `json:"category"`
	Content     string `json:"content"`
	Image       string `json:"image"`
	Author      string `json:"author"`
	AuthorEmail string `json:"authorEmail"`
	Date        string `json:"date"` // Display date, e.g. "March 1, 2025"
}

type Complaint struct {
	ID        string     `json:"_id,omitempty"`
	Topic     string     `json:"topic"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Role request statuses
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// RoleRequest asks an admin to promote a user to chef or admin
type RoleRequest struct {
	ID            string     `json:"_id,omitempty"`
	UserName      string     `json:"userName"`
	UserEmail     string     `json:"userEmail"`
	RequestType   users.Role `json:"requestType"`
	RequestStatus string     `json:"requestStatus,omitempty"`
	RequestTime   *time.Time `json:"requestTime,omitempty"`
}

type Subscriber struct {
	Email string `json:"email"`
}

type CheckoutRequest struct {
	OrderID   string  `json:"orderId"`
	MealName  string  `json:"mealName"`
	Price     float64 `json:"price"`
	UserEmail string  `json:"userEmail"`
}

// CheckoutSession carries the hosted checkout URL the user is sent to
type CheckoutSession struct {
	URL string `json:"url"`
}

// PaymentResult is the backend's answer to a completed checkout
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	TrackingID    string `json:"trackingId,omitempty"`
	Message       string `json:"message,omitempty"`
}

type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

type UpdateResult struct {
	MatchedCount  int `json:"matchedCount"`
	ModifiedCount int `json:"modifiedCount"`
}

type DeleteResult struct {
	DeletedCount int `json:"deletedCount"`
}
