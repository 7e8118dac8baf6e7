package marketplace

import (
	"context"
	"strings"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/internal/utils"
	"github.com/jrsteele09/localchef-bazaar/users"
)

// NewOrder builds the order a buyer places for quantity portions of meal.
// Fraud accounts may not order.
func NewOrder(buyer *users.Profile, meal *Meal, quantity int, address string) (*Order, error) {
	if buyer == nil {
		return nil, errors.ErrNoSession
	}
	if buyer.IsFraud() {
		return nil, ErrAccountRestricted
	}
	if meal == nil || meal.ID == "" {
		return nil, errors.Wrapf(errors.ErrValidation, "meal is required")
	}

	var v errors.ValidationErrors
	if quantity < 1 {
		v.Add("quantity", "Quantity must be at least 1")
	}
	v.Required("userAddress", address, "Please enter your delivery address")
	if err := v.Err(); err != nil {
		return nil, err
	}

	return &Order{
		FoodID:        meal.ID,
		MealName:      meal.FoodName,
		Price:         meal.Price * float64(quantity),
		Quantity:      quantity,
		ChefID:        meal.ChefID,
		PaymentStatus: PaymentPending,
		UserEmail:     buyer.Email,
		UserAddress:   strings.TrimSpace(address),
		OrderStatus:   OrderPending,
	}, nil
}

// PlaceOrder validates and posts an order for the buyer
func (c *Client) PlaceOrder(ctx context.Context, buyer *users.Profile, meal *Meal, quantity int, address string) (*Order, error) {
	order, err := NewOrder(buyer, meal, quantity, address)
	if err != nil {
		return nil, err
	}

	var res InsertResult
	if err := c.secure.Post(ctx, "/myOrders", order, &res); err != nil {
		return nil, err
	}
	order.ID = res.InsertedID
	return order, nil
}

// Orders lists the orders placed by the customer with the given email
func (c *Client) Orders(ctx context.Context, email string) ([]Order, error) {
	var out []Order
	if err := c.secure.Get(ctx, "/dashboard/myOrders", emailQuery(email), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// OrderRequests lists the orders placed for a chef's meals
func (c *Client) OrderRequests(ctx context.Context, chefID string) ([]Order, error) {
	var out []Order
	if err := c.secure.Get(ctx, pathID("/dashboard/orderRequest", chefID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type orderUpdate struct {
	Status        *string `json:"status,omitempty"`
	PaymentStatus *string `json:"paymentStatus,omitempty"`
}

// UpdateOrderStatus is the chef's accept, deliver or cancel action
func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*UpdateResult, error) {
	switch status {
	case OrderAccepted, OrderDelivered, OrderCancelled:
	default:
		return nil, errors.Wrapf(errors.ErrValidation, "unknown order status %q", status)
	}

	var out UpdateResult
	if err := c.secure.Patch(ctx, pathID("/dashboard/orderUpdate", id), nil, orderUpdate{Status: utils.Ptr(status)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkOrderPaid records a completed payment on the order
func (c *Client) MarkOrderPaid(ctx context.Context, id string) (*UpdateResult, error) {
	var out UpdateResult
	if err := c.secure.Patch(ctx, pathID("/dashboard/orderUpdate", id), nil, orderUpdate{PaymentStatus: utils.Ptr(PaymentPaid)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
