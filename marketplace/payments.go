package marketplace

import (
	"context"
	"net/url"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
)

// CreateCheckoutSession starts a hosted checkout for an unpaid order and
// returns the URL to send the buyer to.
func (c *Client) CreateCheckoutSession(ctx context.Context, order Order, email string) (*CheckoutSession, error) {
	if order.ID == "" {
		return nil, errors.Wrapf(errors.ErrValidation, "order id is required")
	}
	if order.IsPaid() {
		return nil, errors.Wrapf(errors.ErrValidation, "order %s is already paid", order.ID)
	}

	body := CheckoutRequest{
		OrderID:   order.ID,
		MealName:  order.MealName,
		Price:     order.Price,
		UserEmail: email,
	}
	var out CheckoutSession
	if err := c.secure.Post(ctx, "/create-checkout-session", body, &out); err != nil {
		return nil, err
	}
	if out.URL == "" {
		return nil, errors.New("checkout session has no url")
	}
	return &out, nil
}

// ConfirmPayment reports the checkout session id the payment provider
// redirected back with.
func (c *Client) ConfirmPayment(ctx context.Context, sessionID string) (*PaymentResult, error) {
	if sessionID == "" {
		return nil, errors.Wrapf(errors.ErrValidation, "session id is required")
	}
	var out PaymentResult
	if err := c.secure.Patch(ctx, "/payment-success", url.Values{"session_id": {sessionID}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
