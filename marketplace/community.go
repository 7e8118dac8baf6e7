package marketplace

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
	"github.com/jrsteele09/localchef-bazaar/users"
)

// Complaints lists submitted complaints for admins
func (c *Client) Complaints(ctx context.Context) ([]Complaint, error) {
	var out []Complaint
	if err := c.secure.Get(ctx, "/complaints", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitComplaint sends the contact form. It needs no session.
func (c *Client) SubmitComplaint(ctx context.Context, complaint Complaint) (*InsertResult, error) {
	if err := complaint.validate(); err != nil {
		return nil, err
	}
	var out InsertResult
	if err := c.public.Post(ctx, "/complaints", complaint, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Subscribe adds an email to the newsletter. It needs no session.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	var v errors.ValidationErrors
	v.Required("email", email, "Email is required")
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			v.Add("email", "Email is invalid")
		}
	}
	if err := v.Err(); err != nil {
		return err
	}
	return c.public.Post(ctx, "/subscribers", Subscriber{Email: strings.TrimSpace(email)}, nil)
}

// RoleRequests lists role requests for admins
func (c *Client) RoleRequests(ctx context.Context) ([]RoleRequest, error) {
	var out []RoleRequest
	if err := c.secure.Get(ctx, "/requests", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendRoleRequest asks for the requester to become a chef or admin. A request
// that is already pending returns ErrRequestAlreadySent.
func (c *Client) SendRoleRequest(ctx context.Context, requester *users.Profile, role users.Role) (*InsertResult, error) {
	if requester == nil {
		return nil, errors.ErrNoSession
	}
	if role != users.RoleChef && role != users.RoleAdmin {
		return nil, errors.Wrapf(errors.ErrValidation, "cannot request role %q", role)
	}
	if requester.HasRole(role) {
		return nil, errors.Wrapf(errors.ErrValidation, "already %s", role)
	}

	body := RoleRequest{
		UserName:    requester.DisplayName,
		UserEmail:   requester.Email,
		RequestType: role,
	}
	var out InsertResult
	if err := c.secure.Post(ctx, "/requests", body, &out); err != nil {
		return nil, conflictAs(err, ErrRequestAlreadySent)
	}
	return &out, nil
}

type requestResolution struct {
	Status      string     `json:"status"`
	UserEmail   string     `json:"userEmail"`
	RequestType users.Role `json:"requestType"`
}

// ResolveRoleRequest approves or rejects a pending request
func (c *Client) ResolveRoleRequest(ctx context.Context, req RoleRequest, status string) (*UpdateResult, error) {
	if status != RequestApproved && status != RequestRejected {
		return nil, errors.Wrapf(errors.ErrValidation, "unknown request status %q", status)
	}
	body := requestResolution{Status: status, UserEmail: req.UserEmail, RequestType: req.RequestType}
	var out UpdateResult
	if err := c.secure.Patch(ctx, pathID("/requests", req.ID), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
