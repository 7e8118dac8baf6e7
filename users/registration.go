package users

import (
	"io"
	"net/mail"

	"github.com/jrsteele09/localchef-bazaar/internal/errors"
)

// Registration is the sign-up form. The photo is either uploaded content or an
// already hosted URL.
type Registration struct {
	Name            string
	Email           string
	Photo           io.Reader
	PhotoName       string
	PhotoURL        string
	Address         string
	Password        string
	ConfirmPassword string
}

// Validate checks every field and reports all failures together
func (r Registration) Validate() error {
	var v errors.ValidationErrors
	v.Required("name", r.Name, "Name is required")
	v.Required("email", r.Email, "Email is required")
	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			v.Add("email", "Email is invalid")
		}
	}
	if r.Photo == nil && r.PhotoURL == "" {
		v.Add("photo", "Photo is required")
	}
	v.Required("address", r.Address, "Address is required")
	if r.Password == "" {
		v.Add("password", "Password is required")
	} else if err := ValidatePasswordStrength(r.Password); err != nil {
		v.Add("password", "Password must be at least 6 characters")
	}
	if r.ConfirmPassword == "" {
		v.Add("confirmPassword", "Confirm Password is required")
	} else if r.ConfirmPassword != r.Password {
		v.Add("confirmPassword", "Passwords do not match!")
	}
	return v.Err()
}
