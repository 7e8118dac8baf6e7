package users

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role represents the marketplace role the backend assigns to a user
type Role string

const (
	RoleCustomer Role = "customer" // Default role, can order, review and favourite meals
	RoleChef     Role = "chef"     // Can create meals and handle order requests
	RoleAdmin    Role = "admin"    // Can manage users, role requests and view platform stats
)

// Status is the account standing of a user on the platform
type Status string

const (
	StatusActive Status = "active"
	StatusFraud  Status = "fraud" // Marked by an admin, ordering is restricted
)

const minPasswordLength = 6

// Profile is the application-specific user record held by the backend. It is
// fetched after sign-in and merged onto the signed-in principal.
type Profile struct {
	ID          string    `json:"_id,omitempty"`         // Backend document ID
	UID         string    `json:"uid,omitempty"`         // Identity provider principal ID
	Email       string    `json:"email,omitempty"`       // User's email address
	DisplayName string    `json:"displayName,omitempty"` // Display name
	PhotoURL    string    `json:"photoURL,omitempty"`    // Avatar URL on the image host
	Address     string    `json:"address,omitempty"`     // Default delivery address
	Role        Role      `json:"role,omitempty"`        // customer, chef or admin
	Status      Status    `json:"status,omitempty"`      // active or fraud
	ChefID      string    `json:"chefId,omitempty"`      // Set once a chef request is approved
	CreatedAt   time.Time `json:"createdAt,omitempty"`   // When the backend first saw the user
}

// ParseRole converts a raw role string, as stored by the backend, to a Role
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCustomer, RoleChef, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// EffectiveRole returns the profile role, defaulting to customer. A nil profile has no role.
func (p *Profile) EffectiveRole() Role {
	if p == nil {
		return ""
	}
	if p.Role == "" {
		return RoleCustomer
	}
	return p.Role
}

func (p *Profile) HasRole(role Role) bool {
	return p.EffectiveRole() == role
}

func (p *Profile) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

func (p *Profile) IsChef() bool {
	return p.HasRole(RoleChef)
}

// IsFraud returns true if an admin has restricted the account
func (p *Profile) IsFraud() bool {
	return p != nil && p.Status == StatusFraud
}

// EffectiveStatus returns the account status, an empty status reads as active
func (p *Profile) EffectiveStatus() Status {
	if p == nil || p.Status == "" {
		return StatusActive
	}
	return p.Status
}

// ValidatePasswordStrength checks the password is at least 6 characters long
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
