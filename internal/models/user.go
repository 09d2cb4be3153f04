package models

import (
	"fmt"
	"net/mail"
	"time"
)

// Role represents the role of a user account. It is a closed set: every
// policy decision switches exhaustively over these values and denies anything
// else.
type Role string

const (
	RoleClient   Role = "client"
	RoleOwner    Role = "owner"
	RoleDelivery Role = "delivery"
)

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleOwner, RoleDelivery:
		return Role(s), nil
	default:
		return "", fmt.Errorf("role must be one of: client, owner, delivery")
	}
}

// User represents a registered account. Password holds the bcrypt hash and is
// never serialized. Verified flips when the account's email verification code
// is redeemed and resets on every email change.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Role      Role      `json:"role" db:"role"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateAccountRequest represents the request to register a new account.
type CreateAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate validates the create account request.
func (req *CreateAccountRequest) Validate() error {
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return fmt.Errorf("email is not a valid address")
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if _, err := ParseRole(req.Role); err != nil {
		return err
	}
	return nil
}

// EditProfileRequest represents a partial profile update. Nil fields are
// left untouched.
type EditProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Validate validates the edit profile request.
func (req *EditProfileRequest) Validate() error {
	if req.Email == nil && req.Password == nil {
		return fmt.Errorf("nothing to update")
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return fmt.Errorf("email is not a valid address")
		}
	}
	if req.Password != nil && len(*req.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// VerifyEmailRequest redeems an email verification code.
type VerifyEmailRequest struct {
	Code string `json:"code"`
}

// LoginRequest represents a login attempt.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed access token.
type LoginResponse struct {
	Token string `json:"token"`
}
