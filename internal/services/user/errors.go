package user

import "errors"

var (
	// ErrEmailTaken is returned when registering with an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNotFound is returned when the user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned on a failed login. It deliberately
	// does not distinguish a wrong password from an unknown email.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrVerificationNotFound is returned when redeeming an unknown or
	// already used verification code.
	ErrVerificationNotFound = errors.New("verification code not found")

	// ErrInvalidInput is returned when the request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
