package promotion

import "errors"

var (
	// ErrNotFound is returned when the restaurant does not exist.
	ErrNotFound = errors.New("restaurant not found")

	// ErrNotOwner is returned when the actor does not own the restaurant
	// they are trying to promote.
	ErrNotOwner = errors.New("restaurant belongs to another owner")

	// ErrInvalidInput is returned when the request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
