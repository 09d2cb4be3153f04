package catalog

import "errors"

var (
	// ErrNotFound is returned when the restaurant, dish or category does
	// not exist.
	ErrNotFound = errors.New("not found")

	// ErrHasOrders is returned when deleting a restaurant that still has
	// order history referencing it.
	ErrHasOrders = errors.New("restaurant has orders")

	// ErrNotOwner is returned when the actor does not own the restaurant
	// they are trying to change.
	ErrNotOwner = errors.New("restaurant belongs to another owner")

	// ErrInvalidInput is returned when the request fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
