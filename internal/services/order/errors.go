package order

import "errors"

// Domain error kinds. Every operation returns one of these (possibly
// wrapped); unexpected store failures are reported as ErrInternal at the
// operation boundary.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("not authorized")
	ErrOrderTaken   = errors.New("order already has a driver")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)
