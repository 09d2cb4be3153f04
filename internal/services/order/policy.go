package order

import "grubmarket/internal/models"

// CanView reports whether the actor may see the order. Each role is visible
// only through its own relation: customers see their orders, drivers the
// orders they carry, owners the orders against their restaurants. The switch
// is exhaustive over the closed role set; anything else is denied.
func CanView(actor *models.User, o *models.Order) bool {
	switch actor.Role {
	case models.RoleClient:
		return o.CustomerID == actor.ID
	case models.RoleDelivery:
		return o.DriverID != nil && *o.DriverID == actor.ID
	case models.RoleOwner:
		return o.RestaurantOwnerID == actor.ID
	default:
		return false
	}
}

// CanEdit reports whether the actor may set the requested status. Callers
// must check CanView first. Clients never edit; owners only move orders into
// the kitchen states, drivers only into the delivery states. There is no
// forward-only ordering check on top of the role pairing: an owner may set
// cooked on an already cooked order.
func CanEdit(actor *models.User, requested models.OrderStatus) bool {
	switch actor.Role {
	case models.RoleClient:
		return false
	case models.RoleOwner:
		return requested == models.StatusCooking || requested == models.StatusCooked
	case models.RoleDelivery:
		return requested == models.StatusPickedUp || requested == models.StatusDelivered
	default:
		return false
	}
}
