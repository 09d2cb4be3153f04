package models

import (
	"fmt"
	"time"
)

// OrderStatus represents the lifecycle status of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCooking   OrderStatus = "cooking"
	StatusCooked    OrderStatus = "cooked"
	StatusPickedUp  OrderStatus = "picked_up"
	StatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus converts a raw string into an OrderStatus, rejecting
// unknown values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusCooking, StatusCooked, StatusPickedUp, StatusDelivered:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("status must be one of: pending, cooking, cooked, picked_up, delivered")
	}
}

// OrderItemOption records one option the customer picked for a line item.
// Choice is empty for flat-extra options.
type OrderItemOption struct {
	Name   string `json:"name"`
	Choice string `json:"choice,omitempty"`
}

// OrderItem is a persisted line item. DishName and Price are snapshotted at
// creation so later menu edits never change what an order shows or costs.
type OrderItem struct {
	ID       int64             `json:"id,omitempty" db:"id"`
	OrderID  int64             `json:"order_id,omitempty" db:"order_id"`
	DishID   int64             `json:"dish_id" db:"dish_id"`
	DishName string            `json:"dish_name" db:"dish_name"`
	Price    int               `json:"price" db:"price"`
	Options  []OrderItemOption `json:"options,omitempty" db:"options"`
}

// Order represents a customer order against a single restaurant.
// RestaurantOwnerID is denormalized onto the record so the visibility policy
// can run without a second lookup.
type Order struct {
	ID                int64       `json:"id" db:"id"`
	CustomerID        int64       `json:"customer_id" db:"customer_id"`
	DriverID          *int64      `json:"driver_id,omitempty" db:"driver_id"`
	RestaurantID      int64       `json:"restaurant_id" db:"restaurant_id"`
	RestaurantOwnerID int64       `json:"restaurant_owner_id" db:"restaurant_owner_id"`
	Items             []OrderItem `json:"items,omitempty"`
	Total             int         `json:"total" db:"total"`
	Status            OrderStatus `json:"status" db:"status"`
	CreatedAt         time.Time   `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// OrderItemSelection is the customer's requested selection of one dish plus
// zero or more option choices.
type OrderItemSelection struct {
	DishID  int64             `json:"dish_id"`
	Options []OrderItemOption `json:"options,omitempty"`
}

// CreateOrderRequest represents the request to place an order.
type CreateOrderRequest struct {
	RestaurantID int64                `json:"restaurant_id"`
	Items        []OrderItemSelection `json:"items"`
}

// Validate validates the create order request. An empty item list is rejected
// here even though callers are expected to pre-validate.
func (req *CreateOrderRequest) Validate() error {
	if req.RestaurantID <= 0 {
		return fmt.Errorf("restaurant_id is required")
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("items array cannot be empty")
	}
	if len(req.Items) > 50 {
		return fmt.Errorf("items array cannot contain more than 50 items")
	}
	for i, item := range req.Items {
		if item.DishID <= 0 {
			return fmt.Errorf("items[%d].dish_id is required", i)
		}
		for j, opt := range item.Options {
			if opt.Name == "" {
				return fmt.Errorf("items[%d].options[%d].name is required", i, j)
			}
		}
	}
	return nil
}

// CreateOrderResponse represents the response after placing an order.
type CreateOrderResponse struct {
	OrderID int64       `json:"order_id"`
	Total   int         `json:"total"`
	Status  OrderStatus `json:"status"`
}
