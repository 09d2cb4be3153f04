package models

import (
	"fmt"
	"time"
)

// Restaurant represents a restaurant owned by a single owner account.
type Restaurant struct {
	ID            int64      `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Address       string     `json:"address" db:"address"`
	CoverImage    string     `json:"cover_image,omitempty" db:"cover_image"`
	OwnerID       int64      `json:"owner_id" db:"owner_id"`
	CategoryID    *int64     `json:"category_id,omitempty" db:"category_id"`
	IsPromoted    bool       `json:"is_promoted" db:"is_promoted"`
	PromotedUntil *time.Time `json:"promoted_until,omitempty" db:"promoted_until"`
	Menu          []Dish     `json:"menu,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at,omitempty" db:"updated_at"`
}

// Category groups restaurants for browsing. Slug is derived from the name and
// is the unique browse key.
type Category struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	Slug            string `json:"slug" db:"slug"`
	CoverImage      string `json:"cover_image,omitempty" db:"cover_image"`
	RestaurantCount int    `json:"restaurant_count"`
}

// CategoryPage is one page of restaurants within a category.
type CategoryPage struct {
	Category     Category     `json:"category"`
	Restaurants  []Restaurant `json:"restaurants"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// DishChoice is one of a set of mutually exclusive choices within a dish
// option, optionally carrying its own extra cost.
type DishChoice struct {
	Name  string `json:"name"`
	Extra *int   `json:"extra,omitempty"`
}

// DishOption is either a flat extra-cost add-on (Extra set) or a set of named
// choices. When Extra is set the choices are never consulted.
type DishOption struct {
	Name    string       `json:"name"`
	Extra   *int         `json:"extra,omitempty"`
	Choices []DishChoice `json:"choices,omitempty"`
}

// Dish represents one menu entry. Options are stored as JSONB alongside the
// row.
type Dish struct {
	ID           int64        `json:"id" db:"id"`
	RestaurantID int64        `json:"restaurant_id" db:"restaurant_id"`
	Name         string       `json:"name" db:"name"`
	Price        int          `json:"price" db:"price"`
	Photo        string       `json:"photo,omitempty" db:"photo"`
	Description  string       `json:"description" db:"description"`
	Options      []DishOption `json:"options,omitempty" db:"options"`
	CreatedAt    time.Time    `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateRestaurantRequest represents the request to register a restaurant.
// CategoryName is free-form; the category is looked up or created by its
// slugged form.
type CreateRestaurantRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	CoverImage   string `json:"cover_image,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// Validate validates the create restaurant request.
func (req *CreateRestaurantRequest) Validate() error {
	if len(req.Name) < 2 || len(req.Name) > 100 {
		return fmt.Errorf("name must be between 2 and 100 characters")
	}
	if req.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

// EditRestaurantRequest carries the mutable restaurant fields. Empty fields
// are left untouched.
type EditRestaurantRequest struct {
	Name         string `json:"name,omitempty"`
	Address      string `json:"address,omitempty"`
	CoverImage   string `json:"cover_image,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// CreateDishRequest represents the request to add a dish to a restaurant's
// menu.
type CreateDishRequest struct {
	RestaurantID int64        `json:"restaurant_id"`
	Name         string       `json:"name"`
	Price        int          `json:"price"`
	Photo        string       `json:"photo,omitempty"`
	Description  string       `json:"description"`
	Options      []DishOption `json:"options,omitempty"`
}

// Validate validates the create dish request.
func (req *CreateDishRequest) Validate() error {
	if req.RestaurantID <= 0 {
		return fmt.Errorf("restaurant_id is required")
	}
	if len(req.Name) == 0 || len(req.Name) > 100 {
		return fmt.Errorf("name must be between 1 and 100 characters")
	}
	if req.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	for i, opt := range req.Options {
		if opt.Name == "" {
			return fmt.Errorf("options[%d].name is required", i)
		}
		if opt.Extra != nil && *opt.Extra < 0 {
			return fmt.Errorf("options[%d].extra must not be negative", i)
		}
		for j, choice := range opt.Choices {
			if choice.Name == "" {
				return fmt.Errorf("options[%d].choices[%d].name is required", i, j)
			}
			if choice.Extra != nil && *choice.Extra < 0 {
				return fmt.Errorf("options[%d].choices[%d].extra must not be negative", i, j)
			}
		}
	}
	return nil
}

// EditDishRequest carries the mutable dish fields. Nil fields are left
// untouched.
type EditDishRequest struct {
	Name        *string       `json:"name,omitempty"`
	Price       *int          `json:"price,omitempty"`
	Photo       *string       `json:"photo,omitempty"`
	Description *string       `json:"description,omitempty"`
	Options     *[]DishOption `json:"options,omitempty"`
}

// RestaurantPage is one page of the restaurant listing. Pages hold 25 entries.
type RestaurantPage struct {
	Restaurants  []Restaurant `json:"restaurants"`
	Page         int          `json:"page"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

// PageSize is the fixed page size for restaurant listings.
const PageSize = 25

// Payment records a promotion payment made by an owner for one of their
// restaurants.
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	RestaurantID  int64     `json:"restaurant_id" db:"restaurant_id"`
	CreatedAt     time.Time `json:"created_at,omitempty" db:"created_at"`
}

// PromotionDuration is how long a promotion payment keeps a restaurant
// promoted.
const PromotionDuration = 7 * 24 * time.Hour

// CreatePaymentRequest represents a promotion payment for a restaurant.
type CreatePaymentRequest struct {
	TransactionID string `json:"transaction_id"`
	RestaurantID  int64  `json:"restaurant_id"`
}

// Validate validates the create payment request.
func (req *CreatePaymentRequest) Validate() error {
	if req.TransactionID == "" {
		return fmt.Errorf("transaction_id is required")
	}
	if req.RestaurantID <= 0 {
		return fmt.Errorf("restaurant_id is required")
	}
	return nil
}
