package catalog

import (
	"context"
	"fmt"
	"strings"

	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Store is the persistence boundary of the catalog domain. Lookups return
// ErrNotFound for absent records.
type Store interface {
	CreateRestaurant(ctx context.Context, r *models.Restaurant) error
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
	DeleteRestaurant(ctx context.Context, id int64) error
	CountRestaurants(ctx context.Context) (int, error)
	ListRestaurants(ctx context.Context, limit, offset int) ([]models.Restaurant, error)
	ListRestaurantsByOwner(ctx context.Context, ownerID int64) ([]models.Restaurant, error)
	SearchRestaurants(ctx context.Context, query string, limit, offset int) ([]models.Restaurant, int, error)

	GetOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	CountRestaurantsByCategory(ctx context.Context, categoryID int64) (int, error)
	ListRestaurantsByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]models.Restaurant, error)

	CreateDish(ctx context.Context, d *models.Dish) error
	GetDish(ctx context.Context, id int64) (*models.Dish, error)
	ListDishes(ctx context.Context, restaurantID int64) ([]models.Dish, error)
	UpdateDish(ctx context.Context, d *models.Dish) error
	DeleteDish(ctx context.Context, id int64) error
}

// Service manages restaurants and their menus. Every mutation checks that the
// acting owner actually owns the restaurant being changed.
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a catalog service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

// CreateRestaurant registers a restaurant owned by the actor, attaching it to
// a category looked up (or created) by the slugged category name.
func (s *Service) CreateRestaurant(ctx context.Context, owner *models.User, req *models.CreateRestaurantRequest) (*models.Restaurant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r := &models.Restaurant{
		Name:       req.Name,
		Address:    req.Address,
		CoverImage: req.CoverImage,
		OwnerID:    owner.ID,
	}
	if req.CategoryName != "" {
		c, err := s.categoryFor(ctx, req.CategoryName)
		if err != nil {
			return nil, err
		}
		r.CategoryID = &c.ID
	}
	if err := s.store.CreateRestaurant(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("restaurant_created", "Restaurant registered", "", map[string]interface{}{
		"restaurant_id": r.ID,
		"owner_id":      owner.ID,
	})
	return r, nil
}

// GetRestaurant returns the restaurant with its full menu.
func (s *Service) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	menu, err := s.store.ListDishes(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Menu = menu
	return r, nil
}

// EditRestaurant updates the mutable fields of an owned restaurant. Empty
// request fields keep their current value.
func (s *Service) EditRestaurant(ctx context.Context, owner *models.User, id int64, req *models.EditRestaurantRequest) (*models.Restaurant, error) {
	r, err := s.ownedRestaurant(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		r.Name = req.Name
	}
	if req.Address != "" {
		r.Address = req.Address
	}
	if req.CoverImage != "" {
		r.CoverImage = req.CoverImage
	}
	if req.CategoryName != "" {
		c, err := s.categoryFor(ctx, req.CategoryName)
		if err != nil {
			return nil, err
		}
		r.CategoryID = &c.ID
	}
	if err := s.store.UpdateRestaurant(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// DeleteRestaurant removes an owned restaurant and, through the schema's
// cascade, its menu.
func (s *Service) DeleteRestaurant(ctx context.Context, owner *models.User, id int64) error {
	if _, err := s.ownedRestaurant(ctx, owner, id); err != nil {
		return err
	}
	return s.store.DeleteRestaurant(ctx, id)
}

// ListRestaurants returns one fixed-size page of the public listing, promoted
// restaurants first. Pages are 1-based.
func (s *Service) ListRestaurants(ctx context.Context, page int) (*models.RestaurantPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := s.store.CountRestaurants(ctx)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.store.ListRestaurants(ctx, models.PageSize, (page-1)*models.PageSize)
	if err != nil {
		return nil, err
	}

	return &models.RestaurantPage{
		Restaurants:  restaurants,
		Page:         page,
		TotalPages:   totalPages(total),
		TotalResults: total,
	}, nil
}

// SearchRestaurants returns one page of restaurants whose name contains the
// query, case-insensitively.
func (s *Service) SearchRestaurants(ctx context.Context, query string, page int) (*models.RestaurantPage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}

	restaurants, total, err := s.store.SearchRestaurants(ctx, query, models.PageSize, (page-1)*models.PageSize)
	if err != nil {
		return nil, err
	}

	return &models.RestaurantPage{
		Restaurants:  restaurants,
		Page:         page,
		TotalPages:   totalPages(total),
		TotalResults: total,
	}, nil
}

// ListCategories returns every category with its restaurant count.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

// CategoryBySlug returns the category and one page of its restaurants,
// promoted first.
func (s *Service) CategoryBySlug(ctx context.Context, slug string, page int) (*models.CategoryPage, error) {
	if page < 1 {
		page = 1
	}

	c, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountRestaurantsByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	restaurants, err := s.store.ListRestaurantsByCategory(ctx, c.ID, models.PageSize, (page-1)*models.PageSize)
	if err != nil {
		return nil, err
	}

	c.RestaurantCount = total
	return &models.CategoryPage{
		Category:     *c,
		Restaurants:  restaurants,
		Page:         page,
		TotalPages:   totalPages(total),
		TotalResults: total,
	}, nil
}

// MyRestaurants returns every restaurant owned by the actor.
func (s *Service) MyRestaurants(ctx context.Context, owner *models.User) ([]models.Restaurant, error) {
	return s.store.ListRestaurantsByOwner(ctx, owner.ID)
}

// CreateDish adds a dish to the menu of an owned restaurant.
func (s *Service) CreateDish(ctx context.Context, owner *models.User, req *models.CreateDishRequest) (*models.Dish, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := s.ownedRestaurant(ctx, owner, req.RestaurantID); err != nil {
		return nil, err
	}

	d := &models.Dish{
		RestaurantID: req.RestaurantID,
		Name:         req.Name,
		Price:        req.Price,
		Photo:        req.Photo,
		Description:  req.Description,
		Options:      req.Options,
	}
	if err := s.store.CreateDish(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// EditDish applies a partial update to a dish on an owned restaurant's menu.
func (s *Service) EditDish(ctx context.Context, owner *models.User, dishID int64, req *models.EditDishRequest) (*models.Dish, error) {
	d, err := s.store.GetDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedRestaurant(ctx, owner, d.RestaurantID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		d.Price = *req.Price
	}
	if req.Photo != nil {
		d.Photo = *req.Photo
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Options != nil {
		d.Options = *req.Options
	}
	if err := s.store.UpdateDish(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DeleteDish removes a dish from an owned restaurant's menu.
func (s *Service) DeleteDish(ctx context.Context, owner *models.User, dishID int64) error {
	d, err := s.store.GetDish(ctx, dishID)
	if err != nil {
		return err
	}
	if _, err := s.ownedRestaurant(ctx, owner, d.RestaurantID); err != nil {
		return err
	}
	return s.store.DeleteDish(ctx, dishID)
}

// categoryFor resolves a free-form category name to a category record,
// creating it on first use. Names differing only in case or surrounding
// whitespace slug to the same category.
func (s *Service) categoryFor(ctx context.Context, name string) (*models.Category, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: category name is empty", ErrInvalidInput)
	}
	return s.store.GetOrCreateCategory(ctx, trimmed, slugify(trimmed))
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// ownedRestaurant loads the restaurant and verifies the actor owns it.
func (s *Service) ownedRestaurant(ctx context.Context, owner *models.User, id int64) (*models.Restaurant, error) {
	r, err := s.store.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != owner.ID {
		return nil, ErrNotOwner
	}
	return r, nil
}

func totalPages(total int) int {
	return (total + models.PageSize - 1) / models.PageSize
}
