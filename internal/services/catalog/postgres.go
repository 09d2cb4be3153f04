package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"grubmarket/internal/database"
	"grubmarket/internal/models"
)

// Repository implements Store over PostgreSQL.
type Repository struct {
	db *database.DB
}

// NewRepository creates a catalog repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	return r.db.QueryRow(ctx, database.InsertRestaurantSQL,
		rest.Name, rest.Address, rest.CoverImage, rest.OwnerID, rest.CategoryID,
	).Scan(&rest.ID, &rest.CreatedAt, &rest.UpdatedAt)
}

func (r *Repository) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	rest, err := scanRestaurant(r.db.QueryRow(ctx, database.GetRestaurantByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rest, nil
}

func (r *Repository) UpdateRestaurant(ctx context.Context, rest *models.Restaurant) error {
	return r.db.Exec(ctx, database.UpdateRestaurantSQL,
		rest.Name, rest.Address, rest.CoverImage, rest.CategoryID, rest.ID)
}

// DeleteRestaurant removes the restaurant. Orders keep a plain foreign key to
// their restaurant, so a restaurant with order history cannot be deleted; the
// constraint violation maps to ErrHasOrders.
func (r *Repository) DeleteRestaurant(ctx context.Context, id int64) error {
	err := r.db.Exec(ctx, database.DeleteRestaurantSQL, id)
	if database.IsForeignKeyViolation(err) {
		return ErrHasOrders
	}
	return err
}

func (r *Repository) CountRestaurants(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, database.CountRestaurantsSQL).Scan(&total)
	return total, err
}

func (r *Repository) ListRestaurants(ctx context.Context, limit, offset int) ([]models.Restaurant, error) {
	return r.queryRestaurants(ctx, database.ListRestaurantsSQL, limit, offset)
}

func (r *Repository) ListRestaurantsByOwner(ctx context.Context, ownerID int64) ([]models.Restaurant, error) {
	return r.queryRestaurants(ctx, database.ListRestaurantsByOwnerSQL, ownerID)
}

func (r *Repository) SearchRestaurants(ctx context.Context, query string, limit, offset int) ([]models.Restaurant, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, database.CountSearchRestaurantsSQL, query).Scan(&total); err != nil {
		return nil, 0, err
	}
	restaurants, err := r.queryRestaurants(ctx, database.SearchRestaurantsSQL, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return restaurants, total, nil
}

func (r *Repository) queryRestaurants(ctx context.Context, sql string, args ...interface{}) ([]models.Restaurant, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []models.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

func (r *Repository) GetOrCreateCategory(ctx context.Context, name, slug string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, database.GetOrCreateCategorySQL, name, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.CoverImage)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRow(ctx, database.GetCategoryBySlugSQL, slug).Scan(
		&c.ID, &c.Name, &c.Slug, &c.CoverImage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, database.ListCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CoverImage, &c.RestaurantCount)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *Repository) CountRestaurantsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var total int
	err := r.db.QueryRow(ctx, database.CountRestaurantsByCategorySQL, categoryID).Scan(&total)
	return total, err
}

func (r *Repository) ListRestaurantsByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]models.Restaurant, error) {
	return r.queryRestaurants(ctx, database.ListRestaurantsByCategorySQL, categoryID, limit, offset)
}

func (r *Repository) CreateDish(ctx context.Context, d *models.Dish) error {
	return r.db.QueryRow(ctx, database.InsertDishSQL,
		d.RestaurantID, d.Name, d.Price, d.Photo, d.Description, d.Options,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *Repository) GetDish(ctx context.Context, id int64) (*models.Dish, error) {
	d, err := scanDish(r.db.QueryRow(ctx, database.GetDishByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repository) ListDishes(ctx context.Context, restaurantID int64) ([]models.Dish, error) {
	rows, err := r.db.Query(ctx, database.ListDishesByRestaurantSQL, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dishes []models.Dish
	for rows.Next() {
		d, err := scanDish(rows)
		if err != nil {
			return nil, err
		}
		dishes = append(dishes, *d)
	}
	return dishes, rows.Err()
}

func (r *Repository) UpdateDish(ctx context.Context, d *models.Dish) error {
	return r.db.Exec(ctx, database.UpdateDishSQL,
		d.Name, d.Price, d.Photo, d.Description, d.Options, d.ID)
}

func (r *Repository) DeleteDish(ctx context.Context, id int64) error {
	return r.db.Exec(ctx, database.DeleteDishSQL, id)
}

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := row.Scan(
		&rest.ID,
		&rest.Name,
		&rest.Address,
		&rest.CoverImage,
		&rest.OwnerID,
		&rest.CategoryID,
		&rest.IsPromoted,
		&rest.PromotedUntil,
		&rest.CreatedAt,
		&rest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func scanDish(row pgx.Row) (*models.Dish, error) {
	var d models.Dish
	err := row.Scan(
		&d.ID,
		&d.RestaurantID,
		&d.Name,
		&d.Price,
		&d.Photo,
		&d.Description,
		&d.Options,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
