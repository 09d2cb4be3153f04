package order

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

// NewRepository creates an order repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error) {
	var rest models.Restaurant
	err := r.db.QueryRow(ctx, database.GetRestaurantByIDSQL, id).Scan(
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
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rest, nil
}

func (r *Repository) GetDish(ctx context.Context, id int64) (*models.Dish, error) {
	var dish models.Dish
	err := r.db.QueryRow(ctx, database.GetDishByIDSQL, id).Scan(
		&dish.ID,
		&dish.RestaurantID,
		&dish.Name,
		&dish.Price,
		&dish.Photo,
		&dish.Description,
		&dish.Options,
		&dish.CreatedAt,
		&dish.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dish, nil
}

// CreateOrder persists the order and all its items in one transaction. Either
// everything commits or nothing does.
func (r *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, database.InsertOrderSQL,
		o.CustomerID, o.RestaurantID, o.Total, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL,
			o.ID, item.DishID, item.DishName, item.Price, item.Options)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, database.GetOrderByIDSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.DishID, &item.DishName, &item.Price, &item.Options)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *Repository) ListOrdersByCustomer(ctx context.Context, customerID int64, status *models.OrderStatus) ([]models.Order, error) {
	return r.listOrders(ctx, database.ListOrdersByCustomerSQL, customerID, status)
}

func (r *Repository) ListOrdersByDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]models.Order, error) {
	return r.listOrders(ctx, database.ListOrdersByDriverSQL, driverID, status)
}

func (r *Repository) ListOrdersByOwner(ctx context.Context, ownerID int64, status *models.OrderStatus) ([]models.Order, error) {
	return r.listOrders(ctx, database.ListOrdersByOwnerSQL, ownerID, status)
}

func (r *Repository) listOrders(ctx context.Context, sql string, userID int64, status *models.OrderStatus) ([]models.Order, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.db.Query(ctx, sql, userID, statusArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return r.db.Exec(ctx, database.UpdateOrderStatusSQL, status, id)
}

// AssignDriver claims the order for the driver only if no driver is set. The
// guard lives in the UPDATE itself, so concurrent claims resolve in the
// database: exactly one caller sees a row affected.
func (r *Repository) AssignDriver(ctx context.Context, orderID, driverID int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, database.AssignOrderDriverSQL, driverID, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID,
		&o.CustomerID,
		&o.DriverID,
		&o.RestaurantID,
		&o.RestaurantOwnerID,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
