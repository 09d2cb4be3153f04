package promotion

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"grubmarket/internal/database"
	"grubmarket/internal/models"
)

// Repository implements Store over PostgreSQL.
type Repository struct {
	db *database.DB
}

// NewRepository creates a promotion repository.
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

func (r *Repository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.QueryRow(ctx, database.InsertPaymentSQL,
		p.TransactionID, p.UserID, p.RestaurantID,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *Repository) ListPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, database.ListPaymentsByUserSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.TransactionID, &p.UserID, &p.RestaurantID, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *Repository) PromoteRestaurant(ctx context.Context, restaurantID int64, until time.Time) error {
	return r.db.Exec(ctx, database.PromoteRestaurantSQL, until, restaurantID)
}

// ExpirePromotions clears the promoted flag on every restaurant whose window
// has passed and reports how many it touched.
func (r *Repository) ExpirePromotions(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, database.ExpirePromotionsSQL)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
