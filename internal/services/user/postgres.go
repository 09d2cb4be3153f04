package user

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

// NewRepository creates a user repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx, database.InsertUserSQL, u.Email, u.Password, u.Role).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if database.IsUniqueViolation(err) {
		// Two registrations raced past the pre-check; the unique index on
		// email settles it.
		return ErrEmailTaken
	}
	return err
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, database.GetUserByEmailSQL, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanUser(r.db.QueryRow(ctx, database.GetUserByIDSQL, id))
}

func (r *Repository) UpdateUser(ctx context.Context, u *models.User) error {
	return r.db.Exec(ctx, database.UpdateUserSQL, u.Email, u.Password, u.Verified, u.ID)
}

func (r *Repository) UpsertVerification(ctx context.Context, userID int64, code string) error {
	return r.db.Exec(ctx, database.UpsertVerificationSQL, userID, code)
}

// VerifyUserByCode resolves the code, flips the owner's verified flag and
// discards the code, all in one transaction.
func (r *Repository) VerifyUserByCode(ctx context.Context, code string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var userID int64
	err = tx.QueryRow(ctx, database.GetVerificationUserSQL, code).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVerificationNotFound
	}
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, database.MarkUserVerifiedSQL, userID); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, database.DeleteVerificationSQL, userID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return userID, nil
}

func (r *Repository) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.Verified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
