package promotion

import (
	"context"
	"fmt"
	"time"

	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Store is the persistence boundary of the promotion domain.
type Store interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	ListPaymentsByUser(ctx context.Context, userID int64) ([]models.Payment, error)
	PromoteRestaurant(ctx context.Context, restaurantID int64, until time.Time) error
	ExpirePromotions(ctx context.Context) (int64, error)
}

// Service records promotion payments and promotes the paid-for restaurant
// for a fixed window.
type Service struct {
	store  Store
	logger *logger.Logger
}

// NewService creates a promotion service.
func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log,
	}
}

// CreatePayment records the payment and promotes the restaurant until one
// promotion window from now. The restaurant must exist and belong to the
// paying owner.
func (s *Service) CreatePayment(ctx context.Context, owner *models.User, req *models.CreatePaymentRequest) (*models.Payment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	r, err := s.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if r.OwnerID != owner.ID {
		return nil, ErrNotOwner
	}

	p := &models.Payment{
		TransactionID: req.TransactionID,
		UserID:        owner.ID,
		RestaurantID:  req.RestaurantID,
	}
	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	until := time.Now().UTC().Add(models.PromotionDuration)
	if err := s.store.PromoteRestaurant(ctx, req.RestaurantID, until); err != nil {
		return nil, err
	}

	s.logger.Info("restaurant_promoted", "Promotion payment recorded", "", map[string]interface{}{
		"restaurant_id":  req.RestaurantID,
		"owner_id":       owner.ID,
		"promoted_until": until,
	})
	return p, nil
}

// ListPayments returns the actor's payment history.
func (s *Service) ListPayments(ctx context.Context, owner *models.User) ([]models.Payment, error) {
	return s.store.ListPaymentsByUser(ctx, owner.ID)
}
