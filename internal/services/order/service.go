package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grubmarket/internal/cache"
	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// Store is the persistence boundary of the order domain. Implementations
// return ErrNotFound for absent records; CreateOrder persists the order and
// all its items atomically; AssignDriver sets the driver only if none is set
// yet and reports whether it won.
type Store interface {
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	GetDish(ctx context.Context, id int64) (*models.Dish, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	ListOrdersByCustomer(ctx context.Context, customerID int64, status *models.OrderStatus) ([]models.Order, error)
	ListOrdersByDriver(ctx context.Context, driverID int64, status *models.OrderStatus) ([]models.Order, error)
	ListOrdersByOwner(ctx context.Context, ownerID int64, status *models.OrderStatus) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	AssignDriver(ctx context.Context, orderID, driverID int64) (bool, error)
}

// EventPublisher publishes lifecycle events. Publication is fire-and-forget:
// the service logs failures and never rolls back a committed change.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

// Service orchestrates the order lifecycle: creation with pricing, role-based
// reads, status edits, and driver claims.
type Service struct {
	store      Store
	events     EventPublisher
	orderCache *cache.OrderCache
	logger     *logger.Logger
}

// NewService creates an order service. orderCache may be nil.
func NewService(store Store, events EventPublisher, orderCache *cache.OrderCache, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		events:     events,
		orderCache: orderCache,
		logger:     log,
	}
}

// Create places a new order for the customer. The restaurant and every dish
// must exist; pricing is computed from the live menu and snapshotted onto the
// line items; the order and its items are persisted atomically. A pending
// event scoped to the restaurant owner is published after commit.
func (s *Service) Create(ctx context.Context, customer *models.User, req *models.CreateOrderRequest) (*models.CreateOrderResponse, error) {
	if customer.Role != models.RoleClient {
		return nil, fmt.Errorf("%w: only clients can place orders", ErrUnauthorized)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	restaurant, err := s.store.GetRestaurant(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: restaurant %d", ErrNotFound, req.RestaurantID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := 0
	for _, sel := range req.Items {
		dish, err := s.store.GetDish(ctx, sel.DishID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// One unknown dish aborts the whole order.
				return nil, fmt.Errorf("%w: dish %d", ErrNotFound, sel.DishID)
			}
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		line := LineTotal(dish, sel.Options)
		total += line
		items = append(items, models.OrderItem{
			DishID:   dish.ID,
			DishName: dish.Name,
			Price:    line,
			Options:  sel.Options,
		})
	}

	o := &models.Order{
		CustomerID:        customer.ID,
		RestaurantID:      restaurant.ID,
		RestaurantOwnerID: restaurant.OwnerID,
		Items:             items,
		Total:             total,
		Status:            models.StatusPending,
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	s.cacheOrder(ctx, o)
	s.publish(ctx, models.OrderEvent{
		Event:      models.EventOrderPending,
		Order:      *o,
		OwnerID:    restaurant.OwnerID,
		OccurredAt: time.Now().UTC(),
	})

	return &models.CreateOrderResponse{
		OrderID: o.ID,
		Total:   o.Total,
		Status:  o.Status,
	}, nil
}

// Get returns the order with its items, provided the actor may see it.
func (s *Service) Get(ctx context.Context, actor *models.User, orderID int64) (*models.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanView(actor, o) {
		return nil, ErrUnauthorized
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	o.Items = items
	return o, nil
}

// List returns the orders reachable by the actor's role, optionally filtered
// by exact status. The role alone determines the query scope.
func (s *Service) List(ctx context.Context, actor *models.User, status *models.OrderStatus) ([]models.Order, error) {
	var (
		orders []models.Order
		err    error
	)
	switch actor.Role {
	case models.RoleClient:
		orders, err = s.store.ListOrdersByCustomer(ctx, actor.ID, status)
	case models.RoleDelivery:
		orders, err = s.store.ListOrdersByDriver(ctx, actor.ID, status)
	case models.RoleOwner:
		orders, err = s.store.ListOrdersByOwner(ctx, actor.ID, status)
	default:
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return orders, nil
}

// Edit moves the order to the requested status if the actor may see the order
// and the role/status pairing allows it. An owner setting cooked publishes a
// dedicated cooked event on top of the generic update.
func (s *Service) Edit(ctx context.Context, actor *models.User, orderID int64, status models.OrderStatus) error {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanView(actor, o) {
		return ErrUnauthorized
	}
	if !CanEdit(actor, status) {
		return ErrUnauthorized
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	o.Status = status

	s.cacheOrder(ctx, o)
	now := time.Now().UTC()
	if actor.Role == models.RoleOwner && status == models.StatusCooked {
		s.publish(ctx, models.OrderEvent{Event: models.EventOrderCooked, Order: *o, OccurredAt: now})
	}
	s.publish(ctx, models.OrderEvent{Event: models.EventOrderUpdated, Order: *o, OccurredAt: now})
	return nil
}

// Take lets a driver claim an unassigned order. The claim is conditional at
// the store ("assign iff no driver"), so two racing drivers resolve to one
// winner and one ErrOrderTaken.
func (s *Service) Take(ctx context.Context, driver *models.User, orderID int64) error {
	if driver.Role != models.RoleDelivery {
		return fmt.Errorf("%w: only delivery can take orders", ErrUnauthorized)
	}

	o, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if o.DriverID != nil {
		return ErrOrderTaken
	}

	won, err := s.store.AssignDriver(ctx, orderID, driver.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if !won {
		return ErrOrderTaken
	}

	o.DriverID = &driver.ID
	s.cacheOrder(ctx, o)
	s.publish(ctx, models.OrderEvent{
		Event:      models.EventOrderUpdated,
		Order:      *o,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Status returns just the current status. load serves from the cache when
// warm, so a polling tracker rarely touches the database.
func (s *Service) Status(ctx context.Context, actor *models.User, orderID int64) (models.OrderStatus, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return "", err
	}
	if !CanView(actor, o) {
		return "", ErrUnauthorized
	}
	return o.Status, nil
}

// load resolves an order row, cache first. Every mutation in this service
// rewrites the cache entry, so a hit is as current as the database for
// anything mutated through here.
func (s *Service) load(ctx context.Context, orderID int64) (*models.Order, error) {
	if s.orderCache != nil {
		if o, ok := s.orderCache.Get(ctx, orderID); ok {
			return o, nil
		}
	}

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.cacheOrder(ctx, o)
	return o, nil
}

func (s *Service) cacheOrder(ctx context.Context, o *models.Order) {
	if s.orderCache != nil {
		s.orderCache.Set(ctx, o)
	}
}

// publish emits a lifecycle event, logging failures instead of propagating
// them: the state change is already committed.
func (s *Service) publish(ctx context.Context, event models.OrderEvent) {
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.Error("event_publish_failed",
			fmt.Sprintf("Failed to publish %s", event.Event),
			"", err, map[string]interface{}{
				"event":    event.Event,
				"order_id": event.Order.ID,
			})
	}
}
