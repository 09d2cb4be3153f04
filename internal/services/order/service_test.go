package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"grubmarket/internal/logger"
	"grubmarket/internal/models"
)

// fakeStore keeps everything in maps guarded by a mutex so the concurrent
// claim test exercises the same conditional assignment the database does.
type fakeStore struct {
	mu          sync.Mutex
	restaurants map[int64]*models.Restaurant
	dishes      map[int64]*models.Dish
	orders      map[int64]*models.Order
	items       map[int64][]models.OrderItem
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		restaurants: make(map[int64]*models.Restaurant),
		dishes:      make(map[int64]*models.Dish),
		orders:      make(map[int64]*models.Order),
		items:       make(map[int64][]models.OrderItem),
	}
}

func (f *fakeStore) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.restaurants[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) GetDish(_ context.Context, id int64) (*models.Dish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.dishes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	cp := *o
	cp.Items = nil
	f.orders[o.ID] = &cp
	items := make([]models.OrderItem, len(o.Items))
	copy(items, o.Items)
	for i := range items {
		items[i].OrderID = o.ID
	}
	f.items[o.ID] = items
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetOrderItems(_ context.Context, orderID int64) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]models.OrderItem, len(f.items[orderID]))
	copy(items, f.items[orderID])
	return items, nil
}

func (f *fakeStore) ListOrdersByCustomer(_ context.Context, customerID int64, status *models.OrderStatus) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.CustomerID == customerID }, status), nil
}

func (f *fakeStore) ListOrdersByDriver(_ context.Context, driverID int64, status *models.OrderStatus) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.DriverID != nil && *o.DriverID == driverID }, status), nil
}

func (f *fakeStore) ListOrdersByOwner(_ context.Context, ownerID int64, status *models.OrderStatus) ([]models.Order, error) {
	return f.list(func(o *models.Order) bool { return o.RestaurantOwnerID == ownerID }, status), nil
}

func (f *fakeStore) list(match func(*models.Order) bool, status *models.OrderStatus) []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, o := range f.orders {
		if !match(o) {
			continue
		}
		if status != nil && o.Status != *status {
			continue
		}
		out = append(out, *o)
	}
	return out
}

func (f *fakeStore) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeStore) AssignDriver(_ context.Context, orderID, driverID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.DriverID != nil {
		return false, nil
	}
	id := driverID
	o.DriverID = &id
	return true, nil
}

// fakePublisher records every published event.
type fakePublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) published() []models.OrderEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.OrderEvent, len(f.events))
	copy(out, f.events)
	return out
}

func newTestService(store *fakeStore, pub *fakePublisher) *Service {
	return NewService(store, pub, nil, logger.New("order-test"))
}

func seedCatalog(store *fakeStore) {
	store.restaurants[1] = &models.Restaurant{ID: 1, Name: "Golden Wok", OwnerID: 10}
	store.dishes[1] = &models.Dish{
		ID: 1, RestaurantID: 1, Name: "Fried Rice", Price: 10,
		Options: []models.DishOption{
			{Name: "Size", Choices: []models.DishChoice{{Name: "Large", Extra: intPtr(2)}}},
		},
	}
	store.dishes[2] = &models.Dish{
		ID: 2, RestaurantID: 1, Name: "Spring Rolls", Price: 10,
		Options: []models.DishOption{
			{Name: "Spicy", Extra: intPtr(1)},
		},
	}
}

var (
	client = &models.User{ID: 3, Role: models.RoleClient}
	owner  = &models.User{ID: 10, Role: models.RoleOwner}
	driver = &models.User{ID: 7, Role: models.RoleDelivery}
)

func placeOrder(t *testing.T, svc *Service) int64 {
	t.Helper()
	resp, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{
		RestaurantID: 1,
		Items: []models.OrderItemSelection{
			{DishID: 1, Options: []models.OrderItemOption{{Name: "Size", Choice: "Large"}}},
			{DishID: 2, Options: []models.OrderItemOption{{Name: "Spicy"}}},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return resp.OrderID
}

func TestCreate_PricesItemsAndPublishesPending(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	resp, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{
		RestaurantID: 1,
		Items: []models.OrderItemSelection{
			{DishID: 1, Options: []models.OrderItemOption{{Name: "Size", Choice: "Large"}}},
			{DishID: 2, Options: []models.OrderItemOption{{Name: "Spicy"}}},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if resp.Total != 23 {
		t.Errorf("total = %d, want 23", resp.Total)
	}
	if resp.Status != models.StatusPending {
		t.Errorf("status = %s, want %s", resp.Status, models.StatusPending)
	}

	items := store.items[resp.OrderID]
	if len(items) != 2 {
		t.Fatalf("persisted %d items, want 2", len(items))
	}
	if items[0].DishName != "Fried Rice" || items[0].Price != 12 {
		t.Errorf("item 0 = %q/%d, want Fried Rice/12", items[0].DishName, items[0].Price)
	}
	if items[1].DishName != "Spring Rolls" || items[1].Price != 11 {
		t.Errorf("item 1 = %q/%d, want Spring Rolls/11", items[1].DishName, items[1].Price)
	}

	events := pub.published()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	if events[0].Event != models.EventOrderPending {
		t.Errorf("event = %s, want %s", events[0].Event, models.EventOrderPending)
	}
	if events[0].OwnerID != owner.ID {
		t.Errorf("event owner = %d, want %d", events[0].OwnerID, owner.ID)
	}
}

func TestCreate_UnknownDishPersistsNothing(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	pub := &fakePublisher{}
	svc := newTestService(store, pub)

	_, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{
		RestaurantID: 1,
		Items: []models.OrderItemSelection{
			{DishID: 1},
			{DishID: 99},
		},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}
	if len(store.orders) != 0 {
		t.Errorf("persisted %d orders, want 0", len(store.orders))
	}
	if len(pub.published()) != 0 {
		t.Errorf("published events on failed create")
	}
}

func TestCreate_UnknownRestaurant(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakePublisher{})

	_, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{
		RestaurantID: 42,
		Items:        []models.OrderItemSelection{{DishID: 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}
}

func TestCreate_EmptyItems(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})

	_, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{RestaurantID: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Create() error = %v, want ErrInvalidInput", err)
	}
}

func TestCreate_NonClientDenied(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})

	for _, actor := range []*models.User{owner, driver} {
		_, err := svc.Create(context.Background(), actor, &models.CreateOrderRequest{
			RestaurantID: 1,
			Items:        []models.OrderItemSelection{{DishID: 1}},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("Create(%s) error = %v, want ErrUnauthorized", actor.Role, err)
		}
	}
}

func TestGet_Visibility(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	if _, err := svc.Get(context.Background(), client, orderID); err != nil {
		t.Errorf("customer Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), owner, orderID); err != nil {
		t.Errorf("owner Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), driver, orderID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("unassigned driver Get() error = %v, want ErrUnauthorized", err)
	}

	stranger := &models.User{ID: 99, Role: models.RoleClient}
	if _, err := svc.Get(context.Background(), stranger, orderID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger Get() error = %v, want ErrUnauthorized", err)
	}

	if _, err := svc.Get(context.Background(), client, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing order Get() error = %v, want ErrNotFound", err)
	}
}

func TestGet_IncludesItems(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	o, err := svc.Get(context.Background(), client, orderID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(o.Items) != 2 {
		t.Errorf("Get() returned %d items, want 2", len(o.Items))
	}
}

func TestEdit_OwnerCookedPublishesBothEvents(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	pub := &fakePublisher{}
	svc := newTestService(store, pub)
	orderID := placeOrder(t, svc)
	before := len(pub.published())

	if err := svc.Edit(context.Background(), owner, orderID, models.StatusCooked); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if got := store.orders[orderID].Status; got != models.StatusCooked {
		t.Errorf("status = %s, want %s", got, models.StatusCooked)
	}

	events := pub.published()[before:]
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2", len(events))
	}
	if events[0].Event != models.EventOrderCooked || events[1].Event != models.EventOrderUpdated {
		t.Errorf("events = %s, %s; want %s, %s",
			events[0].Event, events[1].Event, models.EventOrderCooked, models.EventOrderUpdated)
	}
}

func TestEdit_DisallowedPairingLeavesStatus(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	pub := &fakePublisher{}
	svc := newTestService(store, pub)
	orderID := placeOrder(t, svc)
	before := len(pub.published())

	tests := []struct {
		name   string
		actor  *models.User
		status models.OrderStatus
	}{
		{"owner cannot set picked_up", owner, models.StatusPickedUp},
		{"customer cannot edit at all", client, models.StatusCooking},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Edit(context.Background(), tt.actor, orderID, tt.status)
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("Edit() error = %v, want ErrUnauthorized", err)
			}
			if got := store.orders[orderID].Status; got != models.StatusPending {
				t.Errorf("status = %s, want %s", got, models.StatusPending)
			}
		})
	}
	if got := len(pub.published()) - before; got != 0 {
		t.Errorf("published %d events on denied edits, want 0", got)
	}
}

func TestEdit_AssignedDriverDelivers(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	if err := svc.Edit(context.Background(), driver, orderID, models.StatusDelivered); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("unassigned driver Edit() error = %v, want ErrUnauthorized", err)
	}

	if err := svc.Take(context.Background(), driver, orderID); err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if err := svc.Edit(context.Background(), driver, orderID, models.StatusDelivered); err != nil {
		t.Fatalf("assigned driver Edit() error = %v", err)
	}
	if got := store.orders[orderID].Status; got != models.StatusDelivered {
		t.Errorf("status = %s, want %s", got, models.StatusDelivered)
	}
}

func TestTake_SecondDriverConflicts(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	if err := svc.Take(context.Background(), driver, orderID); err != nil {
		t.Fatalf("first Take() error = %v", err)
	}

	other := &models.User{ID: 8, Role: models.RoleDelivery}
	if err := svc.Take(context.Background(), other, orderID); !errors.Is(err, ErrOrderTaken) {
		t.Fatalf("second Take() error = %v, want ErrOrderTaken", err)
	}
	if got := store.orders[orderID].DriverID; got == nil || *got != driver.ID {
		t.Errorf("driver = %v, want %d", got, driver.ID)
	}
}

func TestTake_NonDriverDenied(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	if err := svc.Take(context.Background(), client, orderID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("client Take() error = %v, want ErrUnauthorized", err)
	}
}

func TestTake_ConcurrentClaimsOneWinner(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	drivers := []*models.User{
		{ID: 7, Role: models.RoleDelivery},
		{ID: 8, Role: models.RoleDelivery},
	}
	errs := make([]error, len(drivers))
	var wg sync.WaitGroup
	for i, d := range drivers {
		wg.Add(1)
		go func(i int, d *models.User) {
			defer wg.Done()
			errs[i] = svc.Take(context.Background(), d, orderID)
		}(i, d)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrOrderTaken):
			conflicts++
		default:
			t.Fatalf("unexpected Take() error = %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("wins = %d, conflicts = %d; want 1 and 1", wins, conflicts)
	}
	if store.orders[orderID].DriverID == nil {
		t.Error("order left unassigned")
	}
}

func TestList_ScopedByRole(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	first := placeOrder(t, svc)
	placeOrder(t, svc)

	otherClient := &models.User{ID: 4, Role: models.RoleClient}
	resp, err := svc.Create(context.Background(), otherClient, &models.CreateOrderRequest{
		RestaurantID: 1,
		Items:        []models.OrderItemSelection{{DishID: 1}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Take(context.Background(), driver, first); err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	got, err := svc.List(context.Background(), client, nil)
	if err != nil {
		t.Fatalf("client List() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("client sees %d orders, want 2", len(got))
	}

	got, err = svc.List(context.Background(), driver, nil)
	if err != nil {
		t.Fatalf("driver List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != first {
		t.Errorf("driver sees %d orders, want just order %d", len(got), first)
	}

	got, err = svc.List(context.Background(), owner, nil)
	if err != nil {
		t.Fatalf("owner List() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("owner sees %d orders, want 3", len(got))
	}

	if err := svc.Edit(context.Background(), owner, resp.OrderID, models.StatusCooking); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	cooking := models.StatusCooking
	got, err = svc.List(context.Background(), owner, &cooking)
	if err != nil {
		t.Fatalf("filtered List() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != resp.OrderID {
		t.Errorf("filtered list = %d orders, want just order %d", len(got), resp.OrderID)
	}
}

func TestStatus_RequiresVisibility(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	svc := newTestService(store, &fakePublisher{})
	orderID := placeOrder(t, svc)

	status, err := svc.Status(context.Background(), client, orderID)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status != models.StatusPending {
		t.Errorf("status = %s, want %s", status, models.StatusPending)
	}

	stranger := &models.User{ID: 99, Role: models.RoleClient}
	if _, err := svc.Status(context.Background(), stranger, orderID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("stranger Status() error = %v, want ErrUnauthorized", err)
	}
}

func TestEdit_PublishFailureDoesNotFailEdit(t *testing.T) {
	store := newFakeStore()
	seedCatalog(store)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(store, pub)

	resp, err := svc.Create(context.Background(), client, &models.CreateOrderRequest{
		RestaurantID: 1,
		Items:        []models.OrderItemSelection{{DishID: 1}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := svc.Edit(context.Background(), owner, resp.OrderID, models.StatusCooking); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if got := store.orders[resp.OrderID].Status; got != models.StatusCooking {
		t.Errorf("status = %s, want %s", got, models.StatusCooking)
	}
}
