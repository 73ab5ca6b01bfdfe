// Package memory provides map-backed repository implementations. They match
// the Postgres semantics closely enough for service and handler tests:
// not-found errors, newest-first listings, and upsert-on-conflict for
// notifications and payments.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// NewRepositories returns a fully wired in-memory repository set
func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		User:         &userRepo{users: map[uuid.UUID]*domain.User{}},
		Order:        &orderRepo{orders: map[uuid.UUID]*domain.Order{}},
		Delivery:     &deliveryRepo{deliveries: map[uuid.UUID]*domain.Delivery{}},
		Driver:       &driverRepo{drivers: map[uuid.UUID]*domain.Driver{}},
		Notification: &notificationRepo{notifications: map[string]*domain.Notification{}},
		Return:       &returnRepo{returns: map[uuid.UUID]*domain.ReturnRequest{}},
		Payment:      &paymentRepo{payments: map[uuid.UUID]*domain.Payment{}},
		Product:      &productRepo{products: map[string]*domain.Product{}},
		Inventory:    &inventoryRepo{records: map[string]*domain.InventoryRecord{}},
		Supplier:     &supplierRepo{suppliers: map[string]*domain.Supplier{}},
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type userRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	u := *user
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *userRepo) GetByTokenLookup(_ context.Context, lookup string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.TokenLookup == lookup {
			u := *user
			return &u, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: lookup}
}

func (r *userRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *userRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	user.Active = active
	return nil
}

func (r *userRepo) UpdateCredential(_ context.Context, id uuid.UUID, tokenLookup, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	user.TokenLookup = tokenLookup
	user.TokenHash = tokenHash
	return nil
}

type orderRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func (r *orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o := *order
	r.orders[order.ID] = &o
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o := *order
	return &o, nil
}

func (r *orderRepo) Update(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
	}
	o := *order
	r.orders[order.ID] = &o
	return nil
}

func (r *orderRepo) List(_ context.Context, limit, offset int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.sorted(func(*domain.Order) bool { return true }), limit, offset), nil
}

func (r *orderRepo) ListByCustomerID(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return paginate(r.sorted(func(o *domain.Order) bool { return o.CustomerID == customerID }), limit, offset), nil
}

func (r *orderRepo) sorted(keep func(*domain.Order) bool) []*domain.Order {
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			o := *order
			orders = append(orders, &o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

type deliveryRepo struct {
	mu         sync.RWMutex
	deliveries map[uuid.UUID]*domain.Delivery
}

func (r *deliveryRepo) Create(_ context.Context, delivery *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *delivery
	r.deliveries[delivery.ID] = &d
	return nil
}

func (r *deliveryRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	delivery, ok := r.deliveries[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "delivery", ID: id.String()}
	}
	d := *delivery
	return &d, nil
}

func (r *deliveryRepo) GetByReferenceNumber(_ context.Context, refNumber string) (*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, delivery := range r.deliveries {
		if delivery.ReferenceNumber == refNumber {
			d := *delivery
			return &d, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "delivery", ID: refNumber}
}

func (r *deliveryRepo) Update(_ context.Context, delivery *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.deliveries[delivery.ID]; !ok {
		return &errors.ErrNotFound{Resource: "delivery", ID: delivery.ID.String()}
	}
	d := *delivery
	r.deliveries[delivery.ID] = &d
	return nil
}

func (r *deliveryRepo) List(_ context.Context, limit, offset int) ([]*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deliveries := make([]*domain.Delivery, 0, len(r.deliveries))
	for _, delivery := range r.deliveries {
		d := *delivery
		deliveries = append(deliveries, &d)
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].CreatedAt.After(deliveries[j].CreatedAt) })
	return paginate(deliveries, limit, offset), nil
}

type driverRepo struct {
	mu      sync.RWMutex
	drivers map[uuid.UUID]*domain.Driver
}

func (r *driverRepo) Create(_ context.Context, driver *domain.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := *driver
	r.drivers[driver.ID] = &d
	return nil
}

func (r *driverRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	driver, ok := r.drivers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "driver", ID: id.String()}
	}
	d := *driver
	return &d, nil
}

func (r *driverRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, driver := range r.drivers {
		if driver.UserID == userID {
			d := *driver
			return &d, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "driver", ID: userID.String()}
}

func (r *driverRepo) List(_ context.Context) ([]*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	drivers := make([]*domain.Driver, 0, len(r.drivers))
	for _, driver := range r.drivers {
		d := *driver
		drivers = append(drivers, &d)
	}
	sort.Slice(drivers, func(i, j int) bool { return drivers[i].CreatedAt.After(drivers[j].CreatedAt) })
	return drivers, nil
}

func (r *driverRepo) Update(_ context.Context, driver *domain.Driver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drivers[driver.ID]; !ok {
		return &errors.ErrNotFound{Resource: "driver", ID: driver.ID.String()}
	}
	d := *driver
	r.drivers[driver.ID] = &d
	return nil
}

type notificationRepo struct {
	mu            sync.RWMutex
	notifications map[string]*domain.Notification
}

func (r *notificationRepo) Upsert(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := *notification
	r.notifications[notification.ID] = &n
	return nil
}

func (r *notificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notification, ok := r.notifications[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "notification", ID: id}
	}
	n := *notification
	return &n, nil
}

func (r *notificationRepo) ListByUserID(_ context.Context, userID string) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	notifications := make([]*domain.Notification, 0)
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			n := *notification
			notifications = append(notifications, &n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification, ok := r.notifications[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "notification", ID: id}
	}
	notification.Read = true
	return nil
}

type returnRepo struct {
	mu      sync.RWMutex
	returns map[uuid.UUID]*domain.ReturnRequest
}

func (r *returnRepo) Create(_ context.Context, ret *domain.ReturnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rr := *ret
	r.returns[ret.ID] = &rr
	return nil
}

func (r *returnRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret, ok := r.returns[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "return", ID: id.String()}
	}
	rr := *ret
	return &rr, nil
}

func (r *returnRepo) List(_ context.Context) ([]*domain.ReturnRequest, error) {
	return r.filtered(func(*domain.ReturnRequest) bool { return true }), nil
}

func (r *returnRepo) ListByCustomerID(_ context.Context, customerID uuid.UUID) ([]*domain.ReturnRequest, error) {
	return r.filtered(func(ret *domain.ReturnRequest) bool { return ret.CustomerID == customerID }), nil
}

func (r *returnRepo) filtered(keep func(*domain.ReturnRequest) bool) []*domain.ReturnRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()
	returns := make([]*domain.ReturnRequest, 0)
	for _, ret := range r.returns {
		if keep(ret) {
			rr := *ret
			returns = append(returns, &rr)
		}
	}
	sort.Slice(returns, func(i, j int) bool { return returns[i].CreatedAt.After(returns[j].CreatedAt) })
	return returns
}

func (r *returnRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.ReturnStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret, ok := r.returns[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "return", ID: id.String()}
	}
	ret.Status = status
	return nil
}

type paymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func (r *paymentRepo) Upsert(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *payment
	r.payments[payment.OrderID] = &p
	return nil
}

func (r *paymentRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[orderID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: orderID.String()}
	}
	p := *payment
	return &p, nil
}

type productRepo struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func (r *productRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id}
	}
	p := *product
	return &p, nil
}

func (r *productRepo) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	products := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		p := *product
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *productRepo) UpdateStock(_ context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id}
	}
	product.Stock = stock
	return nil
}

type supplierRepo struct {
	mu        sync.RWMutex
	suppliers map[string]*domain.Supplier
}

func (r *supplierRepo) Create(_ context.Context, supplier *domain.Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *supplier
	r.suppliers[supplier.ID] = &s
	return nil
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (*domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	supplier, ok := r.suppliers[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "supplier", ID: id}
	}
	s := *supplier
	return &s, nil
}

func (r *supplierRepo) List(_ context.Context) ([]*domain.Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	suppliers := make([]*domain.Supplier, 0, len(r.suppliers))
	for _, supplier := range r.suppliers {
		s := *supplier
		suppliers = append(suppliers, &s)
	}
	sort.Slice(suppliers, func(i, j int) bool { return suppliers[i].ID < suppliers[j].ID })
	return suppliers, nil
}

type inventoryRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.InventoryRecord
}

func (r *inventoryRepo) GetByProductID(_ context.Context, productID string) (*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[productID]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "inventory", ID: productID}
	}
	rec := *record
	return &rec, nil
}

func (r *inventoryRepo) List(_ context.Context) ([]*domain.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*domain.InventoryRecord, 0, len(r.records))
	for _, record := range r.records {
		rec := *record
		records = append(records, &rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ProductID < records[j].ProductID })
	return records, nil
}

func (r *inventoryRepo) Update(_ context.Context, record *domain.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *record
	r.records[record.ProductID] = &rec
	return nil
}
