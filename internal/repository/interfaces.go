package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
)

// UserRepository defines user profile data access methods
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByTokenLookup(ctx context.Context, lookup string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateCredential(ctx context.Context, id uuid.UUID, tokenLookup, tokenHash string) error
}

// OrderRepository defines order data access methods
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, limit, offset int) ([]*domain.Order, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error)
}

// DeliveryRepository defines delivery data access methods
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *domain.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error)
	GetByReferenceNumber(ctx context.Context, refNumber string) (*domain.Delivery, error)
	Update(ctx context.Context, delivery *domain.Delivery) error
	List(ctx context.Context, limit, offset int) ([]*domain.Delivery, error)
}

// DriverRepository defines driver data access methods
type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Driver, error)
	List(ctx context.Context) ([]*domain.Driver, error)
	Update(ctx context.Context, driver *domain.Driver) error
}

// NotificationRepository defines notification data access methods.
// Upsert overwrites on conflicting dedup key so repeated transitions to the
// same status keep exactly one record per {entityID, status} pair.
type NotificationRepository interface {
	Upsert(ctx context.Context, notification *domain.Notification) error
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByUserID(ctx context.Context, userID string) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// ReturnRepository defines return request data access methods
type ReturnRepository interface {
	Create(ctx context.Context, ret *domain.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error)
	List(ctx context.Context) ([]*domain.ReturnRequest, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*domain.ReturnRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReturnStatus) error
}

// PaymentRepository defines payment data access methods
type PaymentRepository interface {
	Upsert(ctx context.Context, payment *domain.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
}

// ProductRepository defines product catalog data access methods
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int) error
}

// SupplierRepository defines supplier data access methods
type SupplierRepository interface {
	Create(ctx context.Context, supplier *domain.Supplier) error
	GetByID(ctx context.Context, id string) (*domain.Supplier, error)
	List(ctx context.Context) ([]*domain.Supplier, error)
}

// InventoryRepository defines inventory data access methods
type InventoryRepository interface {
	GetByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error)
	List(ctx context.Context) ([]*domain.InventoryRecord, error)
	Update(ctx context.Context, record *domain.InventoryRecord) error
}

// Repositories aggregates all repositories
type Repositories struct {
	User         UserRepository
	Order        OrderRepository
	Delivery     DeliveryRepository
	Driver       DriverRepository
	Notification NotificationRepository
	Return       ReturnRepository
	Payment      PaymentRepository
	Product      ProductRepository
	Inventory    InventoryRepository
	Supplier     SupplierRepository
}
