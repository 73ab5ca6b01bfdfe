package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:         NewUserRepository(db, logger),
		Order:        NewOrderRepository(db, logger),
		Delivery:     NewDeliveryRepository(db, logger),
		Driver:       NewDriverRepository(db, logger),
		Notification: NewNotificationRepository(db, logger),
		Return:       NewReturnRepository(db, logger),
		Payment:      NewPaymentRepository(db, logger),
		Product:      NewProductRepository(db, logger),
		Inventory:    NewInventoryRepository(db, logger),
		Supplier:     NewSupplierRepository(db, logger),
	}
}
