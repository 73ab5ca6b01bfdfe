package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, customer_id, customer_name, items, total, status, delivery_info,
	payment_method, milestones, assigned_driver, assigned_at,
	proof_of_delivery, created_at, updated_at
`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, customer_id, customer_name, items, total, status, delivery_info,
			payment_method, milestones, assigned_driver, assigned_at,
			proof_of_delivery, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	itemsJSON, deliveryInfoJSON, milestonesJSON, driverJSON, podJSON, err := marshalOrderJSON(order)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerID,
		order.CustomerName,
		itemsJSON,
		order.Total,
		order.Status,
		deliveryInfoJSON,
		order.PaymentMethod,
		milestonesJSON,
		driverJSON,
		order.AssignedAt,
		podJSON,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET customer_name = $2, items = $3, total = $4, status = $5,
			delivery_info = $6, payment_method = $7, milestones = $8,
			assigned_driver = $9, assigned_at = $10, proof_of_delivery = $11,
			updated_at = $12
		WHERE id = $1
	`

	order.UpdatedAt = time.Now()

	itemsJSON, deliveryInfoJSON, milestonesJSON, driverJSON, podJSON, err := marshalOrderJSON(order)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.CustomerName,
		itemsJSON,
		order.Total,
		order.Status,
		deliveryInfoJSON,
		order.PaymentMethod,
		milestonesJSON,
		driverJSON,
		order.AssignedAt,
		podJSON,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update order", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: order.ID.String()}
	}

	return nil
}

func (r *orderRepository) List(ctx context.Context, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, normalizeLimit(limit), offset)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, customerID, normalizeLimit(limit), offset)
	if err != nil {
		r.logger.Error("Failed to list orders by customer", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 100
	}
	return limit
}

func marshalOrderJSON(order *domain.Order) (items, deliveryInfo, milestones, driver, pod []byte, err error) {
	if items, err = json.Marshal(order.Items); err != nil {
		return
	}
	if deliveryInfo, err = json.Marshal(order.DeliveryInfo); err != nil {
		return
	}
	if milestones, err = json.Marshal(order.Milestones); err != nil {
		return
	}
	if order.AssignedDriver != nil {
		if driver, err = json.Marshal(order.AssignedDriver); err != nil {
			return
		}
	}
	if order.ProofOfDelivery != nil {
		if pod, err = json.Marshal(order.ProofOfDelivery); err != nil {
			return
		}
	}
	return
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, deliveryInfoJSON, milestonesJSON []byte
	var driverJSON, podJSON []byte
	var assignedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.CustomerName,
		&itemsJSON,
		&order.Total,
		&order.Status,
		&deliveryInfoJSON,
		&order.PaymentMethod,
		&milestonesJSON,
		&driverJSON,
		&assignedAt,
		&podJSON,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(deliveryInfoJSON, &order.DeliveryInfo); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(milestonesJSON, &order.Milestones); err != nil {
		return nil, err
	}
	if len(driverJSON) > 0 {
		order.AssignedDriver = &domain.DriverSnapshot{}
		if err := json.Unmarshal(driverJSON, order.AssignedDriver); err != nil {
			return nil, err
		}
	}
	if len(podJSON) > 0 {
		order.ProofOfDelivery = &domain.ProofOfDelivery{}
		if err := json.Unmarshal(podJSON, order.ProofOfDelivery); err != nil {
			return nil, err
		}
	}
	if assignedAt.Valid {
		order.AssignedAt = &assignedAt.Time
	}

	return &order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
