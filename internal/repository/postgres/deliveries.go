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

type deliveryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sql.DB, logger *zap.Logger) *deliveryRepository {
	return &deliveryRepository{
		db:     db,
		logger: logger,
	}
}

const deliveryColumns = `
	id, reference_number, customer_name, customer_phone, address, status,
	assigned_driver, estimated_delivery, created_at, updated_at
`

func (r *deliveryRepository) Create(ctx context.Context, delivery *domain.Delivery) error {
	query := `
		INSERT INTO deliveries (
			id, reference_number, customer_name, customer_phone, address, status,
			assigned_driver, estimated_delivery, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	if delivery.CreatedAt.IsZero() {
		delivery.CreatedAt = now
	}
	if delivery.UpdatedAt.IsZero() {
		delivery.UpdatedAt = now
	}

	addressJSON, err := json.Marshal(delivery.Address)
	if err != nil {
		return err
	}
	var driverJSON []byte
	if delivery.AssignedDriver != nil {
		if driverJSON, err = json.Marshal(delivery.AssignedDriver); err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.ReferenceNumber,
		delivery.CustomerName,
		delivery.CustomerPhone,
		addressJSON,
		delivery.Status,
		driverJSON,
		delivery.EstimatedDelivery,
		delivery.CreatedAt,
		delivery.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create delivery", zap.Error(err))
		return err
	}

	return nil
}

func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`

	delivery, err := scanDelivery(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "delivery", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get delivery by ID", zap.Error(err))
		return nil, err
	}

	return delivery, nil
}

func (r *deliveryRepository) GetByReferenceNumber(ctx context.Context, refNumber string) (*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE reference_number = $1`

	delivery, err := scanDelivery(r.db.QueryRowContext(ctx, query, refNumber))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "delivery", ID: refNumber}
	}
	if err != nil {
		r.logger.Error("Failed to get delivery by reference number", zap.Error(err))
		return nil, err
	}

	return delivery, nil
}

func (r *deliveryRepository) Update(ctx context.Context, delivery *domain.Delivery) error {
	query := `
		UPDATE deliveries
		SET customer_name = $2, customer_phone = $3, address = $4, status = $5,
			assigned_driver = $6, estimated_delivery = $7, updated_at = $8
		WHERE id = $1
	`

	delivery.UpdatedAt = time.Now()

	addressJSON, err := json.Marshal(delivery.Address)
	if err != nil {
		return err
	}
	var driverJSON []byte
	if delivery.AssignedDriver != nil {
		if driverJSON, err = json.Marshal(delivery.AssignedDriver); err != nil {
			return err
		}
	}

	result, err := r.db.ExecContext(ctx, query,
		delivery.ID,
		delivery.CustomerName,
		delivery.CustomerPhone,
		addressJSON,
		delivery.Status,
		driverJSON,
		delivery.EstimatedDelivery,
		delivery.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update delivery", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "delivery", ID: delivery.ID.String()}
	}

	return nil
}

func (r *deliveryRepository) List(ctx context.Context, limit, offset int) ([]*domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, normalizeLimit(limit), offset)
	if err != nil {
		r.logger.Error("Failed to list deliveries", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var deliveries []*domain.Delivery
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries, rows.Err()
}

func scanDelivery(row rowScanner) (*domain.Delivery, error) {
	var delivery domain.Delivery
	var addressJSON, driverJSON []byte

	err := row.Scan(
		&delivery.ID,
		&delivery.ReferenceNumber,
		&delivery.CustomerName,
		&delivery.CustomerPhone,
		&addressJSON,
		&delivery.Status,
		&driverJSON,
		&delivery.EstimatedDelivery,
		&delivery.CreatedAt,
		&delivery.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(addressJSON, &delivery.Address); err != nil {
		return nil, err
	}
	if len(driverJSON) > 0 {
		delivery.AssignedDriver = &domain.DriverSnapshot{}
		if err := json.Unmarshal(driverJSON, delivery.AssignedDriver); err != nil {
			return nil, err
		}
	}

	return &delivery, nil
}
