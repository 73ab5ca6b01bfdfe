package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type paymentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB, logger *zap.Logger) *paymentRepository {
	return &paymentRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the payment record for an order, replacing any previous one.
// Payments are keyed by order so a retried gateway call overwrites.
func (r *paymentRepository) Upsert(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			order_id, source_id, amount, status, type, user_id, verified_by,
			verified_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (order_id)
		DO UPDATE SET
			source_id = EXCLUDED.source_id,
			amount = EXCLUDED.amount,
			status = EXCLUDED.status,
			type = EXCLUDED.type,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		payment.OrderID,
		payment.SourceID,
		payment.Amount,
		payment.Status,
		payment.Type,
		payment.UserID,
		payment.VerifiedBy,
		payment.VerifiedAt,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to upsert payment", zap.Error(err))
		return err
	}

	return nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	query := `
		SELECT order_id, source_id, amount, status, type, user_id, verified_by,
			verified_at, created_at, updated_at
		FROM payments
		WHERE order_id = $1
	`

	var payment domain.Payment
	var sourceID sql.NullString
	var verifiedBy sql.NullString
	var verifiedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&payment.OrderID,
		&sourceID,
		&payment.Amount,
		&payment.Status,
		&payment.Type,
		&payment.UserID,
		&verifiedBy,
		&verifiedAt,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "payment", ID: orderID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get payment", zap.Error(err))
		return nil, err
	}

	if sourceID.Valid {
		payment.SourceID = &sourceID.String
	}
	if verifiedBy.Valid {
		id, err := uuid.Parse(verifiedBy.String)
		if err != nil {
			return nil, err
		}
		payment.VerifiedBy = &id
	}
	if verifiedAt.Valid {
		payment.VerifiedAt = &verifiedAt.Time
	}

	return &payment, nil
}
