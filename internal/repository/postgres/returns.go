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

type returnRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewReturnRepository creates a new return request repository
func NewReturnRepository(db *sql.DB, logger *zap.Logger) *returnRepository {
	return &returnRepository{
		db:     db,
		logger: logger,
	}
}

const returnColumns = `
	id, order_id, customer_id, reason, description, refund_method, has_proof,
	status, created_at, updated_at
`

func (r *returnRepository) Create(ctx context.Context, ret *domain.ReturnRequest) error {
	query := `
		INSERT INTO returns (
			id, order_id, customer_id, reason, description, refund_method,
			has_proof, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	if ret.CreatedAt.IsZero() {
		ret.CreatedAt = now
	}
	if ret.UpdatedAt.IsZero() {
		ret.UpdatedAt = now
	}
	if ret.Status == "" {
		ret.Status = domain.ReturnStatusPending
	}

	_, err := r.db.ExecContext(ctx, query,
		ret.ID,
		ret.OrderID,
		ret.CustomerID,
		ret.Reason,
		ret.Description,
		ret.RefundMethod,
		ret.HasProof,
		ret.Status,
		ret.CreatedAt,
		ret.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create return request", zap.Error(err))
		return err
	}

	return nil
}

func (r *returnRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE id = $1`

	ret, err := scanReturn(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "return", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get return request", zap.Error(err))
		return nil, err
	}

	return ret, nil
}

func (r *returnRepository) List(ctx context.Context) ([]*domain.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM returns ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list return requests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectReturns(rows)
}

func (r *returnRepository) ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*domain.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM returns WHERE customer_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		r.logger.Error("Failed to list return requests by customer", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectReturns(rows)
}

func (r *returnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReturnStatus) error {
	query := `UPDATE returns SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		r.logger.Error("Failed to update return status", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "return", ID: id.String()}
	}

	return nil
}

func scanReturn(row rowScanner) (*domain.ReturnRequest, error) {
	var ret domain.ReturnRequest
	err := row.Scan(
		&ret.ID,
		&ret.OrderID,
		&ret.CustomerID,
		&ret.Reason,
		&ret.Description,
		&ret.RefundMethod,
		&ret.HasProof,
		&ret.Status,
		&ret.CreatedAt,
		&ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ret, nil
}

func collectReturns(rows *sql.Rows) ([]*domain.ReturnRequest, error) {
	var returns []*domain.ReturnRequest
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, ret)
	}
	return returns, rows.Err()
}
