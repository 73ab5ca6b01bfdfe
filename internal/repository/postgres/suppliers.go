package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type supplierRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSupplierRepository creates a new supplier repository
func NewSupplierRepository(db *sql.DB, logger *zap.Logger) *supplierRepository {
	return &supplierRepository{
		db:     db,
		logger: logger,
	}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *domain.Supplier) error {
	products, err := json.Marshal(supplier.Products)
	if err != nil {
		return err
	}
	history, err := json.Marshal(supplier.History)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO suppliers (id, name, contact, email, products, history)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			contact = EXCLUDED.contact,
			email = EXCLUDED.email,
			products = EXCLUDED.products,
			history = EXCLUDED.history`

	if _, err := r.db.ExecContext(ctx, query,
		supplier.ID, supplier.Name, supplier.Contact, supplier.Email, products, history,
	); err != nil {
		r.logger.Error("Failed to create supplier", zap.Error(err))
		return err
	}

	return nil
}

func (r *supplierRepository) GetByID(ctx context.Context, id string) (*domain.Supplier, error) {
	query := `SELECT id, name, contact, email, products, history FROM suppliers WHERE id = $1`

	supplier, err := scanSupplier(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "supplier", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get supplier", zap.Error(err))
		return nil, err
	}

	return supplier, nil
}

func (r *supplierRepository) List(ctx context.Context) ([]*domain.Supplier, error) {
	query := `SELECT id, name, contact, email, products, history FROM suppliers ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list suppliers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var suppliers []*domain.Supplier
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}

func scanSupplier(row rowScanner) (*domain.Supplier, error) {
	var supplier domain.Supplier
	var productsJSON, historyJSON []byte

	if err := row.Scan(
		&supplier.ID,
		&supplier.Name,
		&supplier.Contact,
		&supplier.Email,
		&productsJSON,
		&historyJSON,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(productsJSON, &supplier.Products); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(historyJSON, &supplier.History); err != nil {
		return nil, err
	}

	return &supplier, nil
}
