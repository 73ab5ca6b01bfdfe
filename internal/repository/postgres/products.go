package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type productRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT id, name, price, stock, description, image_url FROM products WHERE id = $1`

	var p domain.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.ImageURL,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get product", zap.Error(err))
		return nil, err
	}

	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `SELECT id, name, price, stock, description, image_url FROM products ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Description, &p.ImageURL); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *productRepository) UpdateStock(ctx context.Context, id string, stock int) error {
	query := `UPDATE products SET stock = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, stock)
	if err != nil {
		r.logger.Error("Failed to update product stock", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "product", ID: id}
	}

	return nil
}

type inventoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *sql.DB, logger *zap.Logger) *inventoryRepository {
	return &inventoryRepository{
		db:     db,
		logger: logger,
	}
}

const inventoryColumns = `
	product_id, product_name, current_stock, reorder_level, reorder_quantity,
	last_restocked, needs_reorder
`

func (r *inventoryRepository) GetByProductID(ctx context.Context, productID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = $1`

	var rec domain.InventoryRecord
	err := r.db.QueryRowContext(ctx, query, productID).Scan(
		&rec.ProductID,
		&rec.ProductName,
		&rec.CurrentStock,
		&rec.ReorderLevel,
		&rec.ReorderQuantity,
		&rec.LastRestocked,
		&rec.NeedsReorder,
	)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "inventory", ID: productID}
	}
	if err != nil {
		r.logger.Error("Failed to get inventory record", zap.Error(err))
		return nil, err
	}

	return &rec, nil
}

func (r *inventoryRepository) List(ctx context.Context) ([]*domain.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory ORDER BY product_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list inventory", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var records []*domain.InventoryRecord
	for rows.Next() {
		var rec domain.InventoryRecord
		if err := rows.Scan(
			&rec.ProductID,
			&rec.ProductName,
			&rec.CurrentStock,
			&rec.ReorderLevel,
			&rec.ReorderQuantity,
			&rec.LastRestocked,
			&rec.NeedsReorder,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

func (r *inventoryRepository) Update(ctx context.Context, record *domain.InventoryRecord) error {
	query := `
		UPDATE inventory
		SET product_name = $2, current_stock = $3, reorder_level = $4,
			reorder_quantity = $5, last_restocked = $6, needs_reorder = $7
		WHERE product_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ProductID,
		record.ProductName,
		record.CurrentStock,
		record.ReorderLevel,
		record.ReorderQuantity,
		record.LastRestocked,
		record.NeedsReorder,
	)
	if err != nil {
		r.logger.Error("Failed to update inventory record", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "inventory", ID: record.ProductID}
	}

	return nil
}
