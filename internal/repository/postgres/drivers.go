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

type driverRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(db *sql.DB, logger *zap.Logger) *driverRepository {
	return &driverRepository{
		db:     db,
		logger: logger,
	}
}

const driverColumns = `
	id, user_id, name, phone, vehicle, status, active_deliveries,
	total_deliveries, rating, created_at
`

func (r *driverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (
			id, user_id, name, phone, vehicle, status, active_deliveries,
			total_deliveries, rating, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if driver.ID == uuid.Nil {
		driver.ID = uuid.New()
	}
	if driver.CreatedAt.IsZero() {
		driver.CreatedAt = time.Now()
	}
	if driver.Status == "" {
		driver.Status = domain.DriverStatusAvailable
	}

	_, err := r.db.ExecContext(ctx, query,
		driver.ID,
		driver.UserID,
		driver.Name,
		driver.Phone,
		driver.Vehicle,
		driver.Status,
		driver.ActiveDeliveries,
		driver.TotalDeliveries,
		driver.Rating,
		driver.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create driver", zap.Error(err))
		return err
	}

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`

	driver, err := scanDriver(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "driver", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get driver by ID", zap.Error(err))
		return nil, err
	}

	return driver, nil
}

func (r *driverRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE user_id = $1`

	driver, err := scanDriver(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "driver", ID: userID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get driver by user ID", zap.Error(err))
		return nil, err
	}

	return driver, nil
}

func (r *driverRepository) List(ctx context.Context) ([]*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list drivers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	return drivers, rows.Err()
}

func (r *driverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	query := `
		UPDATE drivers
		SET name = $2, phone = $3, vehicle = $4, status = $5,
			active_deliveries = $6, total_deliveries = $7, rating = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.Vehicle,
		driver.Status,
		driver.ActiveDeliveries,
		driver.TotalDeliveries,
		driver.Rating,
	)
	if err != nil {
		r.logger.Error("Failed to update driver", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "driver", ID: driver.ID.String()}
	}

	return nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var driver domain.Driver
	err := row.Scan(
		&driver.ID,
		&driver.UserID,
		&driver.Name,
		&driver.Phone,
		&driver.Vehicle,
		&driver.Status,
		&driver.ActiveDeliveries,
		&driver.TotalDeliveries,
		&driver.Rating,
		&driver.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
