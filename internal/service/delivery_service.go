package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

var phoneMaskPattern = regexp.MustCompile(`(\d{3})\d{4}(\d{4})`)

// MaskPhone hides the middle digits of a phone number for the public
// tracking projection
func MaskPhone(phone string) string {
	return phoneMaskPattern.ReplaceAllString(phone, "$1****$2")
}

type deliveryService struct {
	repos  *repository.Repositories
	cache  *repository.TrackingCache // nil disables caching
	logger *zap.Logger
}

// NewDeliveryService creates a new delivery service. cache may be nil.
func NewDeliveryService(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) *deliveryService {
	return &deliveryService{
		repos:  repos,
		cache:  cache,
		logger: logger,
	}
}

// CreateDeliveryRequest carries the admin delivery-creation payload
type CreateDeliveryRequest struct {
	ReferenceNumber   string
	CustomerName      string
	CustomerPhone     string
	Address           domain.Address
	EstimatedDelivery string
	AssignedDriverID  *uuid.UUID
}

// CreateDelivery creates a delivery. If a driver is assigned up front the
// delivery starts out assigned, otherwise pending.
func (s *deliveryService) CreateDelivery(ctx context.Context, req CreateDeliveryRequest) (*domain.Delivery, error) {
	if req.ReferenceNumber == "" {
		return nil, &errors.ErrValidation{Message: "reference number is required"}
	}

	now := time.Now()
	delivery := &domain.Delivery{
		ID:                uuid.New(),
		ReferenceNumber:   req.ReferenceNumber,
		CustomerName:      req.CustomerName,
		CustomerPhone:     req.CustomerPhone,
		Address:           req.Address,
		Status:            domain.DeliveryStatusPending,
		EstimatedDelivery: req.EstimatedDelivery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if req.AssignedDriverID != nil {
		driver, err := s.repos.Driver.GetByID(ctx, *req.AssignedDriverID)
		if err != nil {
			return nil, err
		}
		delivery.Status = domain.DeliveryStatusAssigned
		delivery.AssignedDriver = &domain.DriverSnapshot{
			ID:   driver.ID,
			Name: driver.Name,
		}
	}

	if err := s.repos.Delivery.Create(ctx, delivery); err != nil {
		return nil, err
	}

	return delivery, nil
}

// UpdateStatus overwrites a delivery's status. Deliveries carry no milestone
// history; the status selector in the admin view allows any valid value,
// including moving backward.
func (s *deliveryService) UpdateStatus(ctx context.Context, deliveryID uuid.UUID, target domain.DeliveryStatus) (*domain.Delivery, error) {
	if !target.IsValid() {
		return nil, &errors.ErrInvalidStatus{Status: string(target)}
	}

	delivery, err := s.repos.Delivery.GetByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	delivery.Status = target
	if err := s.repos.Delivery.Update(ctx, delivery); err != nil {
		return nil, err
	}

	s.invalidateTracking(ctx, delivery.ReferenceNumber)

	return delivery, nil
}

// ListDeliveries returns deliveries newest first
func (s *deliveryService) ListDeliveries(ctx context.Context, limit, offset int) ([]*domain.Delivery, error) {
	return s.repos.Delivery.List(ctx, limit, offset)
}

// DeliveryStats summarizes the fleet for the dashboard
type DeliveryStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Assigned  int `json:"assigned"`
	InTransit int `json:"inTransit"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Stats returns status counts plus the ten most recent deliveries
func (s *deliveryService) Stats(ctx context.Context) (*DeliveryStats, []*domain.Delivery, error) {
	deliveries, err := s.repos.Delivery.List(ctx, 500, 0)
	if err != nil {
		return nil, nil, err
	}

	countFor := func(status domain.DeliveryStatus) int {
		return lo.CountBy(deliveries, func(d *domain.Delivery) bool { return d.Status == status })
	}
	stats := &DeliveryStats{
		Total:     len(deliveries),
		Pending:   countFor(domain.DeliveryStatusPending),
		Assigned:  countFor(domain.DeliveryStatusAssigned),
		InTransit: countFor(domain.DeliveryStatusInTransit),
		Delivered: countFor(domain.DeliveryStatusDelivered),
		Failed:    countFor(domain.DeliveryStatusFailed),
	}

	recent := deliveries
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return stats, recent, nil
}

// PublicTracking is the reduced projection for the unauthenticated tracking
// endpoint: phone masked, no internal identifiers.
type PublicTracking struct {
	ReferenceNumber   string         `json:"referenceNumber"`
	Status            string         `json:"status"`
	CustomerName      string         `json:"customerName"`
	CustomerPhone     string         `json:"customerPhone"`
	Address           domain.Address `json:"address"`
	EstimatedDelivery string         `json:"estimatedDelivery"`
	DriverName        *string        `json:"driverName"`
	LastUpdate        time.Time      `json:"lastUpdate"`
	CreatedAt         time.Time      `json:"createdAt"`
}

// Track looks up a delivery by reference number for the public tracking
// page. The cache is consulted first; any cache error falls through to the
// database.
func (s *deliveryService) Track(ctx context.Context, refNumber string) (*PublicTracking, error) {
	delivery := s.cachedDelivery(ctx, refNumber)
	if delivery == nil {
		var err error
		delivery, err = s.repos.Delivery.GetByReferenceNumber(ctx, refNumber)
		if err != nil {
			return nil, err
		}
		s.cacheDelivery(ctx, delivery)
	}

	tracking := &PublicTracking{
		ReferenceNumber:   delivery.ReferenceNumber,
		Status:            string(delivery.Status),
		CustomerName:      delivery.CustomerName,
		CustomerPhone:     MaskPhone(delivery.CustomerPhone),
		Address:           delivery.Address,
		EstimatedDelivery: delivery.EstimatedDelivery,
		LastUpdate:        delivery.UpdatedAt,
		CreatedAt:         delivery.CreatedAt,
	}
	if delivery.AssignedDriver != nil {
		tracking.DriverName = &delivery.AssignedDriver.Name
	}

	return tracking, nil
}

func (s *deliveryService) cachedDelivery(ctx context.Context, refNumber string) *domain.Delivery {
	if s.cache == nil {
		return nil
	}
	delivery, err := s.cache.Get(ctx, refNumber)
	if err != nil {
		s.logger.Debug("Tracking cache read failed", zap.String("reference_number", refNumber), zap.Error(err))
		return nil
	}
	return delivery
}

func (s *deliveryService) cacheDelivery(ctx context.Context, delivery *domain.Delivery) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, delivery); err != nil {
		s.logger.Debug("Tracking cache write failed",
			zap.String("reference_number", delivery.ReferenceNumber), zap.Error(err))
	}
}

func (s *deliveryService) invalidateTracking(ctx context.Context, refNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, refNumber); err != nil {
		s.logger.Debug("Tracking cache invalidation failed",
			zap.String("reference_number", refNumber), zap.Error(err))
	}
}
