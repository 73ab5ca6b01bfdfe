package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// LifecycleService validates and applies status changes to orders. All
// mutations follow the same shape: check the actor, load, apply, write,
// then notify. There is no optimistic concurrency check; concurrent
// transitions on the same order are last-writer-wins at the storage layer.
type LifecycleService struct {
	repos    *repository.Repositories
	notifier *Notifier
	logger   *zap.Logger
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(repos *repository.Repositories, notifier *Notifier, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		repos:    repos,
		notifier: notifier,
		logger:   logger,
	}
}

// Transition applies an admin status change to an order. The target may be
// any status in the vocabulary, including an earlier one: the admin selector
// allows corrections, and the milestone history keeps the original
// progression record either way.
func (s *LifecycleService) Transition(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus, actor *domain.User) (*domain.Order, error) {
	if !target.IsValid() {
		return nil, &errors.ErrInvalidStatus{Status: string(target)}
	}
	if actor.Role != domain.RoleAdmin {
		return nil, &errors.ErrForbidden{Message: "admin access required"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return s.applyTransition(ctx, order, target)
}

// DriverTransition applies one of the two driver-scoped moves: pickup
// (packed -> in-transit) and mark-delivered (in-transit -> delivered).
// These are narrower variants of the same transition primitive, available
// only to the assigned driver.
func (s *LifecycleService) DriverTransition(ctx context.Context, orderID uuid.UUID, target domain.OrderStatus, actor *domain.User) (*domain.Order, error) {
	if !target.IsValid() {
		return nil, &errors.ErrInvalidStatus{Status: string(target)}
	}
	if actor.Role != domain.RoleDriver {
		return nil, &errors.ErrForbidden{Message: "driver access required"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	driver, err := s.actingDriver(ctx, actor)
	if err != nil {
		return nil, err
	}
	if order.AssignedDriver == nil || order.AssignedDriver.ID != driver.ID {
		return nil, &errors.ErrForbidden{Message: "order is not assigned to this driver"}
	}

	switch target {
	case domain.OrderStatusInTransit:
		if order.Status != domain.OrderStatusPacked {
			return nil, &errors.ErrForbidden{
				Message: fmt.Sprintf("cannot pick up an order in status %s", order.Status),
			}
		}
	case domain.OrderStatusDelivered:
		if order.Status != domain.OrderStatusInTransit {
			return nil, &errors.ErrForbidden{
				Message: fmt.Sprintf("cannot deliver an order in status %s", order.Status),
			}
		}
		if order.ProofOfDelivery == nil {
			return nil, &errors.ErrValidation{Message: "proof of delivery required before marking delivered"}
		}
	default:
		return nil, &errors.ErrForbidden{Message: "drivers may only pick up or deliver"}
	}

	updated, err := s.applyTransition(ctx, order, target)
	if err != nil {
		return nil, err
	}

	if target == domain.OrderStatusDelivered {
		s.completeDriverDelivery(ctx, driver)
	}

	return updated, nil
}

// AttachProof stores the proof-of-delivery payload on an order. It must be
// submitted before the delivered transition.
func (s *LifecycleService) AttachProof(ctx context.Context, orderID uuid.UUID, actor *domain.User, notes string, hasImage bool, deliveredAt time.Time) (*domain.Order, error) {
	if actor.Role != domain.RoleDriver {
		return nil, &errors.ErrForbidden{Message: "driver access required"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	driver, err := s.actingDriver(ctx, actor)
	if err != nil {
		return nil, err
	}
	if order.AssignedDriver == nil || order.AssignedDriver.ID != driver.ID {
		return nil, &errors.ErrForbidden{Message: "order is not assigned to this driver"}
	}

	order.ProofOfDelivery = &domain.ProofOfDelivery{
		Notes:       notes,
		HasImage:    hasImage,
		DeliveredBy: actor.ID,
		DeliveredAt: deliveredAt,
	}

	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}

	return order, nil
}

// AssignDriver snapshots the driver onto an order and marks the driver
// on-delivery. The snapshot is deliberately denormalized: it records the
// driver as they were at assignment time.
func (s *LifecycleService) AssignDriver(ctx context.Context, orderID, driverID uuid.UUID, actor *domain.User) (*domain.Order, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, &errors.ErrForbidden{Message: "admin access required"}
	}

	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	driver, err := s.repos.Driver.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order.AssignedDriver = &domain.DriverSnapshot{
		ID:      driver.ID,
		Name:    driver.Name,
		Phone:   driver.Phone,
		Vehicle: driver.Vehicle,
	}
	order.AssignedAt = &now

	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}

	driver.ActiveDeliveries++
	driver.Status = domain.DriverStatusOnDelivery
	if err := s.repos.Driver.Update(ctx, driver); err != nil {
		s.logger.Warn("Failed to update driver after assignment",
			zap.String("driver_id", driver.ID.String()),
			zap.Error(err),
		)
	}

	s.notifier.Emit(ctx, order.CustomerID.String(), order.ID.String(), "driver-assigned",
		fmt.Sprintf("Driver %s has been assigned to your order %s", driver.Name, order.ID),
		domain.NotificationTypeDelivery,
	)

	return order, nil
}

// applyTransition sets the status, rebuilds the milestone history, persists
// the order, and notifies the customer. Notification failure never fails
// the transition.
func (s *LifecycleService) applyTransition(ctx context.Context, order *domain.Order, target domain.OrderStatus) (*domain.Order, error) {
	milestones, err := domain.BuildMilestones(order.Milestones, target, time.Now())
	if err != nil {
		return nil, err
	}

	order.Status = target
	order.Milestones = milestones

	if err := s.repos.Order.Update(ctx, order); err != nil {
		return nil, err
	}

	s.notifier.Emit(ctx, order.CustomerID.String(), order.ID.String(), string(target),
		fmt.Sprintf("Order %s status updated to %s", order.ID, strings.ToUpper(string(target))),
		domain.NotificationTypeOrder,
	)

	return order, nil
}

// actingDriver resolves the driver record behind a driver user
func (s *LifecycleService) actingDriver(ctx context.Context, actor *domain.User) (*domain.Driver, error) {
	if actor.DriverID != nil {
		return s.repos.Driver.GetByID(ctx, *actor.DriverID)
	}
	return s.repos.Driver.GetByUserID(ctx, actor.ID)
}

// completeDriverDelivery decrements the active-delivery counter and bumps
// the totals once a delivery lands. Failures only affect driver bookkeeping,
// not the order, so they are logged and swallowed.
func (s *LifecycleService) completeDriverDelivery(ctx context.Context, driver *domain.Driver) {
	if driver.ActiveDeliveries > 0 {
		driver.ActiveDeliveries--
	}
	driver.TotalDeliveries++
	if driver.ActiveDeliveries == 0 {
		driver.Status = domain.DriverStatusAvailable
	}

	if err := s.repos.Driver.Update(ctx, driver); err != nil {
		s.logger.Warn("Failed to update driver after delivery",
			zap.String("driver_id", driver.ID.String()),
			zap.Error(err),
		)
	}
}
