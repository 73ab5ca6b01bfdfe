package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type orderService struct {
	repos    *repository.Repositories
	notifier *Notifier
	logger   *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, notifier *Notifier, logger *zap.Logger) *orderService {
	return &orderService{
		repos:    repos,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateOrderRequest carries the checkout payload
type CreateOrderRequest struct {
	Items         []domain.OrderItem
	DeliveryInfo  domain.DeliveryInfo
	PaymentMethod domain.PaymentMethod
}

// CreateOrder creates an order for the customer. The total is computed here
// from the line items and never re-derived on read.
func (s *orderService) CreateOrder(ctx context.Context, customer *domain.User, req CreateOrderRequest) (*domain.Order, error) {
	if len(req.Items) == 0 {
		return nil, &errors.ErrValidation{Message: "order must contain at least one item"}
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &errors.ErrValidation{Message: fmt.Sprintf("invalid quantity for %s", item.ProductID)}
		}
		if item.Price < 0 {
			return nil, &errors.ErrValidation{Message: fmt.Sprintf("invalid price for %s", item.ProductID)}
		}
	}
	if !req.PaymentMethod.IsValid() {
		return nil, &errors.ErrValidation{Message: "unsupported payment method"}
	}

	total := 0.0
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
	}

	now := time.Now()
	order := &domain.Order{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		Items:         req.Items,
		Total:         total,
		Status:        domain.OrderStatusCreated,
		DeliveryInfo:  req.DeliveryInfo,
		PaymentMethod: req.PaymentMethod,
		Milestones: []domain.Milestone{
			{Status: domain.OrderStatusCreated, Timestamp: now, Completed: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.logger.Info("Creating order",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.Float64("total", total),
	)
	if err := s.repos.Order.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", zap.Error(err))
		return nil, err
	}

	s.notifier.Emit(ctx, customer.ID.String(), order.ID.String(), string(domain.OrderStatusCreated),
		fmt.Sprintf("Order %s has been created successfully", order.ID),
		domain.NotificationTypeOrder,
	)

	return order, nil
}

// ListOrders returns orders scoped by role: customers see only their own,
// admins and drivers see all.
func (s *orderService) ListOrders(ctx context.Context, actor *domain.User, limit, offset int) ([]*domain.Order, error) {
	if actor.Role == domain.RoleCustomer {
		return s.repos.Order.ListByCustomerID(ctx, actor.ID, limit, offset)
	}
	return s.repos.Order.List(ctx, limit, offset)
}

// GetOrder returns a single order. Customers may only read their own;
// admins and drivers may read any.
func (s *orderService) GetOrder(ctx context.Context, actor *domain.User, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actor.Role == domain.RoleCustomer && order.CustomerID != actor.ID {
		return nil, &errors.ErrForbidden{Message: "access denied"}
	}
	return order, nil
}

// DashboardStats is the role-shaped stats block for the dashboard
type DashboardStats struct {
	TotalOrders     int     `json:"totalOrders"`
	PendingOrders   int     `json:"pendingOrders"`
	ApprovedOrders  int     `json:"approvedOrders,omitempty"`
	DeliveredOrders int     `json:"deliveredOrders"`
	TotalRevenue    float64 `json:"totalRevenue,omitempty"`
	Balance         float64 `json:"balance,omitempty"`
}

// Stats computes dashboard numbers. Customers get their own counts and
// wallet balance; everyone else gets fleet-wide counts and delivered
// revenue.
func (s *orderService) Stats(ctx context.Context, actor *domain.User) (*DashboardStats, error) {
	if actor.Role == domain.RoleCustomer {
		orders, err := s.repos.Order.ListByCustomerID(ctx, actor.ID, 500, 0)
		if err != nil {
			return nil, err
		}
		delivered := lo.CountBy(orders, func(o *domain.Order) bool {
			return o.Status == domain.OrderStatusDelivered
		})
		return &DashboardStats{
			TotalOrders:     len(orders),
			PendingOrders:   len(orders) - delivered,
			DeliveredOrders: delivered,
			Balance:         actor.Balance,
		}, nil
	}

	orders, err := s.repos.Order.List(ctx, 500, 0)
	if err != nil {
		return nil, err
	}

	delivered := lo.Filter(orders, func(o *domain.Order, _ int) bool {
		return o.Status == domain.OrderStatusDelivered
	})
	revenue := lo.SumBy(delivered, func(o *domain.Order) float64 { return o.Total })

	return &DashboardStats{
		TotalOrders: len(orders),
		PendingOrders: lo.CountBy(orders, func(o *domain.Order) bool {
			return o.Status == domain.OrderStatusCreated
		}),
		ApprovedOrders: lo.CountBy(orders, func(o *domain.Order) bool {
			return o.Status == domain.OrderStatusApproved ||
				o.Status == domain.OrderStatusPacked ||
				o.Status == domain.OrderStatusInTransit
		}),
		DeliveredOrders: len(delivered),
		TotalRevenue:    revenue,
	}, nil
}
