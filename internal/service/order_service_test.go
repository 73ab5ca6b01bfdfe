package service

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/repository/memory"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

func newOrderFixture(t *testing.T) (*repository.Repositories, *domain.User, *orderService) {
	t.Helper()

	repos := memory.NewRepositories()
	logger := zap.NewNop()
	svc := NewOrderService(repos, NewNotifier(repos.Notification, logger), logger)

	customer := &domain.User{ID: uuid.New(), Name: gofakeit.Name(), Role: domain.RoleCustomer, Active: true, Balance: 1200}
	require.NoError(t, repos.User.Create(context.Background(), customer))

	return repos, customer, svc
}

func checkoutRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Items: []domain.OrderItem{
			{ProductID: "prod-001", Name: "Office Paper A4 (500 sheets)", Price: 250, Quantity: 2},
			{ProductID: "prod-004", Name: "Packing Tape (6 rolls)", Price: 180, Quantity: 1},
		},
		DeliveryInfo: domain.DeliveryInfo{
			Name:   gofakeit.Name(),
			Phone:  "09171234567",
			Street: gofakeit.Street(),
			City:   "Quezon City",
		},
		PaymentMethod: domain.PaymentMethodCOD,
	}
}

func TestCreateOrder(t *testing.T) {
	repos, customer, svc := newOrderFixture(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, customer, checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, customer.ID, order.CustomerID)
	assert.Equal(t, customer.Name, order.CustomerName)
	assert.Equal(t, 680.0, order.Total)
	assert.Equal(t, domain.OrderStatusCreated, order.Status)
	require.Len(t, order.Milestones, 1)
	assert.Equal(t, domain.OrderStatusCreated, order.Milestones[0].Status)
	assert.True(t, order.Milestones[0].Completed)

	notifications, err := repos.Notification.ListByUserID(ctx, customer.ID.String())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, order.ID.String()+"-created", notifications[0].ID)
}

func TestCreateOrderValidation(t *testing.T) {
	_, customer, svc := newOrderFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{
			name:   "no items",
			mutate: func(r *CreateOrderRequest) { r.Items = nil },
		},
		{
			name:   "zero quantity",
			mutate: func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 },
		},
		{
			name:   "negative price",
			mutate: func(r *CreateOrderRequest) { r.Items[0].Price = -1 },
		},
		{
			name:   "unknown payment method",
			mutate: func(r *CreateOrderRequest) { r.PaymentMethod = "bank-transfer" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := checkoutRequest()
			tt.mutate(&req)

			_, err := svc.CreateOrder(context.Background(), customer, req)

			var validation *errors.ErrValidation
			require.ErrorAs(t, err, &validation)
		})
	}
}

func TestListOrdersScopedByRole(t *testing.T) {
	repos, customer, svc := newOrderFixture(t)
	ctx := context.Background()

	other := &domain.User{ID: uuid.New(), Name: gofakeit.Name(), Role: domain.RoleCustomer, Active: true}
	require.NoError(t, repos.User.Create(ctx, other))

	_, err := svc.CreateOrder(ctx, customer, checkoutRequest())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, other, checkoutRequest())
	require.NoError(t, err)

	mine, err := svc.ListOrders(ctx, customer, 100, 0)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, customer.ID, mine[0].CustomerID)

	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	all, err := svc.ListOrders(ctx, admin, 100, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetOrderOwnership(t *testing.T) {
	repos, customer, svc := newOrderFixture(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, customer, checkoutRequest())
	require.NoError(t, err)

	other := &domain.User{ID: uuid.New(), Role: domain.RoleCustomer, Active: true}
	require.NoError(t, repos.User.Create(ctx, other))

	_, err = svc.GetOrder(ctx, other, order.ID)
	var forbidden *errors.ErrForbidden
	require.ErrorAs(t, err, &forbidden)

	// admins read anything
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}
	got, err := svc.GetOrder(ctx, admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}

func TestGetOrderNotFound(t *testing.T) {
	_, customer, svc := newOrderFixture(t)

	_, err := svc.GetOrder(context.Background(), customer, uuid.New())

	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestStats(t *testing.T) {
	repos, customer, svc := newOrderFixture(t)
	ctx := context.Background()
	logger := zap.NewNop()
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	first, err := svc.CreateOrder(ctx, customer, checkoutRequest())
	require.NoError(t, err)
	_, err = svc.CreateOrder(ctx, customer, checkoutRequest())
	require.NoError(t, err)

	lifecycle := NewLifecycleService(repos, NewNotifier(repos.Notification, logger), logger)
	_, err = lifecycle.Transition(ctx, first.ID, domain.OrderStatusDelivered, admin)
	require.NoError(t, err)

	adminStats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, adminStats.TotalOrders)
	assert.Equal(t, 1, adminStats.PendingOrders)
	assert.Equal(t, 1, adminStats.DeliveredOrders)
	assert.Equal(t, 680.0, adminStats.TotalRevenue)

	customerStats, err := svc.Stats(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 2, customerStats.TotalOrders)
	assert.Equal(t, 1, customerStats.DeliveredOrders)
	assert.Equal(t, customer.Balance, customerStats.Balance)
}
