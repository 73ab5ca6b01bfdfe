package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/repository/memory"
	"github.com/rmtsolutions/logisticsapi/internal/service"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

type lifecycleFixture struct {
	repos     *repository.Repositories
	lifecycle *service.LifecycleService
	admin     *domain.User
	customer  *domain.User
	driver    *domain.Driver
	driverUsr *domain.User
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	repos := memory.NewRepositories()
	logger := zap.NewNop()
	notifier := service.NewNotifier(repos.Notification, logger)

	ctx := context.Background()
	admin := &domain.User{ID: uuid.New(), Name: gofakeit.Name(), Role: domain.RoleAdmin, Active: true}
	customer := &domain.User{ID: uuid.New(), Name: gofakeit.Name(), Role: domain.RoleCustomer, Active: true}
	require.NoError(t, repos.User.Create(ctx, admin))
	require.NoError(t, repos.User.Create(ctx, customer))

	driver := &domain.Driver{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		Name:    gofakeit.Name(),
		Phone:   "09171234567",
		Vehicle: "Motorcycle",
		Status:  domain.DriverStatusAvailable,
	}
	require.NoError(t, repos.Driver.Create(ctx, driver))

	driverUsr := &domain.User{
		ID:       driver.UserID,
		Name:     driver.Name,
		Role:     domain.RoleDriver,
		Active:   true,
		DriverID: &driver.ID,
	}
	require.NoError(t, repos.User.Create(ctx, driverUsr))

	return &lifecycleFixture{
		repos:     repos,
		lifecycle: service.NewLifecycleService(repos, notifier, logger),
		admin:     admin,
		customer:  customer,
		driver:    driver,
		driverUsr: driverUsr,
	}
}

func (f *lifecycleFixture) seedOrder(t *testing.T, status domain.OrderStatus) *domain.Order {
	t.Helper()

	now := time.Now().Add(-time.Hour)
	milestones, err := domain.BuildMilestones(nil, status, now)
	require.NoError(t, err)

	order := &domain.Order{
		ID:           uuid.New(),
		CustomerID:   f.customer.ID,
		CustomerName: f.customer.Name,
		Items: []domain.OrderItem{
			{ProductID: "prod-001", Name: "Office Paper A4 (500 sheets)", Price: 250, Quantity: 2},
		},
		Total:         500,
		Status:        status,
		PaymentMethod: domain.PaymentMethodCOD,
		Milestones:    milestones,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.repos.Order.Create(context.Background(), order))
	return order
}

func (f *lifecycleFixture) assignDriver(t *testing.T, order *domain.Order) {
	t.Helper()
	_, err := f.lifecycle.AssignDriver(context.Background(), order.ID, f.driver.ID, f.admin)
	require.NoError(t, err)
}

func TestTransitionAdvancesMilestones(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusCreated)

	updated, err := f.lifecycle.Transition(ctx, order.ID, domain.OrderStatusPacked, f.admin)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusPacked, updated.Status)
	require.Len(t, updated.Milestones, 3)
	assert.Equal(t, domain.OrderStatusCreated, updated.Milestones[0].Status)
	assert.Equal(t, domain.OrderStatusApproved, updated.Milestones[1].Status)
	assert.Equal(t, domain.OrderStatusPacked, updated.Milestones[2].Status)
	// the original creation timestamp survives the rebuild
	assert.Equal(t, order.Milestones[0].Timestamp.Unix(), updated.Milestones[0].Timestamp.Unix())

	stored, err := f.repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPacked, stored.Status)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.Transition(context.Background(), uuid.New(), domain.OrderStatus("returned"), f.admin)

	var invalid *errors.ErrInvalidStatus
	require.ErrorAs(t, err, &invalid)
}

func TestTransitionRequiresAdmin(t *testing.T) {
	f := newLifecycleFixture(t)
	order := f.seedOrder(t, domain.OrderStatusCreated)

	for _, actor := range []*domain.User{f.customer, f.driverUsr} {
		_, err := f.lifecycle.Transition(context.Background(), order.ID, domain.OrderStatusApproved, actor)

		var forbidden *errors.ErrForbidden
		require.ErrorAs(t, err, &forbidden, "role %s", actor.Role)
	}
}

func TestTransitionBackwardKeepsHistory(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusPacked)

	updated, err := f.lifecycle.Transition(ctx, order.ID, domain.OrderStatusApproved, f.admin)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusApproved, updated.Status)
	// milestones keep the packed entry even though the status moved back
	require.Len(t, updated.Milestones, 3)
	assert.Equal(t, domain.OrderStatusPacked, updated.Milestones[2].Status)
}

func TestTransitionNotifiesCustomerOnce(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusCreated)

	// same transition applied twice must leave a single notification
	_, err := f.lifecycle.Transition(ctx, order.ID, domain.OrderStatusApproved, f.admin)
	require.NoError(t, err)
	_, err = f.lifecycle.Transition(ctx, order.ID, domain.OrderStatusApproved, f.admin)
	require.NoError(t, err)

	notifications, err := f.repos.Notification.ListByUserID(ctx, f.customer.ID.String())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, fmt.Sprintf("%s-approved", order.ID), notifications[0].ID)
	assert.Contains(t, notifications[0].Message, "APPROVED")
	assert.Equal(t, domain.NotificationTypeOrder, notifications[0].Type)
}

func TestAssignDriverSnapshotsAndCounts(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusApproved)

	updated, err := f.lifecycle.AssignDriver(ctx, order.ID, f.driver.ID, f.admin)
	require.NoError(t, err)

	require.NotNil(t, updated.AssignedDriver)
	assert.Equal(t, f.driver.ID, updated.AssignedDriver.ID)
	assert.Equal(t, f.driver.Name, updated.AssignedDriver.Name)
	assert.Equal(t, f.driver.Phone, updated.AssignedDriver.Phone)
	assert.NotNil(t, updated.AssignedAt)

	driver, err := f.repos.Driver.GetByID(ctx, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, driver.ActiveDeliveries)
	assert.Equal(t, domain.DriverStatusOnDelivery, driver.Status)

	notifications, err := f.repos.Notification.ListByUserID(ctx, f.customer.ID.String())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, fmt.Sprintf("%s-driver-assigned", order.ID), notifications[0].ID)
}

func TestAssignDriverSnapshotIsFrozen(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusApproved)
	f.assignDriver(t, order)

	// renaming the driver afterwards must not touch the order snapshot
	driver, err := f.repos.Driver.GetByID(ctx, f.driver.ID)
	require.NoError(t, err)
	driver.Name = "Renamed Driver"
	require.NoError(t, f.repos.Driver.Update(ctx, driver))

	stored, err := f.repos.Order.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, f.driver.Name, stored.AssignedDriver.Name)
}

func TestDriverPickup(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusPacked)
	f.assignDriver(t, order)

	updated, err := f.lifecycle.DriverTransition(ctx, order.ID, domain.OrderStatusInTransit, f.driverUsr)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInTransit, updated.Status)
}

func TestDriverPickupRequiresPackedOrder(t *testing.T) {
	f := newLifecycleFixture(t)
	order := f.seedOrder(t, domain.OrderStatusApproved)
	f.assignDriver(t, order)

	_, err := f.lifecycle.DriverTransition(context.Background(), order.ID, domain.OrderStatusInTransit, f.driverUsr)

	var forbidden *errors.ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestDriverTransitionRequiresAssignment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusPacked)
	f.assignDriver(t, order)

	// a second driver, not assigned to this order
	other := &domain.Driver{ID: uuid.New(), UserID: uuid.New(), Name: gofakeit.Name(), Status: domain.DriverStatusAvailable}
	require.NoError(t, f.repos.Driver.Create(ctx, other))
	otherUsr := &domain.User{ID: other.UserID, Role: domain.RoleDriver, Active: true, DriverID: &other.ID}
	require.NoError(t, f.repos.User.Create(ctx, otherUsr))

	_, err := f.lifecycle.DriverTransition(ctx, order.ID, domain.OrderStatusInTransit, otherUsr)

	var forbidden *errors.ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestDriverDeliveryRequiresProof(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusInTransit)
	f.assignDriver(t, order)

	_, err := f.lifecycle.DriverTransition(ctx, order.ID, domain.OrderStatusDelivered, f.driverUsr)

	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestDriverDeliveryFlow(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	order := f.seedOrder(t, domain.OrderStatusInTransit)
	f.assignDriver(t, order)

	deliveredAt := time.Now()
	_, err := f.lifecycle.AttachProof(ctx, order.ID, f.driverUsr, "left at reception", true, deliveredAt)
	require.NoError(t, err)

	updated, err := f.lifecycle.DriverTransition(ctx, order.ID, domain.OrderStatusDelivered, f.driverUsr)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.ProofOfDelivery)
	assert.Equal(t, "left at reception", updated.ProofOfDelivery.Notes)
	assert.True(t, updated.ProofOfDelivery.HasImage)
	assert.Equal(t, f.driverUsr.ID, updated.ProofOfDelivery.DeliveredBy)
	require.Len(t, updated.Milestones, 5)

	// delivery bookkeeping: counter back down, totals up, driver freed
	driver, err := f.repos.Driver.GetByID(ctx, f.driver.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, driver.ActiveDeliveries)
	assert.Equal(t, 1, driver.TotalDeliveries)
	assert.Equal(t, domain.DriverStatusAvailable, driver.Status)
}

func TestDriverCannotApproveOrders(t *testing.T) {
	f := newLifecycleFixture(t)
	order := f.seedOrder(t, domain.OrderStatusCreated)
	f.assignDriver(t, order)

	_, err := f.lifecycle.DriverTransition(context.Background(), order.ID, domain.OrderStatusApproved, f.driverUsr)

	var forbidden *errors.ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}

func TestAttachProofRequiresAssignedDriver(t *testing.T) {
	f := newLifecycleFixture(t)
	order := f.seedOrder(t, domain.OrderStatusInTransit)
	// no driver assigned

	_, err := f.lifecycle.AttachProof(context.Background(), order.ID, f.driverUsr, "", false, time.Now())

	var forbidden *errors.ErrForbidden
	require.ErrorAs(t, err, &forbidden)
}
