package service

import (
	"context"
	"fmt"
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

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"09171234567", "091****4567"},
		{"+639171234567", "+639****34567"},
		{"12345", "12345"},
		{"", ""},
		{"no digits here", "no digits here"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskPhone(tt.phone), "phone %q", tt.phone)
	}
}

func newDeliveryFixture(t *testing.T) (*repository.Repositories, *deliveryService) {
	t.Helper()

	repos := memory.NewRepositories()
	logger := zap.NewNop()
	svc := NewDeliveryService(repos, nil, logger)
	return repos, svc
}

func deliveryRequest() CreateDeliveryRequest {
	return CreateDeliveryRequest{
		ReferenceNumber:   fmt.Sprintf("RMT-%d", gofakeit.Number(100000, 999999)),
		CustomerName:      gofakeit.Name(),
		CustomerPhone:     "09171234567",
		Address:           domain.Address{Street: gofakeit.Street(), City: "Makati", PostalCode: "1200"},
		EstimatedDelivery: "2026-09-05",
	}
}

func TestCreateDelivery(t *testing.T) {
	_, svc := newDeliveryFixture(t)

	req := deliveryRequest()
	delivery, err := svc.CreateDelivery(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, req.ReferenceNumber, delivery.ReferenceNumber)
	assert.Equal(t, domain.DeliveryStatusPending, delivery.Status)
	assert.Nil(t, delivery.AssignedDriver)
}

func TestCreateDeliveryWithDriver(t *testing.T) {
	repos, svc := newDeliveryFixture(t)
	ctx := context.Background()

	driver := &domain.Driver{ID: uuid.New(), UserID: uuid.New(), Name: gofakeit.Name(), Status: domain.DriverStatusAvailable}
	require.NoError(t, repos.Driver.Create(ctx, driver))

	req := deliveryRequest()
	req.AssignedDriverID = &driver.ID
	delivery, err := svc.CreateDelivery(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, domain.DeliveryStatusAssigned, delivery.Status)
	require.NotNil(t, delivery.AssignedDriver)
	assert.Equal(t, driver.Name, delivery.AssignedDriver.Name)
}

func TestCreateDeliveryRequiresReference(t *testing.T) {
	_, svc := newDeliveryFixture(t)

	req := deliveryRequest()
	req.ReferenceNumber = ""
	_, err := svc.CreateDelivery(context.Background(), req)

	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
}

func TestUpdateDeliveryStatus(t *testing.T) {
	_, svc := newDeliveryFixture(t)
	ctx := context.Background()

	delivery, err := svc.CreateDelivery(ctx, deliveryRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, delivery.ID, domain.DeliveryStatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusInTransit, updated.Status)

	// statuses are overwritten, so moving backward is allowed
	updated, err = svc.UpdateStatus(ctx, delivery.ID, domain.DeliveryStatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryStatusPending, updated.Status)
}

func TestUpdateDeliveryStatusRejectsUnknown(t *testing.T) {
	_, svc := newDeliveryFixture(t)
	ctx := context.Background()

	delivery, err := svc.CreateDelivery(ctx, deliveryRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, delivery.ID, domain.DeliveryStatus("lost"))

	var invalid *errors.ErrInvalidStatus
	require.ErrorAs(t, err, &invalid)
}

func TestTrack(t *testing.T) {
	repos, svc := newDeliveryFixture(t)
	ctx := context.Background()

	driver := &domain.Driver{ID: uuid.New(), UserID: uuid.New(), Name: gofakeit.Name(), Status: domain.DriverStatusAvailable}
	require.NoError(t, repos.Driver.Create(ctx, driver))

	req := deliveryRequest()
	req.AssignedDriverID = &driver.ID
	delivery, err := svc.CreateDelivery(ctx, req)
	require.NoError(t, err)

	tracking, err := svc.Track(ctx, delivery.ReferenceNumber)
	require.NoError(t, err)

	assert.Equal(t, delivery.ReferenceNumber, tracking.ReferenceNumber)
	assert.Equal(t, string(domain.DeliveryStatusAssigned), tracking.Status)
	assert.Equal(t, "091****4567", tracking.CustomerPhone)
	require.NotNil(t, tracking.DriverName)
	assert.Equal(t, driver.Name, *tracking.DriverName)
}

func TestTrackUnknownReference(t *testing.T) {
	_, svc := newDeliveryFixture(t)

	_, err := svc.Track(context.Background(), "RMT-000000")

	var notFound *errors.ErrNotFound
	require.ErrorAs(t, err, &notFound)
}

func TestDeliveryStats(t *testing.T) {
	_, svc := newDeliveryFixture(t)
	ctx := context.Background()

	first, err := svc.CreateDelivery(ctx, deliveryRequest())
	require.NoError(t, err)
	_, err = svc.CreateDelivery(ctx, deliveryRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, first.ID, domain.DeliveryStatusDelivered)
	require.NoError(t, err)

	stats, recent, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Delivered)
	assert.Len(t, recent, 2)
}
