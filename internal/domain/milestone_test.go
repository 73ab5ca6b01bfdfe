package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

func TestBuildMilestones(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-2 * time.Hour)

	tests := []struct {
		name     string
		existing []domain.Milestone
		target   domain.OrderStatus
		want     []domain.Milestone
	}{
		{
			name:     "fresh order to created",
			existing: nil,
			target:   domain.OrderStatusCreated,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: now, Completed: true},
			},
		},
		{
			name: "skip ahead fills intermediate statuses",
			existing: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
			},
			target: domain.OrderStatusPacked,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusPacked, Timestamp: now, Completed: true},
			},
		},
		{
			name: "existing timestamps are preserved",
			existing: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: earlier, Completed: true},
			},
			target: domain.OrderStatusApproved,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: earlier, Completed: true},
			},
		},
		{
			name: "backward move keeps the full history",
			existing: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusPacked, Timestamp: earlier, Completed: true},
			},
			target: domain.OrderStatusApproved,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusPacked, Timestamp: earlier, Completed: true},
			},
		},
		{
			name: "backward move does not invent skipped statuses",
			existing: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusInTransit, Timestamp: earlier, Completed: true},
			},
			target: domain.OrderStatusApproved,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: earlier, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusInTransit, Timestamp: earlier, Completed: true},
			},
		},
		{
			name:     "full run to delivered",
			existing: nil,
			target:   domain.OrderStatusDelivered,
			want: []domain.Milestone{
				{Status: domain.OrderStatusCreated, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusApproved, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusPacked, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusInTransit, Timestamp: now, Completed: true},
				{Status: domain.OrderStatusDelivered, Timestamp: now, Completed: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.BuildMilestones(tt.existing, tt.target, now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildMilestonesIdempotent(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	first, err := domain.BuildMilestones(nil, domain.OrderStatusInTransit, now)
	require.NoError(t, err)

	// Rebuilding for the same target later must not move any timestamps
	second, err := domain.BuildMilestones(first, domain.OrderStatusInTransit, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildMilestonesUnknownStatus(t *testing.T) {
	_, err := domain.BuildMilestones(nil, domain.OrderStatus("returned"), time.Now())

	var invalid *errors.ErrInvalidStatus
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "returned", invalid.Status)
}

func TestOrderStatusIndex(t *testing.T) {
	for i, status := range domain.OrderStatusOrder {
		assert.Equal(t, i, status.Index())
	}
	assert.Equal(t, -1, domain.OrderStatus("bogus").Index())
}
