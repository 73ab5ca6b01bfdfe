package domain

import (
	"time"

	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// BuildMilestones derives the milestone history for a target status.
//
// The result covers every status from the start of the lifecycle up to and
// including target, each completed. Entries already present in existing keep
// their original timestamps, so rebuilding for the same target is idempotent.
// Newly reached statuses are stamped with now.
//
// A backward move never truncates: existing entries beyond the target stay in
// the history, preserving the original progression record when an admin
// corrects a status.
func BuildMilestones(existing []Milestone, target OrderStatus, now time.Time) ([]Milestone, error) {
	targetIdx := target.Index()
	if targetIdx < 0 {
		return nil, &errors.ErrInvalidStatus{Status: string(target)}
	}

	byStatus := make(map[OrderStatus]Milestone, len(existing))
	for _, m := range existing {
		if _, ok := byStatus[m.Status]; !ok {
			byStatus[m.Status] = m
		}
	}

	highest := targetIdx
	for _, m := range existing {
		if idx := m.Status.Index(); idx > highest {
			highest = idx
		}
	}

	milestones := make([]Milestone, 0, highest+1)
	for i := 0; i <= highest; i++ {
		status := OrderStatusOrder[i]
		if m, ok := byStatus[status]; ok {
			milestones = append(milestones, m)
			continue
		}
		if i > targetIdx {
			// regressed target: statuses between target and the old high
			// water mark that were never recorded are not invented
			continue
		}
		milestones = append(milestones, Milestone{
			Status:    status,
			Timestamp: now,
			Completed: true,
		})
	}

	return milestones, nil
}
