package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// Notifier emits notification records as side effects of order and delivery
// mutations. Emission is best-effort: a failed write is logged and swallowed
// so it can never roll back the transition that triggered it.
type Notifier struct {
	repo   repository.NotificationRepository
	logger *zap.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(repo repository.NotificationRepository, logger *zap.Logger) *Notifier {
	return &Notifier{
		repo:   repo,
		logger: logger,
	}
}

// Emit writes a notification keyed "{entityID}-{suffix}". Re-emitting for
// the same key overwrites the previous record, so retrying a transition
// leaves exactly one notification per {entity, status} pair.
func (n *Notifier) Emit(ctx context.Context, targetUserID, entityID, suffix, message string, typ domain.NotificationType) {
	notification := &domain.Notification{
		ID:        fmt.Sprintf("%s-%s", entityID, suffix),
		UserID:    targetUserID,
		Message:   message,
		Type:      typ,
		Read:      false,
		CreatedAt: time.Now(),
	}

	if err := n.repo.Upsert(ctx, notification); err != nil {
		n.logger.Warn("Failed to persist notification",
			zap.String("notification_id", notification.ID),
			zap.String("user_id", targetUserID),
			zap.Error(err),
		)
	}
}
