package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// HandleListNotifications handles GET /notifications. Admins see the shared
// admin feed, everyone else sees their own.
func HandleListNotifications(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		target := user.ID.String()
		if user.Role == domain.RoleAdmin {
			target = domain.NotificationTargetAdmin
		}

		notifications, err := repos.Notification.ListByUserID(c.Request.Context(), target)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

// HandleMarkNotificationRead handles POST /notifications/:id/mark-read. Users can
// only mark notifications addressed to them.
func HandleMarkNotificationRead(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id := c.Param("id")
		notification, err := repos.Notification.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		owned := notification.UserID == user.ID.String() ||
			(notification.UserID == domain.NotificationTargetAdmin && user.Role == domain.RoleAdmin)
		if !owned {
			respondError(c, logger, &errors.ErrForbidden{Message: "notification belongs to another user"})
			return
		}

		if err := repos.Notification.MarkRead(c.Request.Context(), id); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
