package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/service"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// CreateReturnRequest is the customer return payload
type CreateReturnRequest struct {
	OrderID      string              `json:"orderId" binding:"required"`
	Reason       string              `json:"reason" binding:"required"`
	Description  string              `json:"description"`
	RefundMethod domain.RefundMethod `json:"refundMethod" binding:"required"`
	HasProof     bool                `json:"hasProof"`
}

// HandleListReturns handles GET /returns. Customers see their own requests,
// admins see all of them.
func HandleListReturns(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var (
			returns []*domain.ReturnRequest
			err     error
		)
		if user.Role == domain.RoleAdmin {
			returns, err = repos.Return.List(c.Request.Context())
		} else {
			returns, err = repos.Return.ListByCustomerID(c.Request.Context(), user.ID)
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"returns": returns})
	}
}

// HandleCreateReturn handles POST /returns. Returns are only accepted for
// the requester's own delivered orders.
func HandleCreateReturn(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CreateReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orderId"})
			return
		}
		if !req.RefundMethod.IsValid() {
			respondError(c, logger, &errors.ErrValidation{Message: "unknown refund method"})
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if order.CustomerID != user.ID {
			respondError(c, logger, &errors.ErrForbidden{Message: "order belongs to another customer"})
			return
		}
		if order.Status != domain.OrderStatusDelivered {
			respondError(c, logger, &errors.ErrValidation{Message: "only delivered orders can be returned"})
			return
		}

		now := time.Now()
		ret := &domain.ReturnRequest{
			ID:           uuid.New(),
			OrderID:      orderID,
			CustomerID:   user.ID,
			Reason:       req.Reason,
			Description:  req.Description,
			RefundMethod: req.RefundMethod,
			HasProof:     req.HasProof,
			Status:       domain.ReturnStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Return.Create(c.Request.Context(), ret); err != nil {
			respondError(c, logger, err)
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		notifier.Emit(c.Request.Context(), domain.NotificationTargetAdmin, ret.ID.String(), "requested",
			fmt.Sprintf("New return request for order %s", shortID(orderID)), domain.NotificationTypeReturn)

		c.JSON(http.StatusCreated, gin.H{"return": ret})
	}
}

// HandleUpdateReturnStatus handles PATCH /returns/:id/status (admin).
// Transitions follow pending -> approved/rejected -> completed.
func HandleUpdateReturnStatus(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		returnID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		target := domain.ReturnStatus(req.Status)
		if !target.IsValid() {
			respondError(c, logger, &errors.ErrInvalidStatus{Status: req.Status})
			return
		}

		ret, err := repos.Return.GetByID(c.Request.Context(), returnID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if !ret.Status.CanTransitionTo(target) {
			respondError(c, logger, &errors.ErrValidation{
				Message: fmt.Sprintf("cannot move return from %s to %s", ret.Status, target),
			})
			return
		}

		if err := repos.Return.UpdateStatus(c.Request.Context(), returnID, target); err != nil {
			respondError(c, logger, err)
			return
		}
		ret.Status = target

		notifier := service.NewNotifier(repos.Notification, logger)
		notifier.Emit(c.Request.Context(), ret.CustomerID.String(), ret.ID.String(), string(target),
			fmt.Sprintf("Your return request was %s", target), domain.NotificationTypeReturn)

		c.JSON(http.StatusOK, gin.H{"return": ret})
	}
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
