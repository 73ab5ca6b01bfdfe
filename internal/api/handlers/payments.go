package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/paymongo"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// CreateGCashPaymentRequest starts a GCash checkout for an order
type CreateGCashPaymentRequest struct {
	OrderID    string `json:"orderId" binding:"required"`
	SuccessURL string `json:"successUrl" binding:"required,url"`
	FailedURL  string `json:"failedUrl" binding:"required,url"`
}

// HandleCreateGCashPayment handles POST /payments/gcash. It creates a
// PayMongo source for the order total and records a pending payment.
func HandleCreateGCashPayment(repos *repository.Repositories, pm *paymongo.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if pm == nil {
			respondError(c, logger, &errors.ErrUpstream{Service: "paymongo", Message: "gateway not configured"})
			return
		}

		var req CreateGCashPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		orderID, err := uuid.Parse(req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid orderId"})
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
		if order.PaymentMethod != domain.PaymentMethodGCash {
			respondError(c, logger, &errors.ErrValidation{Message: "order is not a gcash order"})
			return
		}

		source, err := pm.CreateGCashSource(c.Request.Context(), order.Total, user.Name, user.Email, req.SuccessURL, req.FailedURL)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		now := time.Now()
		payment := &domain.Payment{
			OrderID:   order.ID,
			SourceID:  &source.ID,
			Amount:    order.Total,
			Status:    source.Status,
			Type:      domain.PaymentMethodGCash,
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Payment.Upsert(c.Request.Context(), payment); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("gcash source created",
			zap.String("order_id", order.ID.String()),
			zap.String("source_id", source.ID))

		c.JSON(http.StatusOK, gin.H{
			"payment":     payment,
			"checkoutUrl": source.CheckoutURL,
		})
	}
}

// HandleGetPaymentStatus handles GET /payments/:orderId/status. For gcash
// payments the live source status is fetched from the gateway and persisted.
func HandleGetPaymentStatus(repos *repository.Repositories, pm *paymongo.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "orderId")
		if !ok {
			return
		}

		payment, err := repos.Payment.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if payment.UserID != user.ID && user.Role != domain.RoleAdmin {
			respondError(c, logger, &errors.ErrForbidden{Message: "payment belongs to another customer"})
			return
		}

		if payment.Type == domain.PaymentMethodGCash && payment.SourceID != nil && pm != nil {
			source, err := pm.GetSource(c.Request.Context(), *payment.SourceID)
			if err != nil {
				logger.Warn("failed to refresh payment source",
					zap.String("order_id", orderID.String()), zap.Error(err))
			} else if source.Status != payment.Status {
				payment.Status = source.Status
				payment.UpdatedAt = time.Now()
				if err := repos.Payment.Upsert(c.Request.Context(), payment); err != nil {
					logger.Warn("failed to persist payment status",
						zap.String("order_id", orderID.String()), zap.Error(err))
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}

// HandleVerifyCODPayment handles POST /payments/:orderId/verify-cod (admin).
// Marks a cash-on-delivery payment as collected.
func HandleVerifyCODPayment(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "orderId")
		if !ok {
			return
		}

		order, err := repos.Order.GetByID(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if order.PaymentMethod != domain.PaymentMethodCOD {
			respondError(c, logger, &errors.ErrValidation{Message: "order is not a cod order"})
			return
		}

		now := time.Now()
		payment, err := repos.Payment.GetByOrderID(c.Request.Context(), orderID)
		if err != nil {
			if _, missing := err.(*errors.ErrNotFound); !missing {
				respondError(c, logger, err)
				return
			}
			payment = &domain.Payment{
				OrderID:   order.ID,
				Amount:    order.Total,
				Type:      domain.PaymentMethodCOD,
				UserID:    order.CustomerID,
				CreatedAt: now,
			}
		}

		payment.Status = "verified"
		payment.VerifiedBy = &admin.ID
		payment.VerifiedAt = &now
		payment.UpdatedAt = now
		if err := repos.Payment.Upsert(c.Request.Context(), payment); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("cod payment verified",
			zap.String("order_id", order.ID.String()),
			zap.String("verified_by", admin.ID.String()))

		c.JSON(http.StatusOK, gin.H{"payment": payment})
	}
}
