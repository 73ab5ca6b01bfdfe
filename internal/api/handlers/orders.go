package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/service"
)

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	Items         []OrderItemRequest   `json:"items" binding:"required,min=1,dive"`
	DeliveryInfo  DeliveryInfoRequest  `json:"deliveryInfo" binding:"required"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" binding:"required"`
}

type OrderItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"min=0"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
}

type DeliveryInfoRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
}

// HandleCreateOrder handles POST /orders
func HandleCreateOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		items := make([]domain.OrderItem, len(req.Items))
		for i, item := range req.Items {
			items[i] = domain.OrderItem{
				ProductID: item.ProductID,
				Name:      item.Name,
				Price:     item.Price,
				Quantity:  item.Quantity,
			}
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		orderSvc := service.NewOrderService(repos, notifier, logger)
		order, err := orderSvc.CreateOrder(c.Request.Context(), user, service.CreateOrderRequest{
			Items: items,
			DeliveryInfo: domain.DeliveryInfo{
				Name:       req.DeliveryInfo.Name,
				Phone:      req.DeliveryInfo.Phone,
				Street:     req.DeliveryInfo.Street,
				City:       req.DeliveryInfo.City,
				PostalCode: req.DeliveryInfo.PostalCode,
			},
			PaymentMethod: req.PaymentMethod,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleListOrders handles GET /orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		notifier := service.NewNotifier(repos.Notification, logger)
		orderSvc := service.NewOrderService(repos, notifier, logger)
		orders, err := orderSvc.ListOrders(c.Request.Context(), user, limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// HandleGetOrder handles GET /orders/:id
func HandleGetOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		orderSvc := service.NewOrderService(repos, notifier, logger)
		order, err := orderSvc.GetOrder(c.Request.Context(), user, orderID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// UpdateStatusRequest carries a target status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// HandleUpdateOrderStatus handles POST /orders/:id/update-status (admin)
func HandleUpdateOrderStatus(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		lifecycle := service.NewLifecycleService(repos, notifier, logger)
		order, err := lifecycle.Transition(c.Request.Context(), orderID, domain.OrderStatus(req.Status), user)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleDriverOrderStatus handles PATCH /orders/:id/status (driver pickup
// and mark-delivered)
func HandleDriverOrderStatus(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		lifecycle := service.NewLifecycleService(repos, notifier, logger)
		order, err := lifecycle.DriverTransition(c.Request.Context(), orderID, domain.OrderStatus(req.Status), user)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// ProofOfDeliveryRequest is the driver POD payload
type ProofOfDeliveryRequest struct {
	Notes       string    `json:"notes"`
	HasImage    bool      `json:"hasImage"`
	DeliveredAt time.Time `json:"deliveredAt" binding:"required"`
}

// HandleSubmitProof handles POST /orders/:id/pod (driver)
func HandleSubmitProof(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req ProofOfDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		lifecycle := service.NewLifecycleService(repos, notifier, logger)
		if _, err := lifecycle.AttachProof(c.Request.Context(), orderID, user, req.Notes, req.HasImage, req.DeliveredAt); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// AssignDriverRequest carries the driver to assign
type AssignDriverRequest struct {
	DriverID string `json:"driverId" binding:"required"`
}

// HandleAssignDriver handles POST /orders/:id/assign-driver (admin)
func HandleAssignDriver(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req AssignDriverRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		driverID, err := uuid.Parse(req.DriverID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid driverId"})
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		lifecycle := service.NewLifecycleService(repos, notifier, logger)
		order, err := lifecycle.AssignDriver(c.Request.Context(), orderID, driverID, user)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleStats handles GET /stats
func HandleStats(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		notifier := service.NewNotifier(repos.Notification, logger)
		orderSvc := service.NewOrderService(repos, notifier, logger)
		stats, err := orderSvc.Stats(c.Request.Context(), user)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"stats": stats})
	}
}
