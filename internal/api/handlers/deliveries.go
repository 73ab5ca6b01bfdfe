package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/service"
)

// CreateDeliveryRequest is the admin delivery-creation payload
type CreateDeliveryRequest struct {
	ReferenceNumber   string         `json:"referenceNumber" binding:"required"`
	CustomerName      string         `json:"customerName" binding:"required"`
	CustomerPhone     string         `json:"customerPhone" binding:"required"`
	Address           domain.Address `json:"address" binding:"required"`
	EstimatedDelivery string         `json:"estimatedDelivery"`
	AssignedDriverID  *string        `json:"assignedDriverId"`
}

// HandleCreateDelivery handles POST /deliveries (admin)
func HandleCreateDelivery(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateDeliveryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		var driverID *uuid.UUID
		if req.AssignedDriverID != nil && *req.AssignedDriverID != "" {
			id, err := uuid.Parse(*req.AssignedDriverID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignedDriverId"})
				return
			}
			driverID = &id
		}

		deliverySvc := service.NewDeliveryService(repos, cache, logger)
		delivery, err := deliverySvc.CreateDelivery(c.Request.Context(), service.CreateDeliveryRequest{
			ReferenceNumber:   req.ReferenceNumber,
			CustomerName:      req.CustomerName,
			CustomerPhone:     req.CustomerPhone,
			Address:           req.Address,
			EstimatedDelivery: req.EstimatedDelivery,
			AssignedDriverID:  driverID,
		})
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"delivery": delivery})
	}
}

// HandleListDeliveries handles GET /deliveries
func HandleListDeliveries(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		deliverySvc := service.NewDeliveryService(repos, cache, logger)
		deliveries, err := deliverySvc.ListDeliveries(c.Request.Context(), limit, offset)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
	}
}

// HandleUpdateDeliveryStatus handles PATCH /deliveries/:id/status
func HandleUpdateDeliveryStatus(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliveryID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		deliverySvc := service.NewDeliveryService(repos, cache, logger)
		delivery, err := deliverySvc.UpdateStatus(c.Request.Context(), deliveryID, domain.DeliveryStatus(req.Status))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"delivery": delivery})
	}
}

// HandleDeliveryStats handles GET /deliveries/stats (admin)
func HandleDeliveryStats(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		deliverySvc := service.NewDeliveryService(repos, cache, logger)
		stats, recent, err := deliverySvc.Stats(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"stats":  stats,
			"recent": recent,
		})
	}
}
