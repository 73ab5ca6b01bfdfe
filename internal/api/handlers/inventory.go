package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/pkg/errors"
)

// HandleListProducts handles GET /products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repos.Product.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// HandleListInventory handles GET /inventory (admin)
func HandleListInventory(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := repos.Inventory.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"inventory": records})
	}
}

// RestockRequest carries the quantity to add
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// HandleRestockProduct handles POST /inventory/:productId/restock (admin).
// Stock is added to both the inventory record and the catalog entry.
func HandleRestockProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("productId")
		if productID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId"})
			return
		}

		var req RestockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		record, err := repos.Inventory.GetByProductID(c.Request.Context(), productID)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		record.CurrentStock += req.Quantity
		record.LastRestocked = time.Now()
		record.NeedsReorder = record.CurrentStock <= record.ReorderLevel
		if err := repos.Inventory.Update(c.Request.Context(), record); err != nil {
			respondError(c, logger, err)
			return
		}

		if err := repos.Product.UpdateStock(c.Request.Context(), productID, record.CurrentStock); err != nil {
			if _, missing := err.(*errors.ErrNotFound); !missing {
				respondError(c, logger, err)
				return
			}
			// inventory rows can exist before the catalog entry does
			logger.Warn("restocked product missing from catalog", zap.String("product_id", productID))
		}

		logger.Info("product restocked",
			zap.String("product_id", productID),
			zap.Int("quantity", req.Quantity),
			zap.Int("current_stock", record.CurrentStock))

		c.JSON(http.StatusOK, gin.H{"inventory": record})
	}
}
