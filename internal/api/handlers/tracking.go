package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/repository"
	"github.com/rmtsolutions/logisticsapi/internal/service"
)

// HandleTrackDelivery handles GET /track/:refNumber. Public, no auth: the
// response is a projection with no internal ids and a masked phone number.
func HandleTrackDelivery(repos *repository.Repositories, cache *repository.TrackingCache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		refNumber := c.Param("refNumber")
		if refNumber == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reference number is required"})
			return
		}

		deliverySvc := service.NewDeliveryService(repos, cache, logger)
		tracking, err := deliverySvc.Track(c.Request.Context(), refNumber)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"tracking": tracking})
	}
}
