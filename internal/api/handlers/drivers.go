package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// HandleListDrivers handles GET /drivers (admin)
func HandleListDrivers(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		drivers, err := repos.Driver.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"drivers": drivers})
	}
}

// HandleDriverProfile handles GET /drivers/me (driver)
func HandleDriverProfile(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var (
			driver *domain.Driver
			err    error
		)
		if user.DriverID != nil {
			driver, err = repos.Driver.GetByID(c.Request.Context(), *user.DriverID)
		} else {
			driver, err = repos.Driver.GetByUserID(c.Request.Context(), user.ID)
		}
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"driver": driver})
	}
}
