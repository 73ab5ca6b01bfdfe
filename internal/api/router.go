package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/handlers"
	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/config"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/paymongo"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// NewRouter creates and configures the Gin router. cache and pm may be nil
// when Redis or PayMongo are not configured.
func NewRouter(cfg *config.Config, repos *repository.Repositories, cache *repository.TrackingCache, pm *paymongo.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "RMT Logistics API",
			"endpoints": []string{
				"GET /health",
				"GET /track/:refNumber",
				"POST /auth/signup",
				"GET /orders",
				"GET /deliveries",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public tracking: no auth, masked projection
	router.GET("/track/:refNumber", handlers.HandleTrackDelivery(repos, cache, logger))

	// Signup routes issue the bearer credential
	auth := router.Group("/auth")
	{
		auth.POST("/signup", handlers.HandleSignup(repos, logger))
		auth.POST("/admin-signup", handlers.HandleAdminSignup(repos, logger))
		auth.POST("/driver-signup", handlers.HandleDriverSignup(repos, logger))
	}

	// Authenticated routes
	authed := router.Group("")
	authed.Use(middleware.AuthMiddleware(repos, logger))
	{
		authed.GET("/auth/me", handlers.HandleMe(logger))

		authed.POST("/orders", handlers.HandleCreateOrder(repos, logger))
		authed.GET("/orders", handlers.HandleListOrders(repos, logger))
		authed.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))

		authed.GET("/deliveries", handlers.HandleListDeliveries(repos, cache, logger))
		authed.PATCH("/deliveries/:id/status", handlers.HandleUpdateDeliveryStatus(repos, cache, logger))

		authed.GET("/notifications", handlers.HandleListNotifications(repos, logger))
		authed.POST("/notifications/:id/mark-read", handlers.HandleMarkNotificationRead(repos, logger))

		authed.GET("/returns", handlers.HandleListReturns(repos, logger))
		authed.POST("/returns", handlers.HandleCreateReturn(repos, logger))

		authed.GET("/products", handlers.HandleListProducts(repos, logger))
		authed.GET("/suppliers", handlers.HandleListSuppliers(repos, logger))
		authed.POST("/suppliers/:id/reorder", handlers.HandleReorderFromSupplier(repos, logger))
		authed.GET("/stats", handlers.HandleStats(repos, logger))

		authed.POST("/payments/gcash", handlers.HandleCreateGCashPayment(repos, pm, logger))
		authed.GET("/payments/:orderId/status", handlers.HandleGetPaymentStatus(repos, pm, logger))

		// Admin-only routes
		admin := authed.Group("")
		admin.Use(middleware.RequireRole(domain.RoleAdmin))
		{
			admin.POST("/orders/:id/update-status", handlers.HandleUpdateOrderStatus(repos, logger))
			admin.POST("/orders/:id/assign-driver", handlers.HandleAssignDriver(repos, logger))

			admin.POST("/deliveries", handlers.HandleCreateDelivery(repos, cache, logger))
			admin.GET("/deliveries/stats", handlers.HandleDeliveryStats(repos, cache, logger))

			admin.GET("/drivers", handlers.HandleListDrivers(repos, logger))

			admin.PATCH("/returns/:id/status", handlers.HandleUpdateReturnStatus(repos, logger))

			admin.GET("/users", handlers.HandleListUsers(repos, logger))
			admin.POST("/users", handlers.HandleCreateUser(repos, logger))
			admin.PATCH("/users/:id/toggle", handlers.HandleToggleUserActive(repos, logger))
			admin.POST("/users/:id/reset-password", handlers.HandleResetUserToken(repos, logger))

			admin.POST("/payments/:orderId/verify-cod", handlers.HandleVerifyCODPayment(repos, logger))

			admin.GET("/inventory", handlers.HandleListInventory(repos, logger))
			admin.POST("/inventory/:productId/restock", handlers.HandleRestockProduct(repos, logger))
		}

		// Driver-only routes
		driver := authed.Group("")
		driver.Use(middleware.RequireRole(domain.RoleDriver))
		{
			driver.PATCH("/orders/:id/status", handlers.HandleDriverOrderStatus(repos, logger))
			driver.POST("/orders/:id/pod", handlers.HandleSubmitProof(repos, logger))
			driver.GET("/drivers/me", handlers.HandleDriverProfile(repos, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
