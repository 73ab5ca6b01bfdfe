package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// SignupRequest is the shared payload for all signup variants
type SignupRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Vehicle string `json:"vehicle"`
}

func userResponse(user *domain.User) gin.H {
	return gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"name":      user.Name,
		"role":      user.Role,
		"active":    user.Active,
		"balance":   user.Balance,
		"driverId":  user.DriverID,
		"createdAt": user.CreatedAt,
	}
}

// HandleSignup handles POST /auth/signup. The issued token is returned once
// and never stored in recoverable form.
func HandleSignup(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return signupHandler(repos, logger, domain.RoleCustomer)
}

// HandleAdminSignup handles POST /auth/admin-signup
func HandleAdminSignup(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return signupHandler(repos, logger, domain.RoleAdmin)
}

func signupHandler(repos *repository.Repositories, logger *zap.Logger, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if existing, err := repos.User.GetByEmail(c.Request.Context(), req.Email); err == nil && existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		token, err := middleware.GenerateToken()
		if err != nil {
			logger.Error("failed to generate token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		user := &domain.User{
			ID:          uuid.New(),
			Email:       req.Email,
			Name:        req.Name,
			Role:        role,
			Active:      true,
			TokenLookup: middleware.HashTokenLookup(token),
			TokenHash:   middleware.HashToken(token),
			CreatedAt:   time.Now(),
		}
		if err := repos.User.Create(c.Request.Context(), user); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("user registered",
			zap.String("user_id", user.ID.String()),
			zap.String("role", string(role)))

		c.JSON(http.StatusCreated, gin.H{
			"user":  userResponse(user),
			"token": token,
		})
	}
}

// HandleDriverSignup handles POST /auth/driver-signup. It creates both the
// auth identity and the linked driver record.
func HandleDriverSignup(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if existing, err := repos.User.GetByEmail(c.Request.Context(), req.Email); err == nil && existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}

		token, err := middleware.GenerateToken()
		if err != nil {
			logger.Error("failed to generate token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		userID := uuid.New()
		driver := &domain.Driver{
			ID:        uuid.New(),
			UserID:    userID,
			Name:      req.Name,
			Phone:     req.Phone,
			Vehicle:   req.Vehicle,
			Status:    domain.DriverStatusAvailable,
			CreatedAt: time.Now(),
		}
		if err := repos.Driver.Create(c.Request.Context(), driver); err != nil {
			respondError(c, logger, err)
			return
		}

		user := &domain.User{
			ID:          userID,
			Email:       req.Email,
			Name:        req.Name,
			Role:        domain.RoleDriver,
			Active:      true,
			DriverID:    &driver.ID,
			TokenLookup: middleware.HashTokenLookup(token),
			TokenHash:   middleware.HashToken(token),
			CreatedAt:   time.Now(),
		}
		if err := repos.User.Create(c.Request.Context(), user); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("driver registered",
			zap.String("user_id", user.ID.String()),
			zap.String("driver_id", driver.ID.String()))

		c.JSON(http.StatusCreated, gin.H{
			"user":   userResponse(user),
			"driver": driver,
			"token":  token,
		})
	}
}

// HandleMe handles GET /auth/me
func HandleMe(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": userResponse(user)})
	}
}
