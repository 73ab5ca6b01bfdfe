package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rmtsolutions/logisticsapi/internal/api/middleware"
	"github.com/rmtsolutions/logisticsapi/internal/domain"
	"github.com/rmtsolutions/logisticsapi/internal/repository"
)

// HandleListUsers handles GET /users (admin)
func HandleListUsers(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := repos.User.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users": lo.Map(users, func(u *domain.User, _ int) gin.H {
				return userResponse(u)
			}),
		})
	}
}

// CreateUserRequest is the admin user-creation payload
type CreateUserRequest struct {
	Email string      `json:"email" binding:"required,email"`
	Name  string      `json:"name" binding:"required"`
	Role  domain.Role `json:"role" binding:"required"`
}

// HandleCreateUser handles POST /users (admin). The issued token is returned
// once for handoff to the new user.
func HandleCreateUser(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}
		if !req.Role.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
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
			Role:        req.Role,
			Active:      true,
			TokenLookup: middleware.HashTokenLookup(token),
			TokenHash:   middleware.HashToken(token),
			CreatedAt:   time.Now(),
		}
		if err := repos.User.Create(c.Request.Context(), user); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"user":  userResponse(user),
			"token": token,
		})
	}
}

// ToggleActiveRequest carries the desired active flag
type ToggleActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// HandleToggleUserActive handles PATCH /users/:id/toggle (admin).
// Deactivated users fail authentication until reactivated.
func HandleToggleUserActive(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req ToggleActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "details": err.Error()})
			return
		}

		if _, err := repos.User.GetByID(c.Request.Context(), userID); err != nil {
			respondError(c, logger, err)
			return
		}
		if err := repos.User.SetActive(c.Request.Context(), userID, *req.Active); err != nil {
			respondError(c, logger, err)
			return
		}

		logger.Info("user active flag changed",
			zap.String("user_id", userID.String()),
			zap.Bool("active", *req.Active))

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// HandleResetUserToken handles POST /users/:id/reset-password (admin). The old
// credential stops working immediately.
func HandleResetUserToken(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		if _, err := repos.User.GetByID(c.Request.Context(), userID); err != nil {
			respondError(c, logger, err)
			return
		}

		token, err := middleware.GenerateToken()
		if err != nil {
			logger.Error("failed to generate token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		if err := repos.User.UpdateCredential(c.Request.Context(), userID,
			middleware.HashTokenLookup(token), middleware.HashToken(token)); err != nil {
			respondError(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
