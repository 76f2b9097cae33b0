package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/logger"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/services"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name    string  `json:"name" binding:"omitempty"`
	Email   string  `json:"email" binding:"omitempty,email"`
	Company *string `json:"company"`
}

// isDuplicateKey works with both PostgreSQL and SQLite
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// CreateUser handles POST /api/v1/users - creates a new user from Auth0 userinfo
// The role comes from the token's "role" claim and defaults to client
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		logger.Log.Warn("userinfo lookup failed", zap.String("auth0_id", auth0ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	role := middleware.GetRoleClaim(c)
	if role == "" {
		role = models.RoleClient
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
	}

	if err := newStore().CreateUser(c.Request.Context(), &user); err != nil {
		if isDuplicateKey(err) {
			respondError(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		logger.Log.Error("failed to create user", zap.String("auth0_id", auth0ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	logger.Log.Info("user profile created", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates name, email and company
func UpdateMyProfile(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	changed := false
	if req.Name != "" {
		user.Name = req.Name
		changed = true
	}
	if req.Email != "" {
		user.Email = req.Email
		changed = true
	}
	if req.Company != nil {
		user.Company = strings.TrimSpace(*req.Company)
		changed = true
	}

	if !changed {
		respondData(c, http.StatusOK, user)
		return
	}

	if err := newStore().SaveUser(c.Request.Context(), user); err != nil {
		if isDuplicateKey(err) {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		logger.Log.Error("failed to update user", zap.Uint("user_id", user.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user profile")
		return
	}

	respondData(c, http.StatusOK, user)
}

// ListUsers handles GET /api/v1/users?role= - managers and admins pick assignees from here
func ListUsers(c *gin.Context) {
	role := models.Role(c.Query("role"))
	if role != "" && !role.IsValid() {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "role must be one of client, employee, manager, admin")
		return
	}

	users, err := newStore().ListUsers(c.Request.Context(), role)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/:id
func GetUser(c *gin.Context) {
	id, ok := idParam(c, "id", "User")
	if !ok {
		return
	}

	user, err := newStore().FindUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, user)
}
