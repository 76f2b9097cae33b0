package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/logger"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"go.uber.org/zap"
)

// UserFinder resolves the profile linked to an Auth0 subject
type UserFinder interface {
	FindUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
}

// UserFinderFunc adapts a function to UserFinder
type UserFinderFunc func(ctx context.Context, auth0ID string) (*models.User, error)

// FindUserByAuth0ID calls f
func (f UserFinderFunc) FindUserByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	return f(ctx, auth0ID)
}

// LoadUser resolves the authenticated subject to a stored user profile.
// Must run after EnsureValidToken (or anything else that sets user_id).
func LoadUser(finder UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID, err := GetUserID(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
			return
		}

		user, err := finder.FindUserByAuth0ID(c.Request.Context(), auth0ID)
		if err != nil {
			if errors.Is(err, workflow.ErrNotFound) {
				abortWithError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
				return
			}
			logger.Log.Error("failed to load user profile", zap.String("auth0_id", auth0ID), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load user profile")
			return
		}

		c.Set("current_user", user)
		c.Next()
	}
}

// GetCurrentUser returns the profile stored by LoadUser
func GetCurrentUser(c *gin.Context) (*models.User, error) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, &AuthError{Code: "MISSING_USER", Message: "User not found in context"}
	}

	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, &AuthError{Code: "INVALID_USER", Message: "User is not in the expected format"}
	}

	return user, nil
}

// RequireRoles only lets users with one of the given roles through
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetCurrentUser(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
			return
		}

		if !slices.Contains(roles, user.Role) {
			abortWithError(c, http.StatusForbidden, "NOT_AUTHORIZED", "Your role is not allowed to access this resource")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
