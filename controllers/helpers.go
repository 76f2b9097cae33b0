package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/config"
	"github.com/kendall-kelly/prepress-orders-api/logger"
	"github.com/kendall-kelly/prepress-orders-api/middleware"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/repository"
	"github.com/kendall-kelly/prepress-orders-api/utils"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
	"go.uber.org/zap"
)

// errorStatus maps workflow error kinds to HTTP statuses
var errorStatus = []struct {
	kind   error
	status int
}{
	{workflow.ErrNotFound, http.StatusNotFound},
	{workflow.ErrNotAuthorized, http.StatusForbidden},
	{workflow.ErrForbiddenTransition, http.StatusConflict},
	{workflow.ErrValidation, http.StatusBadRequest},
	{workflow.ErrInvalidStage, http.StatusUnprocessableEntity},
	{workflow.ErrInvalidAssignee, http.StatusUnprocessableEntity},
}

// newStore returns a store over the current database connection
func newStore() *repository.GormStore {
	return repository.NewGormStore(config.GetDB())
}

// newEngine builds the workflow engine over the current database connection
func newEngine() *workflow.Engine {
	opts := []workflow.Option{workflow.WithLogger(logger.Log)}
	if cfg := config.GetConfig(); cfg != nil {
		opts = append(opts,
			workflow.WithNumberPrefixes(cfg.OrderNumberPrefix, cfg.ClaimNumberPrefix),
			workflow.WithPageSizes(cfg.DefaultPageSize, cfg.MaxPageSize),
		)
	}
	return workflow.NewEngine(newStore(), opts...)
}

// FindUserByAuth0ID resolves a profile for middleware.LoadUser
func FindUserByAuth0ID() middleware.UserFinder {
	return middleware.UserFinderFunc(func(ctx context.Context, auth0ID string) (*models.User, error) {
		return newStore().FindUserByAuth0ID(ctx, auth0ID)
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondWorkflowError renders an engine error with the status of its kind
func respondWorkflowError(c *gin.Context, err error) {
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		for _, m := range errorStatus {
			if errors.Is(err, m.kind) {
				respondError(c, m.status, wfErr.Code, wfErr.Message)
				return
			}
		}
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	logger.Log.Error("request failed", zap.String("uri", c.Request.RequestURI), zap.Error(err))
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage[T any](c *gin.Context, page workflow.PageResult[T]) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Items,
		"pagination": gin.H{
			"page":  page.Page,
			"pages": page.Pages,
			"total": page.Total,
			"limit": page.Limit,
		},
	})
}

// currentUser returns the caller's profile, loading it when LoadUser has not run.
// It writes the error response itself and returns false on failure.
func currentUser(c *gin.Context) (*models.User, bool) {
	if user, err := middleware.GetCurrentUser(c); err == nil {
		return user, true
	}

	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	user, err := newStore().FindUserByAuth0ID(c.Request.Context(), auth0ID)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
			return nil, false
		}
		respondWorkflowError(c, err)
		return nil, false
	}
	return user, true
}

// currentActor is currentUser reduced to what the engine needs
func currentActor(c *gin.Context) (workflow.Actor, bool) {
	user, ok := currentUser(c)
	if !ok {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: user.ID, Role: user.Role}, true
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", label+" ID must be a positive number")
		return 0, false
	}
	return uint(id), true
}

// pageQuery reads ?page= and ?limit=
func pageQuery(c *gin.Context) workflow.Page {
	return workflow.Page{
		Page:  utils.ParsePositiveInt(c.Query("page")),
		Limit: utils.ParsePositiveInt(c.Query("limit")),
	}
}

// dateRangeQuery reads ?startDate= and ?endDate=
func dateRangeQuery(c *gin.Context) (workflow.DateRange, bool) {
	from, err := utils.ParseDate(c.Query("startDate"), false)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "startDate must be YYYY-MM-DD or RFC 3339")
		return workflow.DateRange{}, false
	}
	to, err := utils.ParseDate(c.Query("endDate"), true)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "endDate must be YYYY-MM-DD or RFC 3339")
		return workflow.DateRange{}, false
	}
	return workflow.DateRange{From: from, To: to}, true
}
