package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/utils"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
)

// CreateClaimRequest represents the request body for filing a claim
type CreateClaimRequest struct {
	OrderID     uint             `json:"order_id" binding:"required"`
	Title       string           `json:"title" binding:"required"`
	Description string           `json:"description" binding:"required"`
	ClaimType   models.ClaimType `json:"claim_type" binding:"required"`
	Severity    models.Severity  `json:"severity"`
}

// UpdateClaimRequest represents a partial update; omitted fields are left unchanged
type UpdateClaimRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Severity    *models.Severity  `json:"severity"`
	ClaimType   *models.ClaimType `json:"claim_type"`
}

// AssignClaimRequest represents the request body for assigning a claim
type AssignClaimRequest struct {
	EmployeeID uint   `json:"employee_id"`
	Notes      string `json:"notes"`
}

var protectedClaimFields = []string{"status", "resolution", "history", "client", "client_id", "order_id", "claim_number", "assigned_to", "id"}

// CreateClaim handles POST /api/v1/claims - clients file claims against their own orders
func CreateClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	claim, err := newEngine().CreateClaim(c.Request.Context(), actor, workflow.CreateClaimInput{
		OrderID:     req.OrderID,
		Title:       req.Title,
		Description: req.Description,
		ClaimType:   req.ClaimType,
		Severity:    req.Severity,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusCreated, claim)
}

// ListClaims handles GET /api/v1/claims
// Query parameters: status, severity, claimType, orderId, startDate, endDate, search, page, limit
func ListClaims(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	created, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	filter := workflow.ClaimFilter{
		Status:    models.ClaimStatus(c.Query("status")),
		Severity:  models.Severity(c.Query("severity")),
		ClaimType: models.ClaimType(c.Query("claimType")),
		Created:   created,
		Search:    c.Query("search"),
		Page:      pageQuery(c),
	}
	if raw := c.Query("orderId"); raw != "" {
		orderID := uint(utils.ParsePositiveInt(raw))
		if orderID == 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "orderId must be a positive number")
			return
		}
		filter.OrderID = &orderID
	}

	page, err := newEngine().ListClaims(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondPage(c, page)
}

// GetClaim handles GET /api/v1/claims/:id
func GetClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Claim")
	if !ok {
		return
	}

	claim, err := newEngine().GetClaim(c.Request.Context(), actor, id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, claim)
}

// UpdateClaim handles PUT /api/v1/claims/:id
func UpdateClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Claim")
	if !ok {
		return
	}

	var req UpdateClaimRequest
	protected, ok := bindPartial(c, &req, protectedClaimFields)
	if !ok {
		return
	}

	claim, err := newEngine().UpdateClaim(c.Request.Context(), actor, id, workflow.ClaimUpdate{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		ClaimType:   req.ClaimType,
		Protected:   protected,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, claim)
}

// UpdateClaimStatus handles PUT /api/v1/claims/:id/status
// Resolved and Rejected require resolution.action
func UpdateClaimStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Claim")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	var resolution *workflow.ResolutionInput
	if req.Resolution != nil {
		resolution = &workflow.ResolutionInput{Action: req.Resolution.Action, Details: req.Resolution.Details}
	}

	claim, err := newEngine().SetClaimStatus(c.Request.Context(), actor, id, models.ClaimStatus(req.Status), req.Notes, resolution)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, claim)
}

// AssignClaim handles PUT /api/v1/claims/:id/assign - managers and admins only
func AssignClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Claim")
	if !ok {
		return
	}

	var req AssignClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	claim, err := newEngine().AssignClaim(c.Request.Context(), actor, id, req.EmployeeID, req.Notes)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, claim)
}
