package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
)

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	Title          string                `json:"title" binding:"required"`
	Description    string                `json:"description"`
	OrderType      models.OrderType      `json:"order_type" binding:"required"`
	Specifications models.Specifications `json:"specifications"`
	Deadline       time.Time             `json:"deadline" binding:"required"`
	Priority       models.Priority       `json:"priority"`
}

// UpdateOrderRequest represents a partial update; omitted fields are left unchanged
type UpdateOrderRequest struct {
	Title          *string                     `json:"title"`
	Description    *string                     `json:"description"`
	Specifications *models.Specifications      `json:"specifications"`
	OrderType      *models.OrderType           `json:"order_type"`
	Priority       *models.Priority            `json:"priority"`
	Deadline       *time.Time                  `json:"deadline"`
	EstimatedCost  *float64                    `json:"estimated_cost"`
	FinalCost      *float64                    `json:"final_cost"`
	Currency       *string                     `json:"currency"`
	PaymentStatus  *models.PaymentStatus       `json:"payment_status"`
	StageNotes     map[models.StageName]string `json:"stage_notes"`
	TrackingNumber *string                     `json:"tracking_number"`
	DeliveryMethod *string                     `json:"delivery_method"`
}

func (r UpdateOrderRequest) toUpdate() workflow.OrderUpdate {
	return workflow.OrderUpdate{
		Title:          r.Title,
		Description:    r.Description,
		Specifications: r.Specifications,
		OrderType:      r.OrderType,
		Priority:       r.Priority,
		Deadline:       r.Deadline,
		EstimatedCost:  r.EstimatedCost,
		FinalCost:      r.FinalCost,
		Currency:       r.Currency,
		PaymentStatus:  r.PaymentStatus,
		StageNotes:     r.StageNotes,
		TrackingNumber: r.TrackingNumber,
		DeliveryMethod: r.DeliveryMethod,
	}
}

// protectedOrderFields only change through dedicated endpoints, or never
var protectedOrderFields = []string{"status", "stages", "history", "client", "client_id", "order_number", "id"}

// UpdateStatusRequest represents the request body for changing an order or claim status
type UpdateStatusRequest struct {
	Status     string             `json:"status" binding:"required"`
	Notes      string             `json:"notes"`
	Resolution *ResolutionRequest `json:"resolution"`
}

// ResolutionRequest carries the outcome of a resolved or rejected claim
type ResolutionRequest struct {
	Action  string `json:"action"`
	Details string `json:"details"`
}

// AssignStageRequest represents the request body for assigning an order stage
type AssignStageRequest struct {
	Stage      string `json:"stage" binding:"required"`
	EmployeeID uint   `json:"employee_id"`
	Notes      string `json:"notes"`
}

// bindPartial decodes a partial update body into req and returns the protected keys it carried.
// Those keys are handed to the engine, which refuses them once the caller is authorized.
func bindPartial(c *gin.Context, req any, protected []string) ([]string, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		respondValidation(c, err)
		return nil, false
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		respondValidation(c, err)
		return nil, false
	}
	var sent []string
	for _, field := range protected {
		if _, ok := keys[field]; ok {
			sent = append(sent, field)
		}
	}

	if err := json.Unmarshal(raw, req); err != nil {
		respondValidation(c, err)
		return nil, false
	}
	return sent, true
}

// CreateOrder handles POST /api/v1/orders - creates a new order (clients only)
func CreateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := newEngine().CreateOrder(c.Request.Context(), actor, workflow.CreateOrderInput{
		Title:          req.Title,
		Description:    req.Description,
		OrderType:      req.OrderType,
		Specifications: req.Specifications,
		Deadline:       req.Deadline,
		Priority:       req.Priority,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusCreated, order)
}

// ListOrders handles GET /api/v1/orders - lists the orders visible to the caller
// Query parameters: status, priority, orderType, startDate, endDate, search, page, limit
func ListOrders(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	created, ok := dateRangeQuery(c)
	if !ok {
		return
	}

	page, err := newEngine().ListOrders(c.Request.Context(), actor, workflow.OrderFilter{
		Status:    models.OrderStatus(c.Query("status")),
		Priority:  models.Priority(c.Query("priority")),
		OrderType: models.OrderType(c.Query("orderType")),
		Created:   created,
		Search:    c.Query("search"),
		Page:      pageQuery(c),
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondPage(c, page)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}

	order, err := newEngine().GetOrder(c.Request.Context(), actor, id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id - role-restricted partial update
func UpdateOrder(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	protected, ok := bindPartial(c, &req, protectedOrderFields)
	if !ok {
		return
	}

	update := req.toUpdate()
	update.Protected = protected
	order, err := newEngine().UpdateOrder(c.Request.Context(), actor, id, update)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status - staff change status, clients are refused
func UpdateOrderStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := newEngine().SetOrderStatus(c.Request.Context(), actor, id, models.OrderStatus(req.Status), req.Notes)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}

// AssignOrderStage handles PUT /api/v1/orders/:id/assign - managers and admins only
func AssignOrderStage(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}

	var req AssignStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	order, err := newEngine().AssignOrderStage(c.Request.Context(), actor, id, workflow.AssignStageInput{
		Stage:      models.StageName(req.Stage),
		EmployeeID: req.EmployeeID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, order)
}
