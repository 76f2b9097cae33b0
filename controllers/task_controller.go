package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/prepress-orders-api/models"
	"github.com/kendall-kelly/prepress-orders-api/workflow"
)

// CreateTaskRequest represents the request body for creating a task
type CreateTaskRequest struct {
	Title          string          `json:"title" binding:"required"`
	Description    string          `json:"description" binding:"required"`
	AssignedTo     uint            `json:"assigned_to"`
	RelatedOrderID *uint           `json:"related_order"`
	DueDate        *time.Time      `json:"due_date"`
	Priority       models.Priority `json:"priority"`
	TaskType       string          `json:"task_type"`
	Notes          string          `json:"notes"`
}

// UpdateTaskRequest represents a partial update; omitted fields are left unchanged
type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	DueDate     *time.Time       `json:"due_date"`
	Priority    *models.Priority `json:"priority"`
	TaskType    *string          `json:"task_type"`
	Notes       *string          `json:"notes"`
	Progress    *int             `json:"progress"`
}

// CompleteTaskRequest represents the request body for completing a task
type CompleteTaskRequest struct {
	CompletionNotes string `json:"completion_notes"`
}

// AssignTaskRequest represents the request body for reassigning a task
type AssignTaskRequest struct {
	EmployeeID uint `json:"employee_id"`
}

var protectedTaskFields = []string{"status", "assigned_to", "created_by", "completed_at", "id"}

// CreateTask handles POST /api/v1/tasks - managers and admins only
func CreateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	task, err := newEngine().CreateTask(c.Request.Context(), actor, workflow.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		AssignedToID:   req.AssignedTo,
		RelatedOrderID: req.RelatedOrderID,
		DueDate:        req.DueDate,
		Priority:       req.Priority,
		TaskType:       req.TaskType,
		Notes:          req.Notes,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusCreated, task)
}

// ListTasks handles GET /api/v1/tasks
// Query parameters: status, priority, taskType, page, limit
func ListTasks(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	page, err := newEngine().ListTasks(c.Request.Context(), actor, workflow.TaskFilter{
		Status:   models.TaskStatus(c.Query("status")),
		Priority: models.Priority(c.Query("priority")),
		TaskType: c.Query("taskType"),
		Page:     pageQuery(c),
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondPage(c, page)
}

// GetTask handles GET /api/v1/tasks/:id
func GetTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Task")
	if !ok {
		return
	}

	task, err := newEngine().GetTask(c.Request.Context(), actor, id)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, task)
}

// UpdateTask handles PUT /api/v1/tasks/:id
func UpdateTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	protected, ok := bindPartial(c, &req, protectedTaskFields)
	if !ok {
		return
	}

	task, err := newEngine().UpdateTask(c.Request.Context(), actor, id, workflow.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
		TaskType:    req.TaskType,
		Notes:       req.Notes,
		Progress:    req.Progress,
		Protected:   protected,
	})
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, task)
}

// CompleteTask handles PUT /api/v1/tasks/:id/complete - the assignee only
func CompleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Task")
	if !ok {
		return
	}

	var req CompleteTaskRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}

	task, err := newEngine().CompleteTask(c.Request.Context(), actor, id, req.CompletionNotes)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, task)
}

// AssignTask handles PUT /api/v1/tasks/:id/assign - managers and admins only
func AssignTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Task")
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	task, err := newEngine().AssignTask(c.Request.Context(), actor, id, req.EmployeeID)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	respondData(c, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/v1/tasks/:id - managers and admins only
func DeleteTask(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Task")
	if !ok {
		return
	}

	if err := newEngine().DeleteTask(c.Request.Context(), actor, id); err != nil {
		respondWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted",
	})
}
