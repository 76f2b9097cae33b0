package models

import (
	"time"

	"gorm.io/gorm"
)

// Task is an internal work item handed to an employee, optionally tied to an order
type Task struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"not null" json:"title"`
	Description     string         `gorm:"type:text;not null" json:"description"`
	AssignedToID    uint           `gorm:"not null;index" json:"assigned_to"`
	AssignedTo      User           `gorm:"foreignKey:AssignedToID" json:"assignee"`
	CreatedByID     uint           `gorm:"not null" json:"created_by"`
	RelatedOrderID  *uint          `gorm:"index" json:"related_order,omitempty"`
	DueDate         *time.Time     `json:"due_date"`
	Priority        Priority       `gorm:"not null;default:'Medium'" json:"priority"`
	TaskType        string         `gorm:"not null;default:'General'" json:"task_type"`
	Status          TaskStatus     `gorm:"not null;default:'Pending';index" json:"status"`
	Notes           string         `gorm:"type:text" json:"notes,omitempty"`
	Progress        int            `gorm:"not null;default:0" json:"progress"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CompletionNotes string         `gorm:"type:text" json:"completion_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Task model
func (Task) TableName() string {
	return "tasks"
}

// IsAssignee reports whether userID is the employee the task is handed to
func (t *Task) IsAssignee(userID uint) bool {
	return t.AssignedToID == userID
}
