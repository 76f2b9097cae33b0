package models

import (
	"time"

	"gorm.io/gorm"
)

// Claim represents a post-delivery quality claim filed by a client against an order
type Claim struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ClaimNumber  string         `gorm:"uniqueIndex;not null" json:"claim_number"`
	OrderID      uint           `gorm:"not null;index" json:"order_id"`
	Order        *Order         `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ClientID     uint           `gorm:"not null;index" json:"client_id"`
	Client       User           `gorm:"foreignKey:ClientID" json:"client"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text;not null" json:"description"`
	ClaimType    ClaimType      `gorm:"not null" json:"claim_type"`
	Severity     Severity       `gorm:"not null;default:'Medium'" json:"severity"`
	Status       ClaimStatus    `gorm:"not null;default:'Submitted';index" json:"status"`
	AssignedToID *uint          `gorm:"index" json:"assigned_to"`
	AssignedTo   *User          `gorm:"foreignKey:AssignedToID" json:"assignee,omitempty"`
	Resolution   *Resolution    `gorm:"serializer:json;type:text" json:"resolution"` // nil until Resolved or Rejected
	History      []HistoryEntry `gorm:"polymorphic:Entity;polymorphicValue:claims" json:"history"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Claim model
func (Claim) TableName() string {
	return "claims"
}

// HistoryEntityType is the polymorphic owner type stored on history rows and attachments
func (Claim) HistoryEntityType() string {
	return "claims"
}

// EntityID returns the primary key used to link history rows
func (c *Claim) EntityID() uint {
	return c.ID
}

// AppendHistory pushes one audit entry onto the in-memory history and returns the stored copy
func (c *Claim) AppendHistory(entry HistoryEntry) *HistoryEntry {
	c.History = append(c.History, entry)
	return &c.History[len(c.History)-1]
}

// IsAssignee reports whether userID is the employee handling the claim
func (c *Claim) IsAssignee(userID uint) bool {
	return c.AssignedToID != nil && *c.AssignedToID == userID
}

// Resolution is the outcome recorded when a claim is resolved or rejected
type Resolution struct {
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	Date       time.Time `json:"date"`
	ResolvedBy uint      `json:"resolved_by"`
}
