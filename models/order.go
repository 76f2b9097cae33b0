package models

import (
	"time"

	"gorm.io/gorm"
)

// Order represents a print production work order placed by a client
type Order struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	OrderNumber    string         `gorm:"uniqueIndex;not null" json:"order_number"` // assigned once at creation
	ClientID       uint           `gorm:"not null;index" json:"client_id"`          // immutable after creation
	Client         User           `gorm:"foreignKey:ClientID" json:"client"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `json:"description"`
	OrderType      OrderType      `gorm:"not null" json:"order_type"`
	Specifications Specifications `gorm:"embedded;embeddedPrefix:spec_" json:"specifications"`
	Status         OrderStatus    `gorm:"not null;default:'Submitted';index" json:"status"`
	Stages         OrderStages    `gorm:"embedded" json:"stages"`
	Priority       Priority       `gorm:"not null;default:'Medium'" json:"priority"`
	Deadline       time.Time      `gorm:"not null" json:"deadline"`
	Cost           Cost           `gorm:"embedded;embeddedPrefix:cost_" json:"cost"`
	History        []HistoryEntry `gorm:"polymorphic:Entity;polymorphicValue:orders" json:"history"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// HistoryEntityType is the polymorphic owner type stored on history rows and attachments
func (Order) HistoryEntityType() string {
	return "orders"
}

// EntityID returns the primary key used to link history rows
func (o *Order) EntityID() uint {
	return o.ID
}

// AppendHistory pushes one audit entry onto the in-memory history and returns the stored copy
func (o *Order) AppendHistory(entry HistoryEntry) *HistoryEntry {
	o.History = append(o.History, entry)
	return &o.History[len(o.History)-1]
}

// IsAssignee reports whether userID is assigned to any stage of the order
func (o *Order) IsAssignee(userID uint) bool {
	for _, name := range StageNames {
		stage := o.Stages.Get(name)
		if stage.AssignedToID != nil && *stage.AssignedToID == userID {
			return true
		}
	}
	return false
}

// Specifications describes the physical print job
type Specifications struct {
	Material          string     `json:"material"`
	Dimensions        Dimensions `gorm:"embedded;embeddedPrefix:dim_" json:"dimensions"`
	Quantity          int        `json:"quantity"`
	Colors            int        `json:"colors"`
	FinishType        FinishType `gorm:"default:'None'" json:"finish_type"`
	AdditionalDetails string     `json:"additional_details,omitempty"`
}

// Dimensions of the printed item
type Dimensions struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Unit   DimensionUnit `gorm:"default:'mm'" json:"unit"`
}

// Cost block of an order; estimates come from the pricing collaborator
type Cost struct {
	EstimatedCost *float64      `json:"estimated_cost"`
	FinalCost     *float64      `json:"final_cost"`
	Currency      string        `gorm:"default:'USD'" json:"currency"`
	PaymentStatus PaymentStatus `gorm:"default:'Pending'" json:"payment_status"`
}

// Stage is the tracked state of one production stage
type Stage struct {
	Status         StageStatus `gorm:"not null;default:'Pending'" json:"status"`
	AssignedToID   *uint       `gorm:"index" json:"assigned_to"`
	StartDate      *time.Time  `json:"start_date"`
	CompletionDate *time.Time  `json:"completion_date"`
	Notes          string      `json:"notes,omitempty"`
}

// DeliveryStage additionally carries shipping details
type DeliveryStage struct {
	Stage
	TrackingNumber string `json:"tracking_number,omitempty"`
	DeliveryMethod string `json:"delivery_method,omitempty"`
}

// OrderStages holds the four sequential stages of an order
type OrderStages struct {
	Review     Stage         `gorm:"embedded;embeddedPrefix:review_" json:"review"`
	Prepress   Stage         `gorm:"embedded;embeddedPrefix:prepress_" json:"prepress"`
	Production Stage         `gorm:"embedded;embeddedPrefix:production_" json:"production"`
	Delivery   DeliveryStage `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery"`
}

// NewOrderStages returns the stage table of a freshly submitted order
func NewOrderStages() OrderStages {
	return OrderStages{
		Review:     Stage{Status: StagePending},
		Prepress:   Stage{Status: StagePending},
		Production: Stage{Status: StagePending},
		Delivery:   DeliveryStage{Stage: Stage{Status: StagePending}},
	}
}

// Get returns a pointer to the named stage, or nil for an unknown name
func (s *OrderStages) Get(name StageName) *Stage {
	switch name {
	case StageReview:
		return &s.Review
	case StagePrepress:
		return &s.Prepress
	case StageProduction:
		return &s.Production
	case StageDelivery:
		return &s.Delivery.Stage
	}
	return nil
}
