package models

import (
	"time"

	"gorm.io/gorm"
)

// Attachment is a file uploaded against an order or a claim
type Attachment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	EntityID     uint           `gorm:"not null;index:idx_attachment_entity" json:"entity_id"`
	EntityType   string         `gorm:"not null;size:32;index:idx_attachment_entity" json:"entity_type"` // "orders" or "claims"
	Filename     string         `gorm:"not null" json:"filename"`
	OriginalName string         `gorm:"not null" json:"original_name"`
	MimeType     string         `gorm:"not null" json:"mime_type"`
	Size         int64          `gorm:"not null" json:"size"`
	StorageKey   string         `gorm:"not null" json:"-"`
	FileType     FileType       `gorm:"not null;default:'other'" json:"file_type"`
	UploadedByID uint           `gorm:"not null;index" json:"uploaded_by"`
	URL          string         `gorm:"-" json:"url,omitempty"` // computed download URL
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Attachment model
func (Attachment) TableName() string {
	return "attachments"
}
