package models

import "time"

// HistoryEntry is one immutable audit trail record. Rows are only ever inserted.
type HistoryEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityID   uint      `gorm:"not null;index:idx_history_entity" json:"-"`
	EntityType string    `gorm:"not null;size:32;index:idx_history_entity" json:"-"`
	Action     string    `gorm:"not null" json:"action"`
	ActorID    uint      `gorm:"not null;index" json:"user"`
	Details    string    `gorm:"type:text" json:"details"`
	Timestamp  time.Time `gorm:"not null" json:"timestamp"`
}

// TableName specifies the table name for the HistoryEntry model
func (HistoryEntry) TableName() string {
	return "history_entries"
}
